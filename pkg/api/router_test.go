package api

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memexlabs/prometheus/pkg/audit"
	"github.com/memexlabs/prometheus/pkg/auth"
	"github.com/memexlabs/prometheus/pkg/chat"
	"github.com/memexlabs/prometheus/pkg/instance"
	"github.com/memexlabs/prometheus/pkg/ratelimit"
	"github.com/memexlabs/prometheus/pkg/rpc"
	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

func newTestRouter(t *testing.T) (*gin.Engine, string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	pagesDir := t.TempDir()
	logDir := t.TempDir()

	keysPath := filepath.Join(t.TempDir(), "keys.txt")
	require.NoError(t, os.WriteFile(keysPath, []byte("secrettoken|sync|personal\n"), 0o644))
	authStore, err := auth.Load(keysPath)
	require.NoError(t, err)

	log := zerolog.Nop()
	manager, err := instance.NewManager(dataDir, pagesDir, []string{"personal"}, func(string) vectorindex.Index {
		return vectorindex.NewMemory()
	}, log)
	require.NoError(t, err)

	auditLog, err := audit.Open(logDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = auditLog.Close() })

	dispatcher := rpc.NewDispatcher(nil, auditLog)
	chatStore := chat.NewStore()
	orchestrator := chat.NewOrchestrator(chatStore, nil, manager, pagesDir, log)

	deps := Deps{
		Instances:    manager,
		Auth:         authStore,
		RateLimiter:  ratelimit.New(),
		Audit:        auditLog,
		Dispatcher:   dispatcher,
		Orchestrator: orchestrator,
		ChatStore:    chatStore,
		DataBaseDir:  dataDir,
		PagesDir:     pagesDir,
		LogDir:       logDir,
		StartedAt:    time.Now(),
		Log:          log,
	}
	return NewRouter(deps), dataDir, logDir
}

func doRequest(r *gin.Engine, method, path, body, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthIsUnauthenticated(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestMetricsIsUnauthenticated(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/api/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSyncRequiresBearerToken(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/personal/sync/status", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing_token")
}

func TestSyncAcceptsValidToken(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/personal/sync/status", "", "Bearer secrettoken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"instance":"personal"`)
}

func TestSyncRejectsUnknownInstanceToken(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/other/sync/status", "", "Bearer secrettoken")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "instance_not_allowed")
}

func TestSyncPostWritesDocuments(t *testing.T) {
	r, _, _ := newTestRouter(t)
	body := `{"documents":[{"id":"2026-07-30T10-00-00_screen_0","text":"hello world","metadata":{}}]}`
	w := doRequest(r, http.MethodPost, "/personal/sync", body, "Bearer secrettoken")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"written":1`)
}

func TestMCPInitializeSetsSessionHeader(t *testing.T) {
	r, _, _ := newTestRouter(t)
	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`
	w := doRequest(r, http.MethodPost, "/personal/mcp", body, "Bearer secrettoken")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("MCP-Session-Id"))
}

func TestScreenshotRejectsPathTraversal(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/screenshots/personal/..%2Fsecret.jpg", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScreenshotServesExistingFile(t *testing.T) {
	r, dataDir, _ := newTestRouter(t)
	imgDir := filepath.Join(dataDir, "personal", "images")
	require.NoError(t, os.MkdirAll(imgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(imgDir, "shot.jpg"), []byte("fake-jpeg"), 0o644))

	w := doRequest(r, http.MethodGet, "/screenshots/personal/shot.jpg", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fake-jpeg", w.Body.String())
}

func TestPageNotFoundReturns404(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodGet, "/pages/does-not-exist", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatWithoutProviderEmitsErrorEvent(t *testing.T) {
	r, _, _ := newTestRouter(t)
	body := `{"message":"hello"}`
	w := doRequest(r, http.MethodPost, "/personal/chat", body, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "event: error")
}

func TestChatWritesAuditLine(t *testing.T) {
	r, _, logDir := newTestRouter(t)
	body := `{"message":"hello"}`
	w := doRequest(r, http.MethodPost, "/personal/chat", body, "")
	assert.Equal(t, http.StatusOK, w.Code)

	logBytes, err := os.ReadFile(filepath.Join(logDir, "audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logBytes), "CHAT instance=personal")
}

func TestDeleteChatSessionReportsNotFound(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w := doRequest(r, http.MethodDelete, "/personal/chat/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
