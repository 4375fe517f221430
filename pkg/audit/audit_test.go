package audit

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditEventsRenderKeyValueLines(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	require.NoError(t, err)
	defer l.Close()

	l.AuthFail("personal", "1.2.3.4", "/personal/mcp", "invalid_token")
	l.Sync("personal", "1.2.3.4", 5)
	l.ToolOK("personal", "1.2.3.4", "get-stats", 12)
	l.RateLimited("personal", "1.2.3.4", "per_ip_minute")

	contents, err := os.ReadFile(dir + "/audit.log")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(contents)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "AUTH_FAIL instance=personal ip=1.2.3.4 endpoint=/personal/mcp error=invalid_token", lines[0])
	assert.Equal(t, "SYNC instance=personal ip=1.2.3.4 documents=5", lines[1])
	assert.Equal(t, "TOOL_OK instance=personal ip=1.2.3.4 tool=get-stats duration_ms=12", lines[2])
	assert.Equal(t, "RATE_LIMIT instance=personal ip=1.2.3.4 type=per_ip_minute", lines[3])
}

func TestUsageAppendsJSONLAndMetricsAggregates(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir)
	require.NoError(t, err)
	defer l.Close()

	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, l.Usage(now, "personal", "get-stats", 0, 1, 5))
	require.NoError(t, l.Usage(now, "personal", "search-screenshots", 4, 3, 20))
	require.NoError(t, l.Usage(now, "walmart", "get-stats", 0, 1, 7))

	m, err := ReadMetrics(dir + "/usage.jsonl")
	require.NoError(t, err)
	assert.Equal(t, 3, m.TotalCalls)
	assert.Equal(t, 2, m.CallsByInstance["personal"])
	assert.Equal(t, 1, m.CallsByInstance["walmart"])
	assert.Equal(t, int64(32), m.TotalDurationMs)

	instanceMetrics, err := ReadInstanceMetrics(dir+"/usage.jsonl", "walmart")
	require.NoError(t, err)
	assert.Equal(t, 1, instanceMetrics.TotalCalls)
}

func TestReadMetricsOnMissingFileIsZero(t *testing.T) {
	m, err := ReadMetrics(t.TempDir() + "/does-not-exist.jsonl")
	require.NoError(t, err)
	assert.Equal(t, 0, m.TotalCalls)
}
