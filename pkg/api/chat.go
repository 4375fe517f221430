package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memexlabs/prometheus/pkg/apierr"
	"github.com/memexlabs/prometheus/pkg/audit"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// chatInstance handles POST /{instance}/chat: a single-instance chat turn,
// unauthenticated per spec.md §6 (the chat UI is the public-facing
// surface; tool calls it triggers still go through C7's validator).
func (h *handlers) chatInstance(c *gin.Context) {
	instanceName, ok := h.resolveInstance(c)
	if !ok {
		return
	}
	h.streamChat(c, instanceName, false)
}

// chatCrossInstance handles POST /chat: the cross-instance chat endpoint,
// scoped to the manager's Home() instance for session storage per
// pkg/chat.Session's CrossInstance convention.
func (h *handlers) chatCrossInstance(c *gin.Context) {
	home, ok := h.deps.Instances.Home()
	if !ok {
		writeError(c, apierr.New(apierr.KindInternal, "no instances configured"))
		return
	}
	h.streamChat(c, home.Name, true)
}

func (h *handlers) streamChat(c *gin.Context, instanceName string, crossInstance bool) {
	ip, _ := c.Get(clientIPKey)
	ipStr, _ := ip.(string)
	if ipStr == "" {
		ipStr = resolveClientIP(c)
	}
	h.deps.Audit.Event("CHAT",
		audit.F("instance", instanceName), audit.F("ip", ipStr), audit.F("cross_instance", crossInstance))

	body, ok := readBody(c)
	if !ok {
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(c, apierr.BadRequest("malformed chat request"))
		return
	}

	session := h.deps.ChatStore.GetOrCreate(req.SessionID, instanceName, crossInstance)
	h.deps.Orchestrator.Stream(c.Request.Context(), c.Writer, session, req.Message)
}

// deleteChatSession handles DELETE /{instance}/chat/{session_id}.
func (h *handlers) deleteChatSession(c *gin.Context) {
	if _, ok := h.resolveInstance(c); !ok {
		return
	}
	sessionID := c.Param("session_id")

	if !h.deps.ChatStore.Delete(sessionID) {
		writeError(c, apierr.NotFound("session not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
