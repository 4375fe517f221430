package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// mcp handles POST /{instance}/mcp: the JSON-RPC 2.0 endpoint for C9.
// Notifications (no result body) get a bare 202; everything else gets the
// JSON-RPC envelope with the MCP-Session-Id header set on a successful
// initialize.
func (h *handlers) mcp(c *gin.Context) {
	instanceName, ok := h.resolveInstance(c)
	if !ok {
		return
	}
	inst, _ := h.deps.Instances.Get(instanceName)

	body, ok := readBody(c)
	if !ok {
		return
	}

	ip, _ := c.Get(clientIPKey)
	ipStr, _ := ip.(string)

	resp := h.deps.Dispatcher.Handle(c.Request.Context(), inst, ipStr, body)
	if resp == nil {
		c.Status(http.StatusAccepted)
		return
	}
	if resp.SessionID != "" {
		c.Header("MCP-Session-Id", resp.SessionID)
	}
	c.JSON(http.StatusOK, resp)
}
