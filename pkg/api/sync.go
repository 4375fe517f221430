package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memexlabs/prometheus/pkg/apierr"
	"github.com/memexlabs/prometheus/pkg/syncapi"
)

func (h *handlers) resolveInstance(c *gin.Context) (instanceName string, ok bool) {
	instanceName = c.Param("instance")
	if _, exists := h.deps.Instances.Get(instanceName); !exists {
		writeError(c, apierr.NotFound("unknown instance"))
		return "", false
	}
	return instanceName, true
}

// syncStatus handles GET /{instance}/sync/status.
func (h *handlers) syncStatus(c *gin.Context) {
	instanceName, ok := h.resolveInstance(c)
	if !ok {
		return
	}
	inst, _ := h.deps.Instances.Get(instanceName)

	result, err := syncapi.Status(inst)
	if err != nil {
		writeError(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

// sync handles POST /{instance}/sync.
func (h *handlers) sync(c *gin.Context) {
	instanceName, ok := h.resolveInstance(c)
	if !ok {
		return
	}
	inst, _ := h.deps.Instances.Get(instanceName)

	body, ok := readBody(c)
	if !ok {
		return
	}

	var req syncapi.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(c, apierr.BadRequest("malformed sync request"))
		return
	}

	result := syncapi.Sync(c.Request.Context(), inst, req)

	ip, _ := c.Get(clientIPKey)
	ipStr, _ := ip.(string)
	h.deps.Audit.Sync(instanceName, ipStr, result.Written)

	c.JSON(http.StatusOK, result)
}
