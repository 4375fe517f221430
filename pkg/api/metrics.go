package api

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/memexlabs/prometheus/pkg/apierr"
	"github.com/memexlabs/prometheus/pkg/audit"
)

func (h *handlers) usagePath() string {
	return filepath.Join(h.deps.LogDir, "usage.jsonl")
}

// metrics handles GET /api/metrics: the aggregated view over every
// instance's usage log, unauthenticated per spec.md §6.
func (h *handlers) metrics(c *gin.Context) {
	m, err := audit.ReadMetrics(h.usagePath())
	if err != nil {
		writeError(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_calls":       m.TotalCalls,
		"calls_by_instance": m.CallsByInstance,
		"calls_by_tool":     m.CallsByTool,
		"avg_duration_ms":   m.AvgDurationMs(),
	})
}

// instanceDetail handles GET /api/instance/{name}/detail: the same
// aggregation filtered to one instance.
func (h *handlers) instanceDetail(c *gin.Context) {
	name := c.Param("name")
	if _, ok := h.deps.Instances.Get(name); !ok {
		writeError(c, apierr.NotFound("unknown instance"))
		return
	}

	m, err := audit.ReadInstanceMetrics(h.usagePath(), name)
	if err != nil {
		writeError(c, apierr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"instance":          name,
		"total_calls":       m.TotalCalls,
		"calls_by_tool":     m.CallsByTool,
		"avg_duration_ms":   m.AvgDurationMs(),
		"total_duration_ms": m.TotalDurationMs,
	})
}
