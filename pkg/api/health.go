package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/memexlabs/prometheus/pkg/version"
)

// handlers groups every route's implementation behind the shared Deps,
// mirroring the teacher's *Server receiver pattern translated to gin
// (a plain struct instead of an echo-bound server, since gin handlers are
// free functions/closures rather than methods on the framework's server
// type).
type handlers struct {
	deps Deps
}

type instanceHealth struct {
	Name     string `json:"name"`
	Records  int    `json:"records"`
	HasIndex bool   `json:"has_index"`
}

type healthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	UptimeSec float64          `json:"uptime_seconds"`
	Instances []instanceHealth `json:"instances"`
}

// health handles GET /health: server liveness plus a per-instance record
// count, with no auth — spec.md §6 lists it as publicly reachable so
// uptime monitors don't need a token.
func (h *handlers) health(c *gin.Context) {
	resp := healthResponse{
		Status:    "healthy",
		Version:   version.Full(),
		UptimeSec: time.Since(h.deps.StartedAt).Seconds(),
	}

	for _, name := range h.deps.Instances.List() {
		inst, ok := h.deps.Instances.Get(name)
		if !ok {
			continue
		}
		count, err := inst.Store.Count()
		if err != nil {
			h.deps.Log.Warn().Err(err).Str("instance", name).Msg("health: count records")
		}
		resp.Instances = append(resp.Instances, instanceHealth{
			Name:     name,
			Records:  count,
			HasIndex: inst.Index != nil,
		})
	}

	c.JSON(http.StatusOK, resp)
}
