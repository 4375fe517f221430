// Package api assembles the central server's gin router: every HTTP route
// from spec.md §6 wired through a size-limit → auth → rate-limit
// middleware pipeline (AI policy validation for tools/call happens inside
// pkg/rpc.Dispatcher, not here), grounded on the teacher's
// cmd/tarsy/main.go router setup and pkg/api/server.go's route-grouping
// style, translated from echo to gin since the teacher's own main.go
// already depends on gin directly.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/memexlabs/prometheus/pkg/audit"
	"github.com/memexlabs/prometheus/pkg/auth"
	"github.com/memexlabs/prometheus/pkg/chat"
	"github.com/memexlabs/prometheus/pkg/instance"
	"github.com/memexlabs/prometheus/pkg/ratelimit"
	"github.com/memexlabs/prometheus/pkg/rpc"
)

// Deps holds every component the router dispatches into. Built once at
// startup in cmd/prometheus-server and passed to NewRouter.
type Deps struct {
	Instances    *instance.Manager
	Auth         *auth.Store
	RateLimiter  *ratelimit.Limiter
	Audit        *audit.Logger
	Dispatcher   *rpc.Dispatcher
	Orchestrator *chat.Orchestrator
	ChatStore    *chat.Store
	DataBaseDir  string
	PagesDir     string
	LogDir       string
	StartedAt    time.Time
	Log          zerolog.Logger
}

// NewRouter builds the fully wired gin engine.
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	// Route on the escaped path so an encoded "/" stays inside one path
	// parameter, where the handlers' segment checks can reject it.
	r.UseRawPath = true
	r.Use(gin.Recovery())
	r.Use(securityHeaders())
	r.Use(bodySizeLimit(rpc.MaxRequestBytes))

	h := &handlers{deps: deps}

	r.GET("/health", h.health)
	r.GET("/api/metrics", h.metrics)
	r.GET("/api/instance/:name/detail", h.instanceDetail)
	r.GET("/pages/:slug", h.page)
	r.GET("/screenshots/:instance/:filename", h.screenshot)

	r.GET("/:instance/sync/status", requireBearer(deps.Audit, deps.Auth, auth.ScopeRead), h.syncStatus)
	r.POST("/:instance/sync", requireBearer(deps.Audit, deps.Auth, auth.ScopeSync), rateLimited(deps.Audit, deps.RateLimiter), h.sync)
	r.POST("/:instance/mcp", requireBearer(deps.Audit, deps.Auth, auth.ScopeRead), rateLimited(deps.Audit, deps.RateLimiter), h.mcp)

	r.POST("/:instance/chat", h.chatInstance)
	r.POST("/chat", h.chatCrossInstance)
	r.DELETE("/:instance/chat/:session_id", h.deleteChatSession)

	return r
}
