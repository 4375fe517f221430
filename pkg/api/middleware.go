package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/memexlabs/prometheus/pkg/apierr"
	"github.com/memexlabs/prometheus/pkg/audit"
	"github.com/memexlabs/prometheus/pkg/auth"
	"github.com/memexlabs/prometheus/pkg/ratelimit"
)

const clientIPKey = "client_ip"

// securityHeaders sets the standard defensive response headers on every
// response, mirroring the teacher's pkg/api/middleware.go securityHeaders.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

// bodySizeLimit rejects any request body over maxBytes with 413, per
// spec.md §6's "Max request body 1 MiB (413 on exceed)".
func bodySizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			// 413 isn't one of apierr's kinds (spec.md §6 pins this exact code), so
			// this stays a direct JSON response rather than going through writeError.
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// resolveClientIP applies spec.md §6's precedence: CF-Connecting-IP, then
// X-Forwarded-For's first entry, then the socket peer address.
func resolveClientIP(c *gin.Context) string {
	return auth.ClientIP(c.GetHeader("CF-Connecting-IP"), c.GetHeader("X-Forwarded-For"), c.Request.RemoteAddr)
}

// requireBearer authenticates the Authorization header against store for
// the :instance path param, requiring at least the given scope. On
// failure it logs an audit AuthFail event and responds 401 with a
// machine-readable reason, per spec.md 4.5.
func requireBearer(auditLog *audit.Logger, store *auth.Store, scope auth.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		instanceName := c.Param("instance")
		ip := resolveClientIP(c)
		token := auth.BearerToken(c.GetHeader("Authorization"))

		ok, reason := store.Authenticate(token, instanceName, scope)
		if !ok {
			auditLog.AuthFail(instanceName, ip, c.FullPath(), reason)
			writeError(c, apierr.Unauthorized(reason))
			return
		}

		c.Set(clientIPKey, ip)
		c.Next()
	}
}

// rateLimited checks the three fixed-window buckets for (ip, instance),
// responding 429 with Retry-After on the first bucket that denies.
func rateLimited(auditLog *audit.Logger, limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		instanceName := c.Param("instance")
		ip, _ := c.Get(clientIPKey)
		ipStr, _ := ip.(string)
		if ipStr == "" {
			ipStr = resolveClientIP(c)
		}

		allowed, retryAfter, kind := limiter.Check(ipStr, instanceName, time.Now())
		if !allowed {
			auditLog.RateLimited(instanceName, ipStr, string(kind))
			writeError(c, apierr.RateLimited(retryAfter, string(kind)))
			return
		}
		c.Next()
	}
}
