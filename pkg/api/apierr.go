package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/memexlabs/prometheus/pkg/apierr"
)

// statusForKind maps spec.md §7's error kinds onto HTTP status codes.
func statusForKind(kind apierr.Kind) int {
	switch kind {
	case apierr.KindBadRequest:
		return http.StatusBadRequest
	case apierr.KindUnauthorized:
		return http.StatusUnauthorized
	case apierr.KindRateLimited:
		return http.StatusTooManyRequests
	case apierr.KindNotFound:
		return http.StatusNotFound
	case apierr.KindUpstreamFailure:
		return http.StatusBadGateway
	case apierr.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as JSON with the status its Kind maps to, setting
// Retry-After when it carries one.
func writeError(c *gin.Context, err *apierr.Error) {
	if err.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(err.RetryAfter))
	}
	c.AbortWithStatusJSON(statusForKind(err.Kind), gin.H{"error": err.Message, "kind": string(err.Kind)})
}
