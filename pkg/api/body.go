package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/memexlabs/prometheus/pkg/apierr"
)

// readBody reads c.Request.Body (already wrapped by bodySizeLimit's
// http.MaxBytesReader) and responds 413 itself if the body exceeded the
// limit, returning ok=false so the caller can return without double
// writing a response.
func readBody(c *gin.Context) (body []byte, ok bool) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			// 413 isn't one of apierr's kinds (spec.md §6 pins this exact code), so
			// this stays a direct JSON response rather than going through writeError.
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return nil, false
		}
		writeError(c, apierr.BadRequest("failed to read request body"))
		return nil, false
	}
	return data, true
}
