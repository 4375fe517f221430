package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/memexlabs/prometheus/pkg/apierr"
)

// screenshot handles GET /screenshots/{instance}/{filename}: one captured
// image, unauthenticated per spec.md §6 (these are served to the chat UI's
// generated pages, which have no session of their own). Both path
// segments are checked for traversal attempts independently.
func (h *handlers) screenshot(c *gin.Context) {
	instanceName := c.Param("instance")
	filename := c.Param("filename")
	if !safePathSegment(instanceName) || !safePathSegment(filename) {
		writeError(c, apierr.BadRequest("invalid path"))
		return
	}

	if _, ok := h.deps.Instances.Get(instanceName); !ok {
		writeError(c, apierr.NotFound("unknown instance"))
		return
	}

	path := filepath.Join(h.deps.DataBaseDir, instanceName, "images", filename)
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(c, apierr.NotFound("screenshot not found"))
			return
		}
		writeError(c, apierr.Internal(err))
		return
	}

	c.Data(http.StatusOK, contentTypeForExt(filename), body)
}

func contentTypeForExt(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
