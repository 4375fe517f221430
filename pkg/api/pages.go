package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/memexlabs/prometheus/pkg/apierr"
)

// page handles GET /pages/{slug}: a previously generate_page-rendered HTML
// file, unauthenticated per spec.md §6. Slugs never carry a .html suffix
// in the URL (C10's generate_page tool stores them bare).
func (h *handlers) page(c *gin.Context) {
	slug := c.Param("slug")
	if !safePathSegment(slug) {
		writeError(c, apierr.BadRequest("invalid slug"))
		return
	}

	path := filepath.Join(h.deps.PagesDir, slug+".html")
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(c, apierr.NotFound("page not found"))
			return
		}
		writeError(c, apierr.Internal(err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}
