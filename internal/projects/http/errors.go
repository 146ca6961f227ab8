package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-works/portfolio-backend/internal/media/upload"
	"github.com/folio-works/portfolio-backend/internal/projects/domain"
)

// writeError maps service errors to a status and JSON body.
func writeError(c *gin.Context, err error) {
	var (
		vErr  *upload.ValidationError
		upErr *upload.UploadError
		pErr  *domain.PersistenceError
	)

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":         false,
			"error":      vErr.Error(),
			"index":      vErr.Index,
			"constraint": vErr.Constraint,
		})
	case errors.As(err, &upErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"ok":       false,
			"error":    upErr.Error(),
			"index":    upErr.Index,
			"orphaned": upErr.Orphaned,
		})
	case errors.Is(err, domain.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error(), "retryable": true})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.As(err, &pErr):
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to " + pErr.Op})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}
