package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/folio-works/portfolio-backend/internal/cache"
)

// CacheHandler exposes the admin cache reset.
type CacheHandler struct {
	cache *cache.Cache
}

func NewCacheHandler(c *cache.Cache) *CacheHandler {
	return &CacheHandler{cache: c}
}

func (h *CacheHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/cache", h.Flush)
}

func (h *CacheHandler) Flush(c *gin.Context) {
	if err := h.cache.Flush(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to flush cache"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
