package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/folio-works/portfolio-backend/internal/media/transform"
	"github.com/folio-works/portfolio-backend/internal/projects/domain"
	"github.com/folio-works/portfolio-backend/internal/projects/service"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.projects.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

// media returns delivery URLs of a project's images for ?profile=. Unknown
// profiles fall back to thumbnail.
func (h *Handler) media(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	profile, _ := transform.ParseProfile(c.DefaultQuery("profile", transform.Thumbnail.String()))
	c.JSON(http.StatusOK, gin.H{"ok": true, "media": service.BuildMedia(h.engine, p, profile)})
}

func (h *Handler) mediaURL(c *gin.Context) {
	ref := strings.TrimSpace(c.Query("ref"))
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "ref is required"})
		return
	}
	profile, _ := transform.ParseProfile(c.DefaultQuery("profile", transform.Thumbnail.String()))
	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"ref":         ref,
		"profile":     profile.String(),
		"url":         h.engine.Transform(ref, profile),
		"srcset":      h.engine.SrcSet(ref),
		"placeholder": h.engine.Placeholder(ref),
	})
}

func (h *Handler) create(c *gin.Context) {
	var req domain.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.projects.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	var req domain.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.projects.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
