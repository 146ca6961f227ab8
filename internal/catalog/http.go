package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublic attaches the read-only listings.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/skills", h.listSkills)
	rg.GET("/experience", h.listExperience)
}

// RegisterAdmin attaches the write routes. Callers mount rg behind auth.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.POST("/skills", h.createSkill)
	rg.PUT("/skills/:id", h.updateSkill)
	rg.DELETE("/skills/:id", h.deleteSkill)

	rg.POST("/experience", h.createExperience)
	rg.PUT("/experience/:id", h.updateExperience)
	rg.DELETE("/experience/:id", h.deleteExperience)
}

func (h *Handler) listSkills(c *gin.Context) {
	items, err := h.svc.ListSkills(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list skills")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "skills": items})
}

func (h *Handler) createSkill(c *gin.Context) {
	var in SkillInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	sk, err := h.svc.CreateSkill(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, "failed to create skill")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "skill": sk})
}

func (h *Handler) updateSkill(c *gin.Context) {
	var in SkillInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	sk, err := h.svc.UpdateSkill(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err, "failed to update skill")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "skill": sk})
}

func (h *Handler) deleteSkill(c *gin.Context) {
	if err := h.svc.DeleteSkill(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete skill")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listExperience(c *gin.Context) {
	items, err := h.svc.ListExperience(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list experience")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "experience": items})
}

func (h *Handler) createExperience(c *gin.Context) {
	var in ExperienceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	e, err := h.svc.CreateExperience(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, "failed to create experience")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "experience": e})
}

func (h *Handler) updateExperience(c *gin.Context) {
	var in ExperienceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	e, err := h.svc.UpdateExperience(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, err, "failed to update experience")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "experience": e})
}

func (h *Handler) deleteExperience(c *gin.Context) {
	if err := h.svc.DeleteExperience(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete experience")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": fallback})
	}
}
