package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the read-only showcase routes.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/projects", h.list)
	rg.GET("/projects/:id", h.get)
	rg.GET("/projects/:id/media", h.media)
	rg.GET("/media/url", h.mediaURL)
}

// RegisterAdmin attaches the editing routes. The group is expected to carry
// authentication.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.POST("/projects", h.create)
	rg.PATCH("/projects/:id", h.update)
	rg.DELETE("/projects/:id", h.delete)

	rg.POST("/projects/:id/images", h.addImages)
	rg.PUT("/projects/:id/images", h.replaceImages)
	rg.DELETE("/projects/:id/images/:index", h.removeImage)
	rg.PUT("/projects/:id/primary", h.setPrimary)
	rg.POST("/projects/:id/primary", h.uploadPrimary)
}
