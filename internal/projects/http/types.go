package http

import (
	"github.com/folio-works/portfolio-backend/internal/media/transform"
	"github.com/folio-works/portfolio-backend/internal/projects/service"
)

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	projects *service.ProjectService
	gallery  *service.GalleryService
	engine   transform.Engine
}

func New(projects *service.ProjectService, gallery *service.GalleryService, engine transform.Engine) *Handler {
	return &Handler{projects: projects, gallery: gallery, engine: engine}
}

type replaceImagesReq struct {
	Images []string `json:"images"`
}

type setPrimaryReq struct {
	ImageURL *string `json:"image_url"`
}
