package service

import (
	"github.com/folio-works/portfolio-backend/internal/media/transform"
	"github.com/folio-works/portfolio-backend/internal/projects/domain"
)

// MediaView is one image rendered for a profile.
type MediaView struct {
	Ref         string `json:"ref"`
	URL         string `json:"url"`
	SrcSet      string `json:"srcset"`
	Placeholder string `json:"placeholder,omitempty"`
}

// ProjectMedia is the delivery view of a project's images.
type ProjectMedia struct {
	ProjectID string      `json:"project_id"`
	Profile   string      `json:"profile"`
	Primary   *MediaView  `json:"primary"`
	Gallery   []MediaView `json:"gallery"`
}

// BuildMedia derives delivery URLs for every image of p. Stored references
// are never modified.
func BuildMedia(e transform.Engine, p *domain.Project, profile transform.Profile) ProjectMedia {
	m := ProjectMedia{
		ProjectID: p.ID,
		Profile:   profile.String(),
		Gallery:   make([]MediaView, 0, len(p.Images)),
	}
	if p.ImageURL != nil {
		v := view(e, *p.ImageURL, profile)
		m.Primary = &v
	}
	for _, ref := range p.Images {
		m.Gallery = append(m.Gallery, view(e, ref, profile))
	}
	return m
}

func view(e transform.Engine, ref string, profile transform.Profile) MediaView {
	return MediaView{
		Ref:         ref,
		URL:         e.Transform(ref, profile),
		SrcSet:      e.SrcSet(ref),
		Placeholder: e.Placeholder(ref),
	}
}
