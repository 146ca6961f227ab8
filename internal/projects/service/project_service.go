package service

import (
	"context"

	"github.com/folio-works/portfolio-backend/internal/cache"
	"github.com/folio-works/portfolio-backend/internal/events"
	"github.com/folio-works/portfolio-backend/internal/projects/domain"
)

// ProjectService handles project-related business logic
type ProjectService struct {
	repo   Repository
	cache  *cache.Cache
	events events.Publisher
}

// NewProjectService creates a new project service
func NewProjectService(repo Repository, c *cache.Cache, pub events.Publisher) *ProjectService {
	return &ProjectService{repo: repo, cache: c, events: pub}
}

// List returns all projects, newest first, through the projection cache.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return cache.ReadThrough(ctx, s.cache, cache.KeyProjects, s.repo.List)
}

// Get returns one project through the projection cache.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return cache.ReadThrough(ctx, s.cache, cache.ProjectKey(id), func(ctx context.Context) (*domain.Project, error) {
		return s.repo.Get(ctx, id)
	})
}

// Create creates a new project
func (s *ProjectService) Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, s.fail(ctx, "create", "", err)
	}

	p, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, "create", "", err)
	}

	s.cache.Invalidate(ctx, cache.KeyProjects)
	s.events.Publish(ctx, events.Success(resourceProject, "create", p.ID, "project created"))
	return p, nil
}

// Update replaces the text fields of a project
func (s *ProjectService) Update(ctx context.Context, id string, in domain.ProjectInput) (*domain.Project, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, s.fail(ctx, "update", id, err)
	}

	p, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, s.fail(ctx, "update", id, err)
	}

	s.cache.InvalidateProject(ctx, id)
	s.events.Publish(ctx, events.Success(resourceProject, "update", id, "project updated"))
	return p, nil
}

// Delete removes a project. Its hosted images stay on the asset host.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, "delete", id, err)
	}

	s.cache.InvalidateProject(ctx, id)
	s.events.Publish(ctx, events.Success(resourceProject, "delete", id, "project deleted"))
	return nil
}

func (s *ProjectService) fail(ctx context.Context, op, id string, err error) error {
	s.events.Publish(context.WithoutCancel(ctx), events.Failure(resourceProject, op, id, err))
	return err
}
