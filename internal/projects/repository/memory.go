package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/folio-works/portfolio-backend/internal/projects/domain"
)

// MemoryRepository is an in-process project store with the same version
// semantics as ProjectRepository. Used when DB_DRIVER=memory and in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects map[string]*domain.Project
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{projects: make(map[string]*domain.Project), now: time.Now}
}

func (r *MemoryRepository) Create(_ context.Context, in domain.ProjectInput) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	p := &domain.Project{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		TechStack:   cloneStrings(in.TechStack),
		GithubLink:  clonePtr(in.GithubLink),
		LiveDemo:    clonePtr(in.LiveDemo),
		Images:      []string{},
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.projects[p.ID] = p
	return cloneProject(p), nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProject(p), nil
}

func (r *MemoryRepository) List(_ context.Context) ([]domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, *cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, in domain.ProjectInput) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Title = in.Title
	p.Description = in.Description
	p.TechStack = cloneStrings(in.TechStack)
	p.GithubLink = clonePtr(in.GithubLink)
	p.LiveDemo = clonePtr(in.LiveDemo)
	r.touch(p)
	return cloneProject(p), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.projects, id)
	return nil
}

func (r *MemoryRepository) LoadGallery(_ context.Context, id string) (*domain.Gallery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Gallery{
		ProjectID: id,
		Primary:   clonePtr(p.ImageURL),
		Images:    cloneStrings(p.Images),
		Version:   p.Version,
	}, nil
}

func (r *MemoryRepository) SaveImages(_ context.Context, id string, images []string, expectedVersion int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if p.Version != expectedVersion {
		return 0, domain.ErrConcurrencyConflict
	}
	p.Images = cloneStrings(images)
	r.touch(p)
	return p.Version, nil
}

func (r *MemoryRepository) ReplaceImages(_ context.Context, id string, images []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.Images = cloneStrings(images)
	r.touch(p)
	return p.Version, nil
}

func (r *MemoryRepository) SetPrimary(_ context.Context, id string, ref *string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	p.ImageURL = clonePtr(ref)
	r.touch(p)
	return p.Version, nil
}

func (r *MemoryRepository) touch(p *domain.Project) {
	p.Version++
	p.UpdatedAt = r.now().UTC()
}

func cloneProject(p *domain.Project) *domain.Project {
	c := *p
	c.TechStack = cloneStrings(p.TechStack)
	c.Images = cloneStrings(p.Images)
	c.GithubLink = clonePtr(p.GithubLink)
	c.LiveDemo = clonePtr(p.LiveDemo)
	c.ImageURL = clonePtr(p.ImageURL)
	return &c
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
