package catalog

import (
	"context"

	"github.com/folio-works/portfolio-backend/internal/cache"
	"github.com/folio-works/portfolio-backend/internal/events"
)

const (
	resourceSkill      = "skill"
	resourceExperience = "experience"
)

// Service validates input, keeps the list projections fresh and reports
// every write on the event bus.
type Service struct {
	store  Store
	cache  *cache.Cache
	events events.Publisher
}

func NewService(store Store, c *cache.Cache, pub events.Publisher) *Service {
	return &Service{store: store, cache: c, events: pub}
}

func (s *Service) ListSkills(ctx context.Context) ([]Skill, error) {
	return cache.ReadThrough(ctx, s.cache, cache.KeySkills, s.store.ListSkills)
}

func (s *Service) CreateSkill(ctx context.Context, in SkillInput) (*Skill, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, s.fail(ctx, resourceSkill, "create", "", err)
	}
	sk, err := s.store.CreateSkill(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, resourceSkill, "create", "", err)
	}
	s.done(ctx, cache.KeySkills, resourceSkill, "create", sk.ID, "skill created")
	return sk, nil
}

func (s *Service) UpdateSkill(ctx context.Context, id string, in SkillInput) (*Skill, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, s.fail(ctx, resourceSkill, "update", id, err)
	}
	sk, err := s.store.UpdateSkill(ctx, id, in)
	if err != nil {
		return nil, s.fail(ctx, resourceSkill, "update", id, err)
	}
	s.done(ctx, cache.KeySkills, resourceSkill, "update", id, "skill updated")
	return sk, nil
}

func (s *Service) DeleteSkill(ctx context.Context, id string) error {
	if err := s.store.DeleteSkill(ctx, id); err != nil {
		return s.fail(ctx, resourceSkill, "delete", id, err)
	}
	s.done(ctx, cache.KeySkills, resourceSkill, "delete", id, "skill deleted")
	return nil
}

func (s *Service) ListExperience(ctx context.Context) ([]Experience, error) {
	return cache.ReadThrough(ctx, s.cache, cache.KeyExperience, s.store.ListExperience)
}

func (s *Service) CreateExperience(ctx context.Context, in ExperienceInput) (*Experience, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, s.fail(ctx, resourceExperience, "create", "", err)
	}
	e, err := s.store.CreateExperience(ctx, in)
	if err != nil {
		return nil, s.fail(ctx, resourceExperience, "create", "", err)
	}
	s.done(ctx, cache.KeyExperience, resourceExperience, "create", e.ID, "experience created")
	return e, nil
}

func (s *Service) UpdateExperience(ctx context.Context, id string, in ExperienceInput) (*Experience, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, s.fail(ctx, resourceExperience, "update", id, err)
	}
	e, err := s.store.UpdateExperience(ctx, id, in)
	if err != nil {
		return nil, s.fail(ctx, resourceExperience, "update", id, err)
	}
	s.done(ctx, cache.KeyExperience, resourceExperience, "update", id, "experience updated")
	return e, nil
}

func (s *Service) DeleteExperience(ctx context.Context, id string) error {
	if err := s.store.DeleteExperience(ctx, id); err != nil {
		return s.fail(ctx, resourceExperience, "delete", id, err)
	}
	s.done(ctx, cache.KeyExperience, resourceExperience, "delete", id, "experience deleted")
	return nil
}

func (s *Service) done(ctx context.Context, key, resource, op, id, msg string) {
	s.cache.Invalidate(ctx, key)
	s.events.Publish(ctx, events.Success(resource, op, id, msg))
}

func (s *Service) fail(ctx context.Context, resource, op, id string, err error) error {
	s.events.Publish(ctx, events.Failure(resource, op, id, err))
	return err
}
