package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps entries in process. Used for local runs and tests.
type MemoryStore struct {
	mu         sync.RWMutex
	skills     map[string]Skill
	experience map[string]Experience
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		skills:     make(map[string]Skill),
		experience: make(map[string]Experience),
		now:        time.Now,
	}
}

func (m *MemoryStore) ListSkills(_ context.Context) ([]Skill, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Skill, 0, len(m.skills))
	for _, s := range m.skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Proficiency != out[j].Proficiency {
			return out[i].Proficiency > out[j].Proficiency
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (m *MemoryStore) CreateSkill(_ context.Context, in SkillInput) (*Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	s := Skill{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Category:    in.Category,
		Proficiency: in.Proficiency,
		Icon:        in.Icon,
		Featured:    in.Featured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.skills[s.ID] = s
	return &s, nil
}

func (m *MemoryStore) UpdateSkill(_ context.Context, id string, in SkillInput) (*Skill, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.skills[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.Name, s.Category, s.Proficiency = in.Name, in.Category, in.Proficiency
	s.Icon, s.Featured = in.Icon, in.Featured
	s.UpdatedAt = m.now().UTC()
	m.skills[id] = s
	return &s, nil
}

func (m *MemoryStore) DeleteSkill(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.skills[id]; !ok {
		return ErrNotFound
	}
	delete(m.skills, id)
	return nil
}

func (m *MemoryStore) ListExperience(_ context.Context) ([]Experience, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Experience, 0, len(m.experience))
	for _, e := range m.experience {
		out = append(out, e)
	}
	// YYYY-MM-DD sorts lexically.
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate != out[j].StartDate {
			return out[i].StartDate > out[j].StartDate
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) CreateExperience(_ context.Context, in ExperienceInput) (*Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	e := experienceFrom(in)
	e.ID = uuid.New().String()
	e.CreatedAt, e.UpdatedAt = now, now
	m.experience[e.ID] = e
	return &e, nil
}

func (m *MemoryStore) UpdateExperience(_ context.Context, id string, in ExperienceInput) (*Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.experience[id]
	if !ok {
		return nil, ErrNotFound
	}
	e := experienceFrom(in)
	e.ID, e.CreatedAt = id, prev.CreatedAt
	e.UpdatedAt = m.now().UTC()
	m.experience[id] = e
	return &e, nil
}

func (m *MemoryStore) DeleteExperience(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.experience[id]; !ok {
		return ErrNotFound
	}
	delete(m.experience, id)
	return nil
}

func experienceFrom(in ExperienceInput) Experience {
	e := Experience{
		Company:     in.Company,
		Position:    in.Position,
		StartDate:   in.StartDate,
		Current:     in.Current,
		Description: append([]string{}, in.Description...),
		Skills:      append([]string{}, in.Skills...),
	}
	if in.EndDate != nil {
		end := *in.EndDate
		e.EndDate = &end
	}
	return e
}
