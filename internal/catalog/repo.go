package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store persists skills and experience.
type Store interface {
	ListSkills(ctx context.Context) ([]Skill, error)
	CreateSkill(ctx context.Context, in SkillInput) (*Skill, error)
	UpdateSkill(ctx context.Context, id string, in SkillInput) (*Skill, error)
	DeleteSkill(ctx context.Context, id string) error

	ListExperience(ctx context.Context) ([]Experience, error)
	CreateExperience(ctx context.Context, in ExperienceInput) (*Experience, error)
	UpdateExperience(ctx context.Context, id string, in ExperienceInput) (*Experience, error)
	DeleteExperience(ctx context.Context, id string) error
}

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repo struct {
	db DBTX
}

func NewRepo(db DBTX) *Repo {
	return &Repo{db: db}
}

const skillColumns = `id, name, category, proficiency, icon, featured, created_at, updated_at`

func scanSkill(row pgx.Row) (*Skill, error) {
	var s Skill
	if err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Proficiency, &s.Icon, &s.Featured, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) ListSkills(ctx context.Context) ([]Skill, error) {
	q := `select ` + skillColumns + ` from skills order by proficiency desc, name asc;`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	out := make([]Skill, 0, 32)
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *Repo) CreateSkill(ctx context.Context, in SkillInput) (*Skill, error) {
	q := `
insert into skills (id, name, category, proficiency, icon, featured)
values ($1, $2, $3, $4, $5, $6)
returning ` + skillColumns + `;
`
	s, err := scanSkill(r.db.QueryRow(ctx, q, uuid.New().String(), in.Name, in.Category, in.Proficiency, in.Icon, in.Featured))
	if err != nil {
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return s, nil
}

func (r *Repo) UpdateSkill(ctx context.Context, id string, in SkillInput) (*Skill, error) {
	q := `
update skills
set name = $2, category = $3, proficiency = $4, icon = $5, featured = $6, updated_at = now()
where id = $1
returning ` + skillColumns + `;
`
	s, err := scanSkill(r.db.QueryRow(ctx, q, id, in.Name, in.Category, in.Proficiency, in.Icon, in.Featured))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update skill: %w", err)
	}
	return s, nil
}

func (r *Repo) DeleteSkill(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `delete from skills where id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const experienceColumns = `id, company, position, to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD'),
       current, description, skills, created_at, updated_at`

func scanExperience(row pgx.Row) (*Experience, error) {
	var e Experience
	err := row.Scan(&e.ID, &e.Company, &e.Position, &e.StartDate, &e.EndDate,
		&e.Current, &e.Description, &e.Skills, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.Description == nil {
		e.Description = []string{}
	}
	if e.Skills == nil {
		e.Skills = []string{}
	}
	return &e, nil
}

func (r *Repo) ListExperience(ctx context.Context) ([]Experience, error) {
	q := `select ` + experienceColumns + ` from experience order by start_date desc;`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list experience: %w", err)
	}
	defer rows.Close()

	out := make([]Experience, 0, 16)
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("scan experience: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *Repo) CreateExperience(ctx context.Context, in ExperienceInput) (*Experience, error) {
	q := `
insert into experience (id, company, position, start_date, end_date, current, description, skills)
values ($1, $2, $3, $4::date, $5::date, $6, $7, $8)
returning ` + experienceColumns + `;
`
	e, err := scanExperience(r.db.QueryRow(ctx, q,
		uuid.New().String(), in.Company, in.Position, in.StartDate, in.EndDate, in.Current, in.Description, in.Skills))
	if err != nil {
		return nil, fmt.Errorf("create experience: %w", err)
	}
	return e, nil
}

func (r *Repo) UpdateExperience(ctx context.Context, id string, in ExperienceInput) (*Experience, error) {
	q := `
update experience
set company = $2, position = $3, start_date = $4::date, end_date = $5::date, current = $6,
    description = $7, skills = $8, updated_at = now()
where id = $1
returning ` + experienceColumns + `;
`
	e, err := scanExperience(r.db.QueryRow(ctx, q,
		id, in.Company, in.Position, in.StartDate, in.EndDate, in.Current, in.Description, in.Skills))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update experience: %w", err)
	}
	return e, nil
}

func (r *Repo) DeleteExperience(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `delete from experience where id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete experience: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
