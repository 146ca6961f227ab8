package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/folio-works/portfolio-backend/internal/projects/domain"
)

const projectColumns = `id, title, description, tech_stack, github_link, live_demo, image_url, images, version, created_at, updated_at`

// ProjectRepository persists projects in PostgreSQL. Every mutating write
// bumps version and updated_at.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p                   domain.Project
		github, demo, image sql.NullString
		techStack, images   []string
	)
	err := row.Scan(&p.ID, &p.Title, &p.Description, pq.Array(&techStack), &github, &demo, &image,
		pq.Array(&images), &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.TechStack = nonNil(techStack)
	p.Images = nonNil(images)
	p.GithubLink = fromNull(github)
	p.LiveDemo = fromNull(demo)
	p.ImageURL = fromNull(image)
	return &p, nil
}

// Create inserts a project with an empty gallery.
func (r *ProjectRepository) Create(ctx context.Context, in domain.ProjectInput) (*domain.Project, error) {
	q := `
INSERT INTO projects (id, title, description, tech_stack, github_link, live_demo, images)
VALUES ($1, $2, $3, $4, $5, $6, '{}')
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q,
		uuid.New().String(), in.Title, in.Description, pq.Array(nonNil(in.TechStack)), toNull(in.GithubLink), toNull(in.LiveDemo)))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create project", Err: err}
	}
	return p, nil
}

// Get returns a single project.
func (r *ProjectRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1;`
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "get project", Err: err}
	}
	return p, nil
}

// List returns all projects, newest first.
func (r *ProjectRepository) List(ctx context.Context) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list projects", Err: err}
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "list projects", Err: err}
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "list projects", Err: err}
	}
	return out, nil
}

// Update overwrites the text fields of a project. Media is untouched.
func (r *ProjectRepository) Update(ctx context.Context, id string, in domain.ProjectInput) (*domain.Project, error) {
	q := `
UPDATE projects
SET title = $2, description = $3, tech_stack = $4, github_link = $5, live_demo = $6,
    version = version + 1, updated_at = now()
WHERE id = $1
RETURNING ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRowContext(ctx, q,
		id, in.Title, in.Description, pq.Array(nonNil(in.TechStack)), toNull(in.GithubLink), toNull(in.LiveDemo)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "update project", Err: err}
	}
	return p, nil
}

// Delete removes the row. Hosted assets are not touched.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM projects WHERE id = $1;`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return &domain.PersistenceError{Op: "delete project", Err: err}
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return &domain.PersistenceError{Op: "delete project", Err: err}
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// LoadGallery reads the primary image, gallery and version.
func (r *ProjectRepository) LoadGallery(ctx context.Context, id string) (*domain.Gallery, error) {
	const q = `SELECT image_url, images, version FROM projects WHERE id = $1;`

	var (
		image  sql.NullString
		images []string
		g      = domain.Gallery{ProjectID: id}
	)
	err := r.db.QueryRowContext(ctx, q, id).Scan(&image, pq.Array(&images), &g.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "load gallery", Err: err}
	}
	g.Primary = fromNull(image)
	g.Images = nonNil(images)
	return &g, nil
}

// SaveImages writes images only if the stored version still equals
// expectedVersion. It returns the new version, or ErrConcurrencyConflict when
// another write got there first.
func (r *ProjectRepository) SaveImages(ctx context.Context, id string, images []string, expectedVersion int64) (int64, error) {
	const q = `
UPDATE projects
SET images = $2, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $3
RETURNING version;
`
	var version int64
	err := r.db.QueryRowContext(ctx, q, id, pq.Array(nonNil(images)), expectedVersion).Scan(&version)
	if err == nil {
		return version, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, &domain.PersistenceError{Op: "save images", Err: err}
	}

	exists, err := r.exists(ctx, id)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "save images", Err: err}
	}
	if !exists {
		return 0, domain.ErrNotFound
	}
	return 0, domain.ErrConcurrencyConflict
}

// ReplaceImages overwrites the gallery unconditionally.
func (r *ProjectRepository) ReplaceImages(ctx context.Context, id string, images []string) (int64, error) {
	const q = `
UPDATE projects
SET images = $2, version = version + 1, updated_at = now()
WHERE id = $1
RETURNING version;
`
	return r.updateVersioned(ctx, "replace images", q, id, pq.Array(nonNil(images)))
}

// SetPrimary overwrites the primary image unconditionally. A nil ref clears it.
func (r *ProjectRepository) SetPrimary(ctx context.Context, id string, ref *string) (int64, error) {
	const q = `
UPDATE projects
SET image_url = $2, version = version + 1, updated_at = now()
WHERE id = $1
RETURNING version;
`
	return r.updateVersioned(ctx, "set primary image", q, id, toNull(ref))
}

func (r *ProjectRepository) updateVersioned(ctx context.Context, op, q string, args ...any) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, &domain.PersistenceError{Op: op, Err: err}
	}
	return version, nil
}

func (r *ProjectRepository) exists(ctx context.Context, id string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1);`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check project exists: %w", err)
	}
	return ok, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
