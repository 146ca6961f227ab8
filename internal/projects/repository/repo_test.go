package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-works/portfolio-backend/internal/projects/domain"
)

var projectCols = []string{"id", "title", "description", "tech_stack", "github_link", "live_demo", "image_url", "images", "version", "created_at", "updated_at"}

func setupProjectRepo(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewProjectRepository(db), mock
}

func TestProjectRepository_Create(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	now := time.Now()
	link := "https://github.com/example/site"

	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs(sqlmock.AnyArg(), "Site", "A portfolio site", pq.Array([]string{"Go", "React"}), link, nil).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "Site", "A portfolio site", "{Go,React}", link, nil, nil, "{}", 1, now, now))

	p, err := repo.Create(context.Background(), domain.ProjectInput{
		Title:       "Site",
		Description: "A portfolio site",
		TechStack:   []string{"Go", "React"},
		GithubLink:  &link,
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, []string{"Go", "React"}, p.TechStack)
	assert.Equal(t, []string{}, p.Images)
	assert.Nil(t, p.ImageURL)
	assert.Nil(t, p.LiveDemo)
	assert.Equal(t, link, *p.GithubLink)
	assert.Equal(t, int64(1), p.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Get(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	now := time.Now()

	t.Run("found keeps gallery order", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM projects WHERE id = \$1`).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p1", "Site", "A portfolio site", "{}", nil, nil, "https://res.cloudinary.com/x/upload/hero.png",
					"{https://a/upload/3.png,https://a/upload/1.png,https://a/upload/2.png}", 7, now, now))

		p, err := repo.Get(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, []string{"https://a/upload/3.png", "https://a/upload/1.png", "https://a/upload/2.png"}, p.Images)
		assert.Equal(t, "https://res.cloudinary.com/x/upload/hero.png", *p.ImageURL)
		assert.Equal(t, int64(7), p.Version)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM projects WHERE id = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("driver failure", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM projects WHERE id = \$1`).
			WithArgs("p1").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.Get(context.Background(), "p1")
		var pErr *domain.PersistenceError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, "get project", pErr.Op)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_List(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM projects ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p2", "Newer", "newer project", "{}", nil, nil, nil, "{}", 1, now, now).
			AddRow("p1", "Older", "older project", "{Go}", nil, nil, nil, "{}", 3, now.Add(-time.Hour), now))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "p2", items[0].ID)
	assert.Equal(t, []string{"Go"}, items[1].TechStack)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Delete(t *testing.T) {
	repo, mock := setupProjectRepo(t)

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "p1"))

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "gone"), domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_LoadGallery(t *testing.T) {
	repo, mock := setupProjectRepo(t)

	mock.ExpectQuery(`SELECT image_url, images, version FROM projects WHERE id = \$1`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"image_url", "images", "version"}).
			AddRow(nil, "{https://a/upload/1.png}", 4))

	g, err := repo.LoadGallery(context.Background(), "p1")
	require.NoError(t, err)
	assert.Nil(t, g.Primary)
	assert.Equal(t, []string{"https://a/upload/1.png"}, g.Images)
	assert.Equal(t, int64(4), g.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_SaveImages(t *testing.T) {
	images := []string{"https://a/upload/1.png", "https://a/upload/2.png"}

	t.Run("version matches", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		mock.ExpectQuery(`UPDATE projects\s+SET images = \$2, version = version \+ 1`).
			WithArgs("p1", pq.Array(images), int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))

		v, err := repo.SaveImages(context.Background(), "p1", images, 4)
		require.NoError(t, err)
		assert.Equal(t, int64(5), v)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		mock.ExpectQuery(`UPDATE projects\s+SET images = \$2`).
			WithArgs("p1", pq.Array(images), int64(4)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.SaveImages(context.Background(), "p1", images, 4)
		assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing project", func(t *testing.T) {
		repo, mock := setupProjectRepo(t)
		mock.ExpectQuery(`UPDATE projects\s+SET images = \$2`).
			WithArgs("gone", pq.Array(images), int64(1)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("gone").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.SaveImages(context.Background(), "gone", images, 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_SetPrimary(t *testing.T) {
	repo, mock := setupProjectRepo(t)
	ref := "https://res.cloudinary.com/x/upload/hero.png"

	mock.ExpectQuery(`UPDATE projects\s+SET image_url = \$2`).
		WithArgs("p1", ref).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))
	v, err := repo.SetPrimary(context.Background(), "p1", &ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	mock.ExpectQuery(`UPDATE projects\s+SET image_url = \$2`).
		WithArgs("p1", nil).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(3))
	_, err = repo.SetPrimary(context.Background(), "p1", nil)
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepository_VersionCheck(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	p, err := repo.Create(ctx, domain.ProjectInput{Title: "Site", Description: "A portfolio site"})
	require.NoError(t, err)

	g, err := repo.LoadGallery(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, g.Images)

	v, err := repo.SaveImages(ctx, p.ID, []string{"a"}, g.Version)
	require.NoError(t, err)
	assert.Equal(t, g.Version+1, v)

	_, err = repo.SaveImages(ctx, p.ID, []string{"b"}, g.Version)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got.Images)

	// returned values are copies
	got.Images[0] = "mutated"
	again, _ := repo.Get(ctx, p.ID)
	assert.Equal(t, "a", again.Images[0])
}
