package catalog

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepo(mock), mock
}

var experienceCols = []string{"id", "company", "position", "start_date", "end_date",
	"current", "description", "skills", "created_at", "updated_at"}

func TestRepo_UpdateSkill(t *testing.T) {
	ctx := context.Background()
	in := SkillInput{Name: "Go", Category: "Backend", Proficiency: 9}

	t.Run("no rows maps to not found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`update skills`).
			WithArgs("missing", in.Name, in.Category, in.Proficiency, in.Icon, in.Featured).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.UpdateSkill(ctx, "missing", in)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other errors wrapped", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		boom := errors.New("conn reset")
		mock.ExpectQuery(`update skills`).
			WithArgs("s1", in.Name, in.Category, in.Proficiency, in.Icon, in.Featured).
			WillReturnError(boom)

		_, err := repo.UpdateSkill(ctx, "s1", in)
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("returns updated row", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`update skills`).
			WithArgs("s1", in.Name, in.Category, in.Proficiency, in.Icon, in.Featured).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "category", "proficiency", "icon", "featured", "created_at", "updated_at"}).
				AddRow("s1", "Go", "Backend", 9, nil, false, now, now))

		sk, err := repo.UpdateSkill(ctx, "s1", in)
		require.NoError(t, err)
		assert.Equal(t, "s1", sk.ID)
		assert.Equal(t, 9, sk.Proficiency)
		assert.Nil(t, sk.Icon)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepo_DeleteSkill_NoRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(`delete from skills`).WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteSkill(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_ListExperience_DatesAsText(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	end := "2023-08-31"

	mock.ExpectQuery(regexp.QuoteMeta(`to_char(start_date, 'YYYY-MM-DD'), to_char(end_date, 'YYYY-MM-DD')`)).
		WillReturnRows(pgxmock.NewRows(experienceCols).
			AddRow("e2", "Acme", "Lead", "2023-09-01", nil, true, []string{"Led the team"}, []string{"Go"}, now, now).
			AddRow("e1", "Initech", "Engineer", "2021-02-15", &end, false, nil, nil, now, now))

	items, err := repo.ListExperience(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "2023-09-01", items[0].StartDate)
	assert.Nil(t, items[0].EndDate)
	assert.True(t, items[0].Current)

	assert.Equal(t, "2021-02-15", items[1].StartDate)
	require.NotNil(t, items[1].EndDate)
	assert.Equal(t, "2023-08-31", *items[1].EndDate)
	assert.Equal(t, []string{}, items[1].Description)
	assert.Equal(t, []string{}, items[1].Skills)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_CreateExperience(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	in := ExperienceInput{
		Company:     "Acme",
		Position:    "Lead",
		StartDate:   "2023-09-01",
		Current:     true,
		Description: []string{"Led the team"},
		Skills:      []string{"Go"},
	}

	mock.ExpectQuery(`insert into experience`).
		WithArgs(pgxmock.AnyArg(), in.Company, in.Position, in.StartDate, in.EndDate, in.Current, in.Description, in.Skills).
		WillReturnRows(pgxmock.NewRows(experienceCols).
			AddRow("e9", "Acme", "Lead", "2023-09-01", nil, true, []string{"Led the team"}, []string{"Go"}, now, now))

	e, err := repo.CreateExperience(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "e9", e.ID)
	assert.Equal(t, "2023-09-01", e.StartDate)
	assert.Nil(t, e.EndDate)
	require.NoError(t, mock.ExpectationsWereMet())
}
