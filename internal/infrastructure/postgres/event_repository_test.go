package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/braymix/panda/internal/domain/event"
)

const testEventID = "3f1c2b7e-8d7a-4f0e-9a51-8f0d1f6f2a10"

func newMockRepo(t *testing.T) (*EventRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEventRepository(sqlx.NewDb(db, "postgres")), mock
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestEventRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	e := event.NewEvent(event.Details{
		Title:    "Conf A",
		Category: "Tech",
		StartAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}, now)

	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs(anyArgs(12)...).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(testEventID))

	err := repo.Create(context.Background(), e)

	require.NoError(t, err)
	assert.Equal(t, testEventID, e.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Create_Error(t *testing.T) {
	repo, mock := newMockRepo(t)
	e := event.NewEvent(event.Details{Title: "Conf A", Category: "Tech", StartAt: time.Now()}, time.Now())

	mock.ExpectQuery(`INSERT INTO events`).
		WithArgs(anyArgs(12)...).
		WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), e)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create event")
}

func TestEventRepository_GetByID(t *testing.T) {
	t.Run("maps every column", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		end := start.Add(2 * time.Hour)
		created := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(eventColumns).AddRow(
			testEventID, "Conf A", "Talks", "Rome", "Auditorium", "Tech",
			start, end, "Gophers", "25.50", "https://example.com", created, created,
		)
		mock.ExpectQuery(`SELECT id, title, .* FROM events WHERE id = \$1`).
			WithArgs(testEventID).
			WillReturnRows(rows)

		e, err := repo.GetByID(context.Background(), testEventID)

		require.NoError(t, err)
		assert.Equal(t, testEventID, e.ID)
		assert.Equal(t, "Conf A", e.Title)
		assert.Equal(t, "Talks", e.Description)
		assert.Equal(t, "Rome", e.City)
		assert.Equal(t, "Auditorium", e.Venue)
		assert.Equal(t, "Tech", e.Category)
		assert.True(t, start.Equal(e.StartAt))
		require.NotNil(t, e.EndAt)
		assert.True(t, end.Equal(*e.EndAt))
		assert.Equal(t, "Gophers", e.Organizer)
		require.NotNil(t, e.Price)
		assert.True(t, decimal.RequireFromString("25.5").Equal(*e.Price))
		assert.Equal(t, "https://example.com", e.URL)
		assert.True(t, created.Equal(e.CreatedAt))
	})

	t.Run("null columns become empty values", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(eventColumns).AddRow(
			testEventID, "Conf A", nil, nil, nil, "Tech",
			start, nil, nil, nil, nil, start, start,
		)
		mock.ExpectQuery(`SELECT .* FROM events WHERE id = \$1`).
			WithArgs(testEventID).
			WillReturnRows(rows)

		e, err := repo.GetByID(context.Background(), testEventID)

		require.NoError(t, err)
		assert.Empty(t, e.Description)
		assert.Empty(t, e.City)
		assert.Nil(t, e.EndAt)
		assert.Nil(t, e.Price)
	})

	t.Run("no row is ErrEventNotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT .* FROM events WHERE id = \$1`).
			WithArgs(testEventID).
			WillReturnRows(sqlmock.NewRows(eventColumns))

		e, err := repo.GetByID(context.Background(), testEventID)

		assert.Nil(t, e)
		assert.ErrorIs(t, err, event.ErrEventNotFound)
	})
}

func TestEventRepository_Exists(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM events WHERE id = \$1\)`).
		WithArgs(testEventID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), testEventID)

	require.NoError(t, err)
	assert.True(t, exists)
}

func TestEventRepository_Update(t *testing.T) {
	e := &event.Event{
		ID:        testEventID,
		Details:   event.Details{Title: "Conf B", Category: "Tech", StartAt: time.Now()},
		UpdatedAt: time.Now(),
	}

	t.Run("updates the row", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE events\s+SET title = \$1`).
			WithArgs(anyArgs(12)...).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Update(context.Background(), e))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row is ErrEventNotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`UPDATE events`).
			WithArgs(anyArgs(12)...).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(context.Background(), e), event.ErrEventNotFound)
	})
}

func TestEventRepository_Delete(t *testing.T) {
	t.Run("deletes the row", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs(testEventID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), testEventID))
	})

	t.Run("missing row is ErrEventNotFound", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
			WithArgs(testEventID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), testEventID), event.ErrEventNotFound)
	})
}

func TestEventRepository_Search(t *testing.T) {
	t.Run("no filters has no WHERE clause", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

		mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM events$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectQuery(`^SELECT id, title, .* FROM events ORDER BY start_at ASC, id ASC LIMIT .* OFFSET .*`).
			WillReturnRows(sqlmock.NewRows(eventColumns).AddRow(
				testEventID, "Conf A", nil, nil, nil, "Tech",
				start, nil, nil, nil, nil, start, start,
			))

		page, err := repo.Search(context.Background(), event.All{}, event.NewPageRequest(0, 20))

		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
		require.Len(t, page.Items, 1)
		assert.Equal(t, testEventID, page.Items[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("filters become one conjunctive WHERE clause", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		filter := event.Criteria{Query: "50%_off", From: &from, City: "Rome", Category: "Music"}.Predicates()

		pattern := `%50\%\_off%`
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events WHERE .*title ILIKE \$1 OR description ILIKE \$2.*start_at >= \$3.*LOWER\(city\) = LOWER\(\$4\).*LOWER\(category\) = LOWER\(\$5\)`).
			WithArgs(pattern, pattern, from, "Rome", "Music").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
		mock.ExpectQuery(`SELECT id, title, .* FROM events WHERE .* ORDER BY start_at ASC, id ASC`).
			WillReturnRows(sqlmock.NewRows(eventColumns))

		page, err := repo.Search(context.Background(), filter, event.NewPageRequest(2, 10))

		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)
		assert.Empty(t, page.Items)
		assert.Equal(t, event.PageRequest{Page: 2, Size: 10}, page.Request)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("huge page number keeps a non-negative offset", func(t *testing.T) {
		repo, mock := newMockRepo(t)

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectQuery(`LIMIT 100 OFFSET 9223372036854775800$`).
			WillReturnRows(sqlmock.NewRows(eventColumns))

		page, err := repo.Search(context.Background(), event.All{}, event.NewPageRequest(100000000000000000, 100))

		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count failure is returned", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`SELECT COUNT`).WillReturnError(errors.New("boom"))

		_, err := repo.Search(context.Background(), event.All{}, event.NewPageRequest(0, 20))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to count events")
	})
}

func TestEventRepository_Count(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM events`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	n, err := repo.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

type unknownPredicate struct{}

func (unknownPredicate) Matches(*event.Event) bool { return true }

func TestPredicateSQL_UnsupportedPredicate(t *testing.T) {
	_, err := predicateSQL(event.All{unknownPredicate{}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported predicate")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "plain", escapeLike("plain"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
}
