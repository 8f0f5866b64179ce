package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/braymix/panda/internal/domain/event"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var eventColumns = []string{
	"id", "title", "description", "city", "venue", "category",
	"start_at", "end_at", "organizer", "price", "url", "created_at", "updated_at",
}

// eventRow is one row of the events table
type eventRow struct {
	ID          string              `db:"id"`
	Title       string              `db:"title"`
	Description *string             `db:"description"`
	City        *string             `db:"city"`
	Venue       *string             `db:"venue"`
	Category    string              `db:"category"`
	StartAt     time.Time           `db:"start_at"`
	EndAt       *time.Time          `db:"end_at"`
	Organizer   *string             `db:"organizer"`
	Price       decimal.NullDecimal `db:"price"`
	URL         *string             `db:"url"`
	CreatedAt   time.Time           `db:"created_at"`
	UpdatedAt   time.Time           `db:"updated_at"`
}

// toEntity converts the row into an Event
func (r *eventRow) toEntity() *event.Event {
	e := &event.Event{
		ID: r.ID,
		Details: event.Details{
			Title:       r.Title,
			Description: deref(r.Description),
			City:        deref(r.City),
			Venue:       deref(r.Venue),
			Category:    r.Category,
			StartAt:     r.StartAt.UTC(),
			Organizer:   deref(r.Organizer),
			URL:         deref(r.URL),
		},
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if r.EndAt != nil {
		end := r.EndAt.UTC()
		e.EndAt = &end
	}
	if r.Price.Valid {
		price := r.Price.Decimal
		e.Price = &price
	}
	return e
}

// EventRepository is the PostgreSQL implementation of event.Repository
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates an EventRepository
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts the event and stores the generated id on it
func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (title, description, city, venue, category, start_at, end_at, organizer, price, url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		e.Title, nullable(e.Description), nullable(e.City), nullable(e.Venue), e.Category,
		e.StartAt, e.EndAt, nullable(e.Organizer), nullDecimal(e.Price), nullable(e.URL),
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetByID loads one event
func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	query := `SELECT ` + strings.Join(eventColumns, ", ") + ` FROM events WHERE id = $1`

	var row eventRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, event.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return row.toEntity(), nil
}

// Exists reports whether the event is stored
func (r *EventRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM events WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("failed to check event existence: %w", err)
	}
	return exists, nil
}

// Update overwrites every mutable column. created_at is never written.
func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, city = $3, venue = $4, category = $5,
		    start_at = $6, end_at = $7, organizer = $8, price = $9, url = $10, updated_at = $11
		WHERE id = $12
	`
	result, err := r.db.ExecContext(ctx, query,
		e.Title, nullable(e.Description), nullable(e.City), nullable(e.Venue), e.Category,
		e.StartAt, e.EndAt, nullable(e.Organizer), nullDecimal(e.Price), nullable(e.URL),
		e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// Delete removes the event
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rowsAffected == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

// Search runs a count query and a page query with the same WHERE clause
func (r *EventRepository) Search(ctx context.Context, filter event.All, page event.PageRequest) (*event.Page, error) {
	countBuilder := psql.Select("COUNT(*)").From("events")
	listBuilder := psql.Select(eventColumns...).From("events").
		OrderBy("start_at ASC", "id ASC").
		Limit(uint64(page.Size)).
		Offset(uint64(page.Offset()))

	if len(filter) > 0 {
		where, err := predicateSQL(filter)
		if err != nil {
			return nil, err
		}
		countBuilder = countBuilder.Where(where)
		listBuilder = listBuilder.Where(where)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	listQuery, listArgs, err := listBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}
	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, listArgs...); err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}

	events := make([]*event.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].toEntity()
	}
	return &event.Page{Items: events, Total: total, Request: page}, nil
}

// Count returns the number of stored events
func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM events`); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return total, nil
}

// predicateSQL translates a domain predicate into a WHERE fragment
func predicateSQL(p event.Predicate) (sq.Sqlizer, error) {
	switch p := p.(type) {
	case event.All:
		and := sq.And{}
		for _, inner := range p {
			s, err := predicateSQL(inner)
			if err != nil {
				return nil, err
			}
			and = append(and, s)
		}
		return and, nil
	case event.TextContains:
		pattern := "%" + escapeLike(p.Text) + "%"
		return sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		}, nil
	case event.StartsAtOrAfter:
		return sq.GtOrEq{"start_at": p.Time}, nil
	case event.StartsAtOrBefore:
		return sq.LtOrEq{"start_at": p.Time}, nil
	case event.CityEquals:
		return sq.Expr("LOWER(city) = LOWER(?)", p.City), nil
	case event.CategoryEquals:
		return sq.Expr("LOWER(category) = LOWER(?)", p.Category), nil
	default:
		return nil, fmt.Errorf("unsupported predicate %T", p)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

var _ event.Repository = (*EventRepository)(nil)
