package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/braymix/panda/internal/clock"
	"github.com/braymix/panda/internal/domain/event"
	"github.com/braymix/panda/internal/pkg/logger"
	"github.com/braymix/panda/internal/pkg/metrics"
)

// MutationLock serializes updates and deletes of one event.
// The returned func releases the lock.
type MutationLock interface {
	Lock(ctx context.Context, eventID string) (func(), error)
}

type EventService struct {
	eventRepo event.Repository
	lock      MutationLock
	clock     clock.Clock
	metrics   *metrics.Metrics
}

// NewEventService creates an EventService. lock and m may be nil.
func NewEventService(eventRepo event.Repository, lock MutationLock, clk clock.Clock, m *metrics.Metrics) *EventService {
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &EventService{eventRepo: eventRepo, lock: lock, clock: clk, metrics: m}
}

type SearchInput struct {
	Query    string
	From     *time.Time
	To       *time.Time
	City     string
	Category string
	Page     int
	Size     int
}

// EventInput carries the client-supplied fields of an event
type EventInput struct {
	Title       string
	Description string
	City        string
	Venue       string
	Category    string
	StartAt     time.Time
	EndAt       *time.Time
	Organizer   string
	Price       *decimal.Decimal
	URL         string
}

// Details returns the normalized domain value of the input
func (in EventInput) Details() event.Details {
	return event.Details{
		Title:       in.Title,
		Description: in.Description,
		City:        in.City,
		Venue:       in.Venue,
		Category:    in.Category,
		StartAt:     in.StartAt,
		EndAt:       in.EndAt,
		Organizer:   in.Organizer,
		Price:       in.Price,
		URL:         in.URL,
	}.Normalize()
}

func (s *EventService) SearchEvents(ctx context.Context, input SearchInput) (page *event.Page, err error) {
	defer func() { s.record("search", err) }()

	criteria := event.Criteria{
		Query:    input.Query,
		From:     input.From,
		To:       input.To,
		City:     input.City,
		Category: input.Category,
	}
	req := event.NewPageRequest(input.Page, input.Size)

	page, err = s.eventRepo.Search(ctx, criteria.Predicates(), req)
	if err != nil {
		return nil, fmt.Errorf("failed to search events: %w", err)
	}
	return page, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (e *event.Event, err error) {
	defer func() { s.record("get", err) }()

	if err := event.ValidateID(id); err != nil {
		return nil, err
	}
	e, err = s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *EventService) CreateEvent(ctx context.Context, input EventInput) (e *event.Event, err error) {
	defer func() { s.record("create", err) }()

	d := input.Details()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	e = event.NewEvent(d, s.clock.Now())
	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	logger.Debug("event created", zap.String("event_id", e.ID))
	return e, nil
}

// UpdateEvent replaces every mutable field of the event
func (s *EventService) UpdateEvent(ctx context.Context, id string, input EventInput) (e *event.Event, err error) {
	defer func() { s.record("update", err) }()

	if err := event.ValidateID(id); err != nil {
		return nil, err
	}
	d := input.Details()
	if err := d.Validate(); err != nil {
		return nil, err
	}

	unlock, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	e, err = s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Replace(d, s.clock.Now())
	if err := s.eventRepo.Update(ctx, e); err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	logger.Debug("event updated", zap.String("event_id", e.ID))
	return e, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) (err error) {
	defer func() { s.record("delete", err) }()

	if err := event.ValidateID(id); err != nil {
		return err
	}

	unlock, err := s.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	exists, err := s.eventRepo.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return event.ErrEventNotFound
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}
	logger.Debug("event deleted", zap.String("event_id", id))
	return nil
}

// CountEvents returns the number of stored events
func (s *EventService) CountEvents(ctx context.Context) (int64, error) {
	return s.eventRepo.Count(ctx)
}

func (s *EventService) acquire(ctx context.Context, id string) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}
	return s.lock.Lock(ctx, id)
}

func (s *EventService) record(operation string, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.EventOperationsTotal.WithLabelValues(operation, operationStatus(err)).Inc()
}

func operationStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, event.ErrEventNotFound):
		return "not_found"
	case errors.Is(err, event.ErrValidation):
		return "invalid"
	case errors.Is(err, event.ErrEventLocked):
		return "locked"
	default:
		return "error"
	}
}
