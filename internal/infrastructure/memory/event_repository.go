package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/braymix/panda/internal/domain/event"
)

// EventRepository keeps events in process memory. Stored values are copied in
// and out so callers never share state with the store.
type EventRepository struct {
	mu     sync.RWMutex
	events map[string]event.Event
}

// NewEventRepository creates an empty EventRepository
func NewEventRepository() *EventRepository {
	return &EventRepository{events: make(map[string]event.Event)}
}

func (r *EventRepository) Create(ctx context.Context, e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e.ID = uuid.NewString()
	r.events[e.ID] = clone(e)
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	e := clone(&stored)
	return &e, nil
}

func (r *EventRepository) Exists(ctx context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.events[id]
	return ok, nil
}

func (r *EventRepository) Update(ctx context.Context, e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.events[e.ID]
	if !ok {
		return event.ErrEventNotFound
	}
	updated := clone(e)
	updated.CreatedAt = stored.CreatedAt
	r.events[e.ID] = updated
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[id]; !ok {
		return event.ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *EventRepository) Search(ctx context.Context, filter event.All, page event.PageRequest) (*event.Page, error) {
	r.mu.RLock()
	matched := make([]*event.Event, 0, len(r.events))
	for _, stored := range r.events {
		if filter.Matches(&stored) {
			e := clone(&stored)
			matched = append(matched, &e)
		}
	}
	r.mu.RUnlock()

	event.SortForListing(matched)

	total := int64(len(matched))
	start := min(page.Offset(), len(matched))
	end := min(start+page.Size, len(matched))

	return &event.Page{Items: matched[start:end], Total: total, Request: page}, nil
}

func (r *EventRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.events)), nil
}

// clone copies the event including the values behind its pointer fields
func clone(e *event.Event) event.Event {
	c := *e
	if e.EndAt != nil {
		end := *e.EndAt
		c.EndAt = &end
	}
	if e.Price != nil {
		price := *e.Price
		c.Price = &price
	}
	return c
}

var _ event.Repository = (*EventRepository)(nil)
