package event

import "context"

// Repository is the event repository interface
type Repository interface {
	// Create stores a new event and assigns its ID
	Create(ctx context.Context, event *Event) error

	// GetByID returns the event with the given ID
	GetByID(ctx context.Context, id string) (*Event, error)

	// Exists reports whether an event with the given ID is stored
	Exists(ctx context.Context, id string) (bool, error)

	// Update replaces the stored event
	Update(ctx context.Context, event *Event) error

	// Delete removes the event permanently
	Delete(ctx context.Context, id string) error

	// Search returns one page of events matching every predicate
	Search(ctx context.Context, filter All, page PageRequest) (*Page, error)

	// Count returns the number of stored events
	Count(ctx context.Context) (int64, error)
}
