package handler

import (
	"context"

	"github.com/braymix/panda/internal/application"
	"github.com/braymix/panda/internal/domain/event"
)

// EventServiceInterface is the event use-case surface the handlers depend on
type EventServiceInterface interface {
	SearchEvents(ctx context.Context, input application.SearchInput) (*event.Page, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	CreateEvent(ctx context.Context, input application.EventInput) (*event.Event, error)
	UpdateEvent(ctx context.Context, id string, input application.EventInput) (*event.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}
