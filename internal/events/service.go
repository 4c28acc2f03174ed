package events

import (
	"context"
	"log/slog"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, event Event) (string, error)
	Get(ctx context.Context, id string) (Event, error)
	List(ctx context.Context, lq entity.ListQuery) ([]Event, int, error)
}

// Service orchestrates audit event reads and the synchronous write path.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Record implements Recorder by writing the event inline. The HTTP process
// normally wraps this with the asynq dispatcher; the worker calls it
// directly.
func (s *Service) Record(ctx context.Context, event Event) error {
	id, err := s.store.Insert(ctx, event)
	if err != nil {
		return err
	}
	if s.logger != nil {
		s.logger.Debug("audit event recorded",
			slog.String("id", id),
			slog.String("action", event.Action),
			slog.String("entity", event.Entity),
			slog.String("entity_id", event.EntityID))
	}
	return nil
}

// Get fetches one event.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	if id == "" {
		return Event{}, shared.NewValidation(shared.KeyIDRequired)
	}
	return s.store.Get(ctx, id)
}

// List returns a page of events.
func (s *Service) List(ctx context.Context, lq entity.ListQuery) (shared.Page[Event], error) {
	results, total, err := s.store.List(ctx, lq)
	if err != nil {
		return shared.Page[Event]{}, err
	}
	if results == nil {
		results = []Event{}
	}
	return shared.Page[Event]{
		Data: results,
		Meta: shared.NewPageMeta(lq.Page, lq.PerPage, total),
	}, nil
}
