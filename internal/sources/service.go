package sources

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/events"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Service manages the source lifecycle.
type Service struct {
	repo     Repository
	recorder events.Recorder
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, recorder events.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// List returns a page of sources.
func (s *Service) List(ctx context.Context, lq entity.ListQuery) (shared.Page[Source], error) {
	results, total, err := s.repo.List(ctx, lq)
	if err != nil {
		return shared.Page[Source]{}, err
	}
	if results == nil {
		results = []Source{}
	}
	return shared.Page[Source]{Data: results, Meta: shared.NewPageMeta(lq.Page, lq.PerPage, total)}, nil
}

// Get fetches a source by id. Soft-deleted sources stay readable by id.
func (s *Service) Get(ctx context.Context, id string) (Source, error) {
	if id == "" {
		return Source{}, shared.NewValidation(shared.KeyIDRequired)
	}
	return s.repo.Get(ctx, id)
}

// Create registers a new source for a client. The code must be unique among
// the client's live sources.
func (s *Service) Create(ctx context.Context, req CreateSourceRequest, actorID string) (string, error) {
	taken, err := s.repo.ExistsCode(ctx, req.ClientID, req.Code)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.NewConflict(shared.KeyDuplicateCode)
	}

	source := Source{
		Base: entity.Base{
			ID:     uuid.NewString(),
			Status: entity.StatusActive,
		},
		Name:     req.Name,
		Code:     req.Code,
		URL:      req.URL,
		ClientID: req.ClientID,
	}
	if err := s.repo.Create(ctx, source); err != nil {
		return "", err
	}

	s.record(ctx, actorID, "CREATE", source.ClientID, source.ID)
	return source.ID, nil
}

// Update mutates a source through the version-checked path.
func (s *Service) Update(ctx context.Context, id string, req UpdateSourceRequest, actorID string) (Source, error) {
	if id == "" {
		return Source{}, shared.NewValidation(shared.KeyIDRequired)
	}

	var updated Source
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CheckVersion(ctx, id, req.Version); err != nil {
			return err
		}
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.Code != nil && *req.Code != current.Code {
			taken, err := s.repo.ExistsCode(ctx, current.ClientID, *req.Code)
			if err != nil {
				return err
			}
			if taken {
				return shared.NewConflict(shared.KeyDuplicateCode)
			}
			current.Code = *req.Code
		}
		if req.Name != nil {
			current.Name = *req.Name
		}
		if req.URL != nil {
			current.URL = req.URL
		}
		current.Version = *req.Version
		if err := s.repo.Update(ctx, current); err != nil {
			return err
		}
		updated, err = s.repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return Source{}, err
	}

	s.record(ctx, actorID, "UPDATE", updated.ClientID, id)
	return updated, nil
}

// Delete soft-deletes a source.
func (s *Service) Delete(ctx context.Context, id string, version *int, actorID string) error {
	if id == "" {
		return shared.NewValidation(shared.KeyIDRequired)
	}

	var clientID string
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CheckVersion(ctx, id, version); err != nil {
			return err
		}
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		clientID = current.ClientID
		return s.repo.SoftDelete(ctx, id, *version)
	})
	if err != nil {
		return err
	}

	s.record(ctx, actorID, "DELETE", clientID, id)
	return nil
}

// SetActive flips the source between ACTIVE and INACTIVE through the
// versioned update path.
func (s *Service) SetActive(ctx context.Context, id string, req StatusRequest, actorID string) (Source, error) {
	if id == "" {
		return Source{}, shared.NewValidation(shared.KeyIDRequired)
	}

	target := entity.StatusInactive
	action := "DEACTIVATE"
	if req.Active {
		target = entity.StatusActive
		action = "ACTIVATE"
	}

	var updated Source
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CheckVersion(ctx, id, req.Version); err != nil {
			return err
		}
		if err := s.repo.SetStatus(ctx, id, *req.Version, target); err != nil {
			return err
		}
		var err error
		updated, err = s.repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return Source{}, err
	}

	s.record(ctx, actorID, action, updated.ClientID, id)
	return updated, nil
}

func (s *Service) record(ctx context.Context, actorID, action, clientID, entityID string) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(ctx, events.Event{
		ActorID:  actorID,
		ClientID: clientID,
		Action:   action,
		Entity:   "SOURCE",
		EntityID: entityID,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record source event", slog.Any("error", err))
	}
}
