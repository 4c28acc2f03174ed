package costcenters

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/events"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Service manages the cost center lifecycle.
type Service struct {
	repo     Repository
	recorder events.Recorder
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, recorder events.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// List returns a page of cost centers.
func (s *Service) List(ctx context.Context, lq entity.ListQuery) (shared.Page[CostCenter], error) {
	results, total, err := s.repo.List(ctx, lq)
	if err != nil {
		return shared.Page[CostCenter]{}, err
	}
	if results == nil {
		results = []CostCenter{}
	}
	return shared.Page[CostCenter]{Data: results, Meta: shared.NewPageMeta(lq.Page, lq.PerPage, total)}, nil
}

// Get fetches a cost center by id. Soft-deleted rows stay readable by id.
func (s *Service) Get(ctx context.Context, id string) (CostCenter, error) {
	if id == "" {
		return CostCenter{}, shared.NewValidation(shared.KeyIDRequired)
	}
	return s.repo.Get(ctx, id)
}

// Create registers a cost center. The code must be unique among the client's
// live cost centers.
func (s *Service) Create(ctx context.Context, req CreateCostCenterRequest, actorID string) (string, error) {
	taken, err := s.repo.ExistsCode(ctx, req.ClientID, req.Code)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.NewConflict(shared.KeyDuplicateCode)
	}

	cc := CostCenter{
		Base: entity.Base{
			ID:     uuid.NewString(),
			Status: entity.StatusActive,
		},
		Name:     req.Name,
		Code:     req.Code,
		ClientID: req.ClientID,
	}
	if err := s.repo.Create(ctx, cc); err != nil {
		return "", err
	}

	s.record(ctx, actorID, "CREATE", cc.ClientID, cc.ID)
	return cc.ID, nil
}

// Seed creates a cost center as part of a tenant bootstrap. It joins a
// transaction carried by the context, so a failed seed rolls back the whole
// client creation.
func (s *Service) Seed(ctx context.Context, clientID, name, code string) (string, error) {
	taken, err := s.repo.ExistsCode(ctx, clientID, code)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.NewConflict(shared.KeyDuplicateCode)
	}

	cc := CostCenter{
		Base: entity.Base{
			ID:     uuid.NewString(),
			Status: entity.StatusActive,
		},
		Name:     name,
		Code:     code,
		ClientID: clientID,
	}
	if err := s.repo.Create(ctx, cc); err != nil {
		return "", err
	}
	return cc.ID, nil
}

// Update mutates a cost center through the version-checked path.
func (s *Service) Update(ctx context.Context, id string, req UpdateCostCenterRequest, actorID string) (CostCenter, error) {
	if id == "" {
		return CostCenter{}, shared.NewValidation(shared.KeyIDRequired)
	}

	var updated CostCenter
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
		current.Version = *req.Version
		if err := s.repo.Update(ctx, current); err != nil {
			return err
		}
		updated, err = s.repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return CostCenter{}, err
	}

	s.record(ctx, actorID, "UPDATE", updated.ClientID, id)
	return updated, nil
}

// Delete soft-deletes a cost center.
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

func (s *Service) record(ctx context.Context, actorID, action, clientID, entityID string) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(ctx, events.Event{
		ActorID:  actorID,
		ClientID: clientID,
		Action:   action,
		Entity:   "COST_CENTER",
		EntityID: entityID,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record cost center event", slog.Any("error", err))
	}
}
