package clients

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/events"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// OwnerCreator creates the administrative user owning a new client. The
// users service implements it; the indirection keeps the packages acyclic.
type OwnerCreator interface {
	CreateOwner(ctx context.Context, clientID, name, email, password string) (string, error)
}

// CostCenterSeeder creates the initial cost centers of a new client inside
// the same transaction.
type CostCenterSeeder interface {
	Seed(ctx context.Context, clientID, name, code string) (string, error)
}

// Service orchestrates the client lifecycle.
type Service struct {
	repo     Repository
	owners   OwnerCreator
	seeder   CostCenterSeeder
	recorder events.Recorder
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, owners OwnerCreator, seeder CostCenterSeeder, recorder events.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, owners: owners, seeder: seeder, recorder: recorder, logger: logger}
}

// List returns a page of clients.
func (s *Service) List(ctx context.Context, lq entity.ListQuery) (shared.Page[Client], error) {
	results, total, err := s.repo.List(ctx, lq)
	if err != nil {
		return shared.Page[Client]{}, err
	}
	if results == nil {
		results = []Client{}
	}
	return shared.Page[Client]{Data: results, Meta: shared.NewPageMeta(lq.Page, lq.PerPage, total)}, nil
}

// Get fetches a client by id. Soft-deleted clients stay readable by id.
func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	if id == "" {
		return Client{}, shared.NewValidation(shared.KeyIDRequired)
	}
	return s.repo.Get(ctx, id)
}

// History lists the lifecycle records of a client.
func (s *Service) History(ctx context.Context, id string) ([]HistoryEntry, error) {
	live, err := s.repo.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, shared.NewNotFound(shared.KeyNotFound)
	}
	return s.repo.ListHistory(ctx, id)
}

// Create registers a new client, and when the request carries an owner or
// initial cost centers, creates those in the same transaction so the whole
// tenant setup is all-or-nothing. Returns the new client id.
func (s *Service) Create(ctx context.Context, req CreateClientRequest, actorID string) (string, error) {
	taken, err := s.repo.ExistsCNPJ(ctx, req.CNPJ)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.NewConflict(shared.KeyDuplicateCNPJ)
	}

	client := Client{
		Base: entity.Base{
			ID:     uuid.NewString(),
			Status: entity.StatusPending,
		},
		CNPJ:      req.CNPJ,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		PackageID: req.PackageID,
	}

	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, client); err != nil {
			return err
		}
		if req.Owner != nil && s.owners != nil {
			if _, err := s.owners.CreateOwner(ctx, client.ID, req.Owner.Name, req.Owner.Email, req.Owner.Password); err != nil {
				return err
			}
		}
		if s.seeder != nil {
			for _, cc := range req.CostCenters {
				if _, err := s.seeder.Seed(ctx, client.ID, cc.Name, cc.Code); err != nil {
					return err
				}
			}
		}
		return s.repo.InsertHistory(ctx, HistoryEntry{
			ClientID: client.ID,
			ActorID:  actorID,
			Action:   HistoryCreated,
			ToStatus: client.Status,
		})
	})
	if err != nil {
		return "", err
	}

	s.record(ctx, actorID, "CREATE", client.ID, client.ID)
	return client.ID, nil
}

// Update mutates a client through the version-checked path.
func (s *Service) Update(ctx context.Context, id string, req UpdateClientRequest, actorID string) (Client, error) {
	if id == "" {
		return Client{}, shared.NewValidation(shared.KeyIDRequired)
	}

	var updated Client
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CheckVersion(ctx, id, req.Version); err != nil {
			return err
		}
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			current.Name = *req.Name
		}
		if req.Email != nil {
			current.Email = req.Email
		}
		if req.Phone != nil {
			current.Phone = req.Phone
		}
		if req.PackageID != nil {
			current.PackageID = *req.PackageID
		}
		current.Version = *req.Version
		if err := s.repo.Update(ctx, current); err != nil {
			return err
		}
		if err := s.repo.InsertHistory(ctx, HistoryEntry{
			ClientID: id,
			ActorID:  actorID,
			Action:   HistoryUpdated,
		}); err != nil {
			return err
		}
		updated, err = s.repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return Client{}, err
	}

	s.record(ctx, actorID, "UPDATE", id, id)
	return updated, nil
}

// Delete soft-deletes a client. Already-deleted clients are reported as not
// found because the existence probe excludes soft-deleted rows.
func (s *Service) Delete(ctx context.Context, id string, version *int, actorID string) error {
	if id == "" {
		return shared.NewValidation(shared.KeyIDRequired)
	}

	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CheckVersion(ctx, id, version); err != nil {
			return err
		}
		if err := s.repo.SoftDelete(ctx, id, *version); err != nil {
			return err
		}
		return s.repo.InsertHistory(ctx, HistoryEntry{
			ClientID: id,
			ActorID:  actorID,
			Action:   HistoryDeleted,
			ToStatus: entity.StatusInactive,
		})
	})
	if err != nil {
		return err
	}

	s.record(ctx, actorID, "DELETE", id, id)
	return nil
}

// SetActive flips the client between ACTIVE and INACTIVE without marking it
// deleted, still through the versioned update path.
func (s *Service) SetActive(ctx context.Context, id string, req StatusRequest, actorID string) (Client, error) {
	if id == "" {
		return Client{}, shared.NewValidation(shared.KeyIDRequired)
	}

	target := entity.StatusInactive
	action := HistoryDeactivated
	if req.Active {
		target = entity.StatusActive
		action = HistoryActivated
	}

	var updated Client
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CheckVersion(ctx, id, req.Version); err != nil {
			return err
		}
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repo.SetStatus(ctx, id, *req.Version, target); err != nil {
			return err
		}
		if err := s.repo.InsertHistory(ctx, HistoryEntry{
			ClientID:   id,
			ActorID:    actorID,
			Action:     action,
			FromStatus: current.Status,
			ToStatus:   target,
		}); err != nil {
			return err
		}
		updated, err = s.repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return Client{}, err
	}

	s.record(ctx, actorID, action, id, id)
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
		Entity:   "CLIENT",
		EntityID: entityID,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record client event", slog.Any("error", err))
	}
}
