package packages

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/events"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Service orchestrates the package lifecycle.
type Service struct {
	repo     Repository
	recorder events.Recorder
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, recorder events.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// List returns a page of packages.
func (s *Service) List(ctx context.Context, lq entity.ListQuery) (shared.Page[Package], error) {
	results, total, err := s.repo.List(ctx, lq)
	if err != nil {
		return shared.Page[Package]{}, err
	}
	if results == nil {
		results = []Package{}
	}
	return shared.Page[Package]{Data: results, Meta: shared.NewPageMeta(lq.Page, lq.PerPage, total)}, nil
}

// Get fetches a package by id.
func (s *Service) Get(ctx context.Context, id string) (Package, error) {
	if id == "" {
		return Package{}, shared.NewValidation(shared.KeyIDRequired)
	}
	return s.repo.Get(ctx, id)
}

// Create registers a new package, active immediately.
func (s *Service) Create(ctx context.Context, req CreatePackageRequest, actorID string) (string, error) {
	pkg := Package{
		Base: entity.Base{
			ID:     uuid.NewString(),
			Status: entity.StatusActive,
		},
		Name:        req.Name,
		Description: req.Description,
		MaxUsers:    req.MaxUsers,
		MaxSources:  req.MaxSources,
	}
	if err := s.repo.InTx(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, pkg)
	}); err != nil {
		return "", err
	}
	s.record(ctx, actorID, "CREATE", pkg.ID)
	return pkg.ID, nil
}

// Update mutates a package through the version-checked path.
func (s *Service) Update(ctx context.Context, id string, req UpdatePackageRequest, actorID string) (Package, error) {
	if id == "" {
		return Package{}, shared.NewValidation(shared.KeyIDRequired)
	}

	var updated Package
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
		if req.Description != nil {
			current.Description = req.Description
		}
		if req.MaxUsers != nil {
			current.MaxUsers = *req.MaxUsers
		}
		if req.MaxSources != nil {
			current.MaxSources = *req.MaxSources
		}
		current.Version = *req.Version
		if err := s.repo.Update(ctx, current); err != nil {
			return err
		}
		updated, err = s.repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return Package{}, err
	}

	s.record(ctx, actorID, "UPDATE", id)
	return updated, nil
}

// Delete soft-deletes a package.
func (s *Service) Delete(ctx context.Context, id string, version *int, actorID string) error {
	if id == "" {
		return shared.NewValidation(shared.KeyIDRequired)
	}
	err := s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CheckVersion(ctx, id, version); err != nil {
			return err
		}
		return s.repo.SoftDelete(ctx, id, *version)
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorID, "DELETE", id)
	return nil
}

func (s *Service) record(ctx context.Context, actorID, action, entityID string) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(ctx, events.Event{
		ActorID:  actorID,
		Action:   action,
		Entity:   "PACKAGE",
		EntityID: entityID,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record package event", slog.Any("error", err))
	}
}
