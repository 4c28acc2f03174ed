package users

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/events"
	"github.com/tenaris-admin/tenaris-admin/internal/perm"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// SessionRevoker destroys live sessions of a user after delete or role
// changes. The shared.SessionManager implements it.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) (int, error)
}

// Service orchestrates the user lifecycle, including the wholesale
// replacement of owned join rows on every update.
type Service struct {
	repo     Repository
	sessions SessionRevoker
	recorder events.Recorder
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, sessions SessionRevoker, recorder events.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, sessions: sessions, recorder: recorder, logger: logger}
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, lq entity.ListQuery) (shared.Page[User], error) {
	results, total, err := s.repo.List(ctx, lq)
	if err != nil {
		return shared.Page[User]{}, err
	}
	if results == nil {
		results = []User{}
	}
	return shared.Page[User]{Data: results, Meta: shared.NewPageMeta(lq.Page, lq.PerPage, total)}, nil
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, shared.NewValidation(shared.KeyIDRequired)
	}
	return s.repo.Get(ctx, id)
}

// Create registers a new user. The caller must be allowed to create the
// requested role; grants are filtered to the role's allowed assignments and
// the read bit is coerced before persisting.
func (s *Service) Create(ctx context.Context, req CreateUserRequest, caller shared.Principal) (string, error) {
	if !perm.KnownRole(req.Role) {
		return "", shared.NewValidation(shared.KeyInvalidPayload)
	}
	if caller.Role != perm.RoleAdmin && !perm.RoleCanCreate(caller.Role, req.Role) {
		return "", shared.NewPermission(shared.KeyRoleNotCreatable)
	}

	taken, err := s.repo.ExistsEmail(ctx, req.Email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.NewConflict(shared.KeyDuplicateEmail)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", shared.NewInternal(shared.KeyInternal, err)
	}

	user := User{
		Base: entity.Base{
			ID:     uuid.NewString(),
			Status: entity.StatusPending,
		},
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		ClientID:     req.ClientID,
	}
	grants := normalizeGrants(req.Role, req.Assignments)

	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, user); err != nil {
			return err
		}
		if err := s.repo.ReplaceGrants(ctx, user.ID, grants); err != nil {
			return err
		}
		if err := s.repo.ReplaceCostCenters(ctx, user.ID, req.CostCenterIDs); err != nil {
			return err
		}
		return s.repo.ReplaceSources(ctx, user.ID, req.SourceIDs)
	})
	if err != nil {
		return "", err
	}

	s.record(ctx, caller.ID, "CREATE", user.ClientID, user.ID)
	return user.ID, nil
}

// CreateOwner creates the administrative user of a freshly created client.
// Called from the clients service inside its transaction; the context
// carries that transaction so the whole setup commits or rolls back as one.
func (s *Service) CreateOwner(ctx context.Context, clientID, name, email, password string) (string, error) {
	taken, err := s.repo.ExistsEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if taken {
		return "", shared.NewConflict(shared.KeyDuplicateEmail)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", shared.NewInternal(shared.KeyInternal, err)
	}

	user := User{
		Base: entity.Base{
			ID:     uuid.NewString(),
			Status: entity.StatusActive,
		},
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         perm.RoleAdminClient,
		ClientID:     clientID,
	}

	// The owner starts with full grants on everything its role may hold.
	var grants []shared.Grant
	for _, assignment := range perm.AllowedAssignmentsForRole(perm.RoleAdminClient) {
		grants = append(grants, shared.Grant{
			Assignment: assignment,
			Create:     true, Read: true, Update: true, Delete: true,
		})
	}

	err = s.repo.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, user); err != nil {
			return err
		}
		return s.repo.ReplaceGrants(ctx, user.ID, grants)
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// Update mutates a user through the version-checked path. Assignments, cost
// centers and sources present in the request replace the stored sets
// wholesale inside the same transaction as the parent row update.
func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest, caller shared.Principal) (User, error) {
	if id == "" {
		return User{}, shared.NewValidation(shared.KeyIDRequired)
	}
	if req.Role != nil {
		if !perm.KnownRole(*req.Role) {
			return User{}, shared.NewValidation(shared.KeyInvalidPayload)
		}
		if caller.Role != perm.RoleAdmin && !perm.RoleCanCreate(caller.Role, *req.Role) {
			return User{}, shared.NewPermission(shared.KeyRoleNotCreatable)
		}
	}

	var updated User
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
		if req.Email != nil && *req.Email != current.Email {
			taken, err := s.repo.ExistsEmail(ctx, *req.Email)
			if err != nil {
				return err
			}
			if taken {
				return shared.NewConflict(shared.KeyDuplicateEmail)
			}
			current.Email = *req.Email
		}
		if req.Password != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				return shared.NewInternal(shared.KeyInternal, err)
			}
			current.PasswordHash = string(hash)
		}
		previousRole := current.Role
		if req.Role != nil {
			current.Role = *req.Role
		}
		current.Version = *req.Version
		if err := s.repo.Update(ctx, current); err != nil {
			return err
		}

		if req.Assignments != nil {
			grants := normalizeGrants(current.Role, req.Assignments)
			if err := s.repo.ReplaceGrants(ctx, id, grants); err != nil {
				return err
			}
		} else if req.Role != nil && *req.Role != previousRole {
			// A role change drops stored grants the new role may not hold,
			// even when the request resends no assignments. Grant storage is
			// what the guard trusts.
			grants := normalizeGrants(current.Role, current.Grants)
			if err := s.repo.ReplaceGrants(ctx, id, grants); err != nil {
				return err
			}
		}
		if req.CostCenterIDs != nil {
			if err := s.repo.ReplaceCostCenters(ctx, id, req.CostCenterIDs); err != nil {
				return err
			}
		}
		if req.SourceIDs != nil {
			if err := s.repo.ReplaceSources(ctx, id, req.SourceIDs); err != nil {
				return err
			}
		}

		updated, err = s.repo.Get(ctx, id)
		return err
	})
	if err != nil {
		return User{}, err
	}

	// Grant or role changes must not outlive the sessions that cached them.
	if s.sessions != nil && (req.Assignments != nil || req.Role != nil) {
		if _, err := s.sessions.RevokeUser(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn("revoke sessions after update", slog.Any("error", err))
		}
	}

	s.record(ctx, caller.ID, "UPDATE", updated.ClientID, id)
	return updated, nil
}

// Delete soft-deletes a user and revokes its live sessions.
func (s *Service) Delete(ctx context.Context, id string, version *int, caller shared.Principal) error {
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

	if s.sessions != nil {
		if _, err := s.sessions.RevokeUser(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn("revoke sessions after delete", slog.Any("error", err))
		}
	}

	s.record(ctx, caller.ID, "DELETE", "", id)
	return nil
}

// normalizeGrants drops grants for assignments the role may not hold and
// coerces the read bit on the rest.
func normalizeGrants(role string, grants []shared.Grant) []shared.Grant {
	allowed := make(map[string]struct{})
	for _, assignment := range perm.AllowedAssignmentsForRole(role) {
		allowed[assignment] = struct{}{}
	}
	var out []shared.Grant
	for _, grant := range grants {
		if _, ok := allowed[grant.Assignment]; !ok {
			continue
		}
		out = append(out, grant.Normalize())
	}
	return out
}

func (s *Service) record(ctx context.Context, actorID, action, clientID, entityID string) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.Record(ctx, events.Event{
		ActorID:  actorID,
		ClientID: clientID,
		Action:   action,
		Entity:   "USER",
		EntityID: entityID,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("record user event", slog.Any("error", err))
	}
}
