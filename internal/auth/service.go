package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
	"github.com/tenaris-admin/tenaris-admin/internal/users"
)

// Service authenticates users and manages their sessions.
type Service struct {
	users    users.Repository
	sessions *shared.SessionManager
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo users.Repository, sessions *shared.SessionManager, logger *slog.Logger) *Service {
	return &Service{users: repo, sessions: sessions, logger: logger}
}

// Login verifies the credentials and issues a session token. Credential
// failures are indistinguishable from unknown emails on purpose.
func (s *Service) Login(ctx context.Context, email, password string) (string, shared.Principal, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if shared.IsKind(err, shared.KindNotFound) {
			return "", shared.Principal{}, shared.NewValidation(shared.KeyInvalidCredentials)
		}
		return "", shared.Principal{}, err
	}
	if user.Status != entity.StatusActive {
		return "", shared.Principal{}, shared.NewValidation(shared.KeyInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", shared.Principal{}, shared.NewValidation(shared.KeyInvalidCredentials)
	}

	principal := shared.Principal{
		ID:       user.ID,
		Role:     user.Role,
		ClientID: user.ClientID,
		Grants:   user.Grants,
	}
	token, err := s.sessions.Issue(ctx, principal)
	if err != nil {
		return "", shared.Principal{}, shared.NewInternal(shared.KeyInternal, err)
	}
	return token, principal, nil
}

// Logout revokes the session behind the token. Unknown tokens succeed.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return shared.NewInternal(shared.KeyInternal, err)
	}
	return nil
}
