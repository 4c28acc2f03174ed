package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a token has no live session.
var ErrSessionNotFound = errors.New("shared: session not found")

// SessionManager stores bearer-token sessions in Redis. The token is opaque;
// the stored payload is the resolved principal.
type SessionManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, ttl time.Duration) *SessionManager {
	return &SessionManager{client: client, ttl: ttl}
}

// TTL returns the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// Issue creates a new session for the principal and returns its token.
func (sm *SessionManager) Issue(ctx context.Context, p Principal) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	if err := sm.client.Set(ctx, sm.redisKey(token), payload, sm.ttl).Err(); err != nil {
		return "", fmt.Errorf("shared: store session: %w", err)
	}
	return token, nil
}

// Resolve loads the principal behind a token and refreshes its TTL.
func (sm *SessionManager) Resolve(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	payload, err := sm.client.Get(ctx, sm.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("shared: load session: %w", err)
	}
	var p Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("shared: decode session: %w", err)
	}
	if err := sm.client.Expire(ctx, sm.redisKey(token), sm.ttl).Err(); err != nil {
		return nil, fmt.Errorf("shared: refresh session: %w", err)
	}
	return &p, nil
}

// Revoke destroys the session behind a token. Missing sessions are not an
// error so logout is idempotent.
func (sm *SessionManager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := sm.client.Del(ctx, sm.redisKey(token)).Err(); err != nil {
		return fmt.Errorf("shared: revoke session: %w", err)
	}
	return nil
}

// RevokeUser destroys every session held by the given user. Used when a user
// is deleted or deactivated.
func (sm *SessionManager) RevokeUser(ctx context.Context, userID string) (int, error) {
	var removed int
	iter := sm.client.Scan(ctx, 0, "session:*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := sm.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		var p Principal
		if err := json.Unmarshal(payload, &p); err != nil {
			continue
		}
		if p.ID != userID {
			continue
		}
		if err := sm.client.Del(ctx, key).Err(); err != nil {
			return removed, fmt.Errorf("shared: revoke user session: %w", err)
		}
		removed++
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("shared: scan sessions: %w", err)
	}
	return removed, nil
}

func (sm *SessionManager) redisKey(token string) string {
	return "session:" + token
}

// TokenFromRequest extracts the bearer token from the Authorization header.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("shared: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
