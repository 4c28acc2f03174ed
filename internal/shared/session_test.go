package shared

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, time.Hour)
}

func TestSessionIssueAndResolve(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()

	principal := Principal{
		ID:   "u-1",
		Role: "OPERATOR",
		Grants: []Grant{
			{Assignment: "SOURCE", Read: true},
		},
	}

	token, err := sessions.Issue(ctx, principal)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	resolved, err := sessions.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, principal.ID, resolved.ID)
	assert.Equal(t, principal.Role, resolved.Role)
	assert.Equal(t, principal.Grants, resolved.Grants)
}

func TestSessionResolveUnknownToken(t *testing.T) {
	sessions := newTestSessions(t)

	_, err := sessions.Resolve(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = sessions.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRevokeIsIdempotent(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()

	token, err := sessions.Issue(ctx, Principal{ID: "u-1"})
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(ctx, token))
	require.NoError(t, sessions.Revoke(ctx, token))

	_, err = sessions.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRevokeUserDestroysAllSessionsOfThatUser(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()

	first, err := sessions.Issue(ctx, Principal{ID: "u-1"})
	require.NoError(t, err)
	second, err := sessions.Issue(ctx, Principal{ID: "u-1"})
	require.NoError(t, err)
	other, err := sessions.Issue(ctx, Principal{ID: "u-2"})
	require.NoError(t, err)

	removed, err := sessions.RevokeUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = sessions.Resolve(ctx, first)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = sessions.Resolve(ctx, second)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = sessions.Resolve(ctx, other)
	assert.NoError(t, err)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, TokenFromRequest(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer tok-123")
	assert.Equal(t, "tok-123", TokenFromRequest(r))
}
