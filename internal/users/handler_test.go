package users

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/perm"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

const (
	tenantA = "0c2e46aa-65a1-4a39-9f56-8d2a3f1b0010"
	tenantB = "0c2e46aa-65a1-4a39-9f56-8d2a3f1b0011"
)

func routerAs(t *testing.T, repo Repository, caller shared.Principal) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewHandler(logger, NewService(repo, nil, nil, nil))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithPrincipal(req.Context(), &caller)))
		})
	})
	handler.MountRoutes(r)
	return r
}

func tenantAdmin(clientID string) shared.Principal {
	return shared.Principal{
		ID:       "ac-1",
		Role:     perm.RoleAdminClient,
		ClientID: clientID,
		Grants: []shared.Grant{
			{Assignment: perm.AssignmentUser, Create: true, Read: true, Update: true, Delete: true},
		},
	}
}

func sendJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, bytes.NewReader(body)))
	return rr
}

func seedUser(repo *stubRepo, id, clientID string) {
	repo.users[id] = User{
		Base:     entity.Base{ID: id, Version: 1, Status: entity.StatusActive},
		Name:     "Someone",
		Email:    id + "@acme.com",
		Role:     perm.RoleUser,
		ClientID: clientID,
	}
}

func TestCreateUserPinnedToCallerTenant(t *testing.T) {
	repo := newStubRepo()
	router := routerAs(t, repo, tenantAdmin(tenantA))

	// The foreign clientId in the body must not win over the caller's tenant.
	rr := sendJSON(t, router, http.MethodPost, "/users", map[string]any{
		"name":     "Jo",
		"email":    "jo@acme.com",
		"password": "secret123",
		"role":     perm.RoleOperator,
		"clientId": tenantB,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var id string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &id))
	assert.Equal(t, tenantA, repo.users[id].ClientID)
}

func TestUserRoutesHideOtherTenants(t *testing.T) {
	repo := newStubRepo()
	seedUser(repo, "u-a", tenantA)
	seedUser(repo, "u-b", tenantB)
	router := routerAs(t, repo, tenantAdmin(tenantA))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users/u-a", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users/u-b", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = sendJSON(t, router, http.MethodPut, "/users/u-b", map[string]any{
		"name":    "Hijacked",
		"version": 1,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/users/u-b?version=1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// The row itself is untouched.
	assert.Equal(t, "Someone", repo.users["u-b"].Name)
	assert.Equal(t, 1, repo.users["u-b"].Version)
}
