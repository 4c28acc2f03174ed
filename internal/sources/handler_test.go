package sources

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
	handler := NewHandler(logger, NewService(repo, nil, nil))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithPrincipal(req.Context(), &caller)))
		})
	})
	handler.MountRoutes(r)
	return r
}

func seedSource(repo *stubRepo, id, clientID string) {
	repo.sources[id] = Source{
		Base:     entity.Base{ID: id, Version: 1, Status: entity.StatusActive},
		Name:     "ERP Export",
		Code:     "ERP-" + id,
		ClientID: clientID,
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

func TestSourceRoutesHideOtherTenants(t *testing.T) {
	repo := newStubRepo()
	seedSource(repo, "s-a", tenantA)
	seedSource(repo, "s-b", tenantB)

	operator := shared.Principal{
		ID:       "op-1",
		Role:     perm.RoleOperator,
		ClientID: tenantA,
		Grants: []shared.Grant{
			{Assignment: perm.AssignmentSource, Create: true, Read: true, Update: true, Delete: true},
		},
	}
	router := routerAs(t, repo, operator)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sources/s-a", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sources/s-b", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = sendJSON(t, router, http.MethodPut, "/sources/s-b", map[string]any{
		"name":    "Hijacked",
		"version": 1,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = sendJSON(t, router, http.MethodPatch, "/sources/s-b/status", map[string]any{
		"active":  false,
		"version": 1,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/sources/s-b?version=1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// The foreign row survives untouched.
	assert.Equal(t, 1, repo.sources["s-b"].Version)
	assert.Equal(t, entity.StatusActive, repo.sources["s-b"].Status)
}
