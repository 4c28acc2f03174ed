package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenaris-admin/tenaris-admin/internal/perm"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

func routerAs(t *testing.T, repo Repository, caller shared.Principal) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := NewHandler(logger, newTestService(repo))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithPrincipal(req.Context(), &caller)))
		})
	})
	handler.MountRoutes(r)
	return r
}

var adminPrincipal = shared.Principal{ID: "admin-1", Role: perm.RoleAdmin}

func postJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, bytes.NewReader(body)))
	return rr
}

func TestCreateClientReturnsIDWith201(t *testing.T) {
	router := routerAs(t, newStubRepo(), adminPrincipal)

	rr := postJSON(t, router, http.MethodPost, "/clients", createRequest())
	require.Equal(t, http.StatusCreated, rr.Code)

	var id string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &id))
	assert.NotEmpty(t, id)
}

func TestClientRoutesForbiddenWithoutGrant(t *testing.T) {
	repo := newStubRepo()
	// Holding grants on other assignments does not open the CLIENT module.
	operator := shared.Principal{
		ID:   "op-1",
		Role: perm.RoleOperator,
		Grants: []shared.Grant{
			{Assignment: perm.AssignmentSource, Create: true, Read: true},
		},
	}
	router := routerAs(t, repo, operator)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/clients", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = postJSON(t, router, http.MethodPost, "/clients", createRequest())
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestClientRoutesScopedToCallerTenant(t *testing.T) {
	repo := newStubRepo()
	router := routerAs(t, repo, adminPrincipal)

	rr := postJSON(t, router, http.MethodPost, "/clients", createRequest())
	require.Equal(t, http.StatusCreated, rr.Code)
	var foreign string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &foreign))

	own := createRequest()
	own.CNPJ = "10000000202"
	own.Name = "Own Tenant"
	rr = postJSON(t, router, http.MethodPost, "/clients", own)
	require.Equal(t, http.StatusCreated, rr.Code)
	var ownID string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ownID))

	tenant := shared.Principal{
		ID:       "ac-1",
		Role:     perm.RoleAdminClient,
		ClientID: ownID,
		Grants: []shared.Grant{
			{Assignment: perm.AssignmentClient, Create: true, Read: true, Update: true, Delete: true},
		},
	}
	tenantRouter := routerAs(t, repo, tenant)

	rr = httptest.NewRecorder()
	tenantRouter.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/clients/"+ownID, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	// Another tenant's client reads as absent, even with full CLIENT grants.
	rr = httptest.NewRecorder()
	tenantRouter.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/clients/"+foreign, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = postJSON(t, tenantRouter, http.MethodPut, "/clients/"+foreign, map[string]any{
		"name":    "Hijacked",
		"version": 1,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	tenantRouter.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/clients/"+foreign+"?version=1", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateClientStaleVersionReturns409(t *testing.T) {
	repo := newStubRepo()
	router := routerAs(t, repo, adminPrincipal)

	rr := postJSON(t, router, http.MethodPost, "/clients", createRequest())
	require.Equal(t, http.StatusCreated, rr.Code)
	var id string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &id))

	rr = postJSON(t, router, http.MethodPut, "/clients/"+id, map[string]any{
		"name":    "Renamed",
		"version": 99,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	var problem struct {
		Status        int    `json:"status"`
		CorrelationID string `json:"correlationId"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusConflict, problem.Status)
	assert.NotEmpty(t, problem.CorrelationID)
}

func TestUpdateClientWithoutVersionReturns400(t *testing.T) {
	repo := newStubRepo()
	router := routerAs(t, repo, adminPrincipal)

	rr := postJSON(t, router, http.MethodPost, "/clients", createRequest())
	require.Equal(t, http.StatusCreated, rr.Code)
	var id string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &id))

	rr = postJSON(t, router, http.MethodPut, "/clients/"+id, map[string]any{"name": "Renamed"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteClientAlreadyDeletedReturns404(t *testing.T) {
	repo := newStubRepo()
	router := routerAs(t, repo, adminPrincipal)

	rr := postJSON(t, router, http.MethodPost, "/clients", createRequest())
	require.Equal(t, http.StatusCreated, rr.Code)
	var id string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &id))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/clients/%s?version=1", id), nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/clients/%s?version=2", id), nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteClientWithoutVersionReturns400(t *testing.T) {
	repo := newStubRepo()
	router := routerAs(t, repo, adminPrincipal)

	rr := postJSON(t, router, http.MethodPost, "/clients", createRequest())
	require.Equal(t, http.StatusCreated, rr.Code)
	var id string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &id))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/clients/"+id, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLocalizedProblemDetail(t *testing.T) {
	repo := newStubRepo()
	router := routerAs(t, repo, adminPrincipal)

	rr := postJSON(t, router, http.MethodPost, "/clients", createRequest())
	require.Equal(t, http.StatusCreated, rr.Code)
	var id string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &id))

	body, err := json.Marshal(map[string]any{"name": "Renamed", "version": 99})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/clients/"+id, bytes.NewReader(body))
	req.Header.Set("Accept-Language", "pt-BR")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, shared.Localize("pt-BR", shared.KeyVersionConflict), jsonField(t, rr.Body.Bytes(), "detail"))
}

func jsonField(t *testing.T, body []byte, field string) string {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	value, _ := payload[field].(string)
	return value
}
