package clients

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/perm"
	"github.com/tenaris-admin/tenaris-admin/internal/platform/httpx"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Handler wires the client HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers client routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/clients", h.List)
	r.Post("/clients", h.Create)
	r.Get("/clients/{id}", h.Show)
	r.Get("/clients/{id}/history", h.History)
	r.Put("/clients/{id}", h.Update)
	r.Patch("/clients/{id}/status", h.SetActive)
	r.Delete("/clients/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleClient, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	params := httpx.ParseListParams(r)
	filters := map[string]any{}
	if v := r.URL.Query().Get("status"); v != "" {
		filters["status"] = v
	}
	if v := r.URL.Query().Get("packageId"); v != "" {
		filters["package_id"] = v
	}
	// Non-platform callers only ever see their own tenant.
	if caller.Role != perm.RoleAdmin && caller.ClientID != "" {
		filters["id"] = caller.ClientID
	}

	page, err := h.service.List(r.Context(), entity.ListQuery{
		Search:    params.Search,
		Filters:   filters,
		Page:      params.Page,
		PerPage:   params.PerPage,
		OrderBy:   params.OrderBy,
		OrderDesc: params.OrderDesc,
	})
	if err != nil {
		h.logger.Error("list clients", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleClient, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	// A client row's tenant is the row itself; foreign ids read as absent.
	if !perm.SameTenant(*caller, id) {
		httpx.RespondError(w, r, shared.NewNotFound(shared.KeyNotFound))
		return
	}

	client, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleClient, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if !perm.SameTenant(*caller, id) {
		httpx.RespondError(w, r, shared.NewNotFound(shared.KeyNotFound))
		return
	}

	entries, err := h.service.History(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleClient, *caller, perm.ActionCreate, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req CreateClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}

	id, err := h.service.Create(r.Context(), req, caller.ID)
	if err != nil {
		h.logger.Error("create client", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, id)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleClient, *caller, perm.ActionUpdate, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req UpdateClientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}
	if req.Version == nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyVersionRequired))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}
	id := chi.URLParam(r, "id")
	if !perm.SameTenant(*caller, id) {
		httpx.RespondError(w, r, shared.NewNotFound(shared.KeyNotFound))
		return
	}

	client, err := h.service.Update(r.Context(), id, req, caller.ID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleClient, *caller, perm.ActionUpdate, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req StatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}
	if req.Version == nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyVersionRequired))
		return
	}
	id := chi.URLParam(r, "id")
	if !perm.SameTenant(*caller, id) {
		httpx.RespondError(w, r, shared.NewNotFound(shared.KeyNotFound))
		return
	}

	client, err := h.service.SetActive(r.Context(), id, req, caller.ID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleClient, *caller, perm.ActionDelete, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if !perm.SameTenant(*caller, id) {
		httpx.RespondError(w, r, shared.NewNotFound(shared.KeyNotFound))
		return
	}

	err := h.service.Delete(r.Context(), id, httpx.ParseVersion(r), caller.ID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}
