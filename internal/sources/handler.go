package sources

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

// Handler wires the source HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers source routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sources", h.List)
	r.Post("/sources", h.Create)
	r.Get("/sources/{id}", h.Show)
	r.Put("/sources/{id}", h.Update)
	r.Patch("/sources/{id}/status", h.SetActive)
	r.Delete("/sources/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleSource, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	params := httpx.ParseListParams(r)
	filters := map[string]any{}
	if v := r.URL.Query().Get("status"); v != "" {
		filters["status"] = v
	}
	if v := r.URL.Query().Get("clientId"); v != "" {
		filters["client_id"] = v
	}
	if caller.Role != perm.RoleAdmin && caller.ClientID != "" {
		filters["client_id"] = caller.ClientID
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
		h.logger.Error("list sources", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleSource, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	source, err := h.tenantVisible(r, *caller, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, source)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleSource, *caller, perm.ActionCreate, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req CreateSourceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}
	// Tenant callers create sources under their own client only.
	if caller.Role != perm.RoleAdmin && caller.ClientID != "" {
		req.ClientID = caller.ClientID
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}

	id, err := h.service.Create(r.Context(), req, caller.ID)
	if err != nil {
		h.logger.Error("create source", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, id)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleSource, *caller, perm.ActionUpdate, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req UpdateSourceRequest
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
	if _, err := h.tenantVisible(r, *caller, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	source, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req, caller.ID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, source)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleSource, *caller, perm.ActionUpdate, ""); err != nil {
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
	if _, err := h.tenantVisible(r, *caller, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	source, err := h.service.SetActive(r.Context(), chi.URLParam(r, "id"), req, caller.ID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, source)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleSource, *caller, perm.ActionDelete, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if _, err := h.tenantVisible(r, *caller, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), httpx.ParseVersion(r), caller.ID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// tenantVisible loads the target source and hides it from callers of another
// tenant: cross-tenant ids read as absent.
func (h *Handler) tenantVisible(r *http.Request, caller shared.Principal, id string) (Source, error) {
	source, err := h.service.Get(r.Context(), id)
	if err != nil {
		return Source{}, err
	}
	if !perm.SameTenant(caller, source.ClientID) {
		return Source{}, shared.NewNotFound(shared.KeyNotFound)
	}
	return source, nil
}
