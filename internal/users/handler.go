package users

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

// Handler wires the user HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/users", h.List)
	r.Post("/users", h.Create)
	r.Get("/users/{id}", h.Show)
	r.Put("/users/{id}", h.Update)
	r.Delete("/users/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleUser, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	params := httpx.ParseListParams(r)
	filters := map[string]any{}
	if v := r.URL.Query().Get("role"); v != "" {
		filters["role"] = v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filters["status"] = v
	}
	if caller.Role != perm.RoleAdmin && caller.ClientID != "" {
		filters["client_id"] = caller.ClientID
	} else if v := r.URL.Query().Get("clientId"); v != "" {
		filters["client_id"] = v
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
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleUser, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	user, err := h.tenantVisible(r, *caller, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())

	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}
	// The target role matters to the guard: the new user's role must be
	// visible to the USER module.
	if err := perm.Authorize(perm.ModuleUser, *caller, perm.ActionCreate, req.Role); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	// Tenant callers create users under their own client only.
	if caller.Role != perm.RoleAdmin && caller.ClientID != "" {
		req.ClientID = caller.ClientID
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}

	id, err := h.service.Create(r.Context(), req, *caller)
	if err != nil {
		h.logger.Error("create user", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, id)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())

	var req UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}
	targetRole := ""
	if req.Role != nil {
		targetRole = *req.Role
	}
	if err := perm.Authorize(perm.ModuleUser, *caller, perm.ActionUpdate, targetRole); err != nil {
		httpx.RespondError(w, r, err)
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

	user, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req, *caller)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleUser, *caller, perm.ActionDelete, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	if _, err := h.tenantVisible(r, *caller, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), httpx.ParseVersion(r), *caller)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// tenantVisible loads the target user and hides it from callers of another
// tenant: cross-tenant ids read as absent.
func (h *Handler) tenantVisible(r *http.Request, caller shared.Principal, id string) (User, error) {
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		return User{}, err
	}
	if !perm.SameTenant(caller, user.ClientID) {
		return User{}, shared.NewNotFound(shared.KeyNotFound)
	}
	return user, nil
}
