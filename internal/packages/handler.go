package packages

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

// Handler wires the package HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers package routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/packages", h.List)
	r.Post("/packages", h.Create)
	r.Get("/packages/{id}", h.Show)
	r.Put("/packages/{id}", h.Update)
	r.Delete("/packages/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModulePackage, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	params := httpx.ParseListParams(r)
	filters := map[string]any{}
	if v := r.URL.Query().Get("status"); v != "" {
		filters["status"] = v
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
		h.logger.Error("list packages", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModulePackage, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	pkg, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pkg)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModulePackage, *caller, perm.ActionCreate, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req CreatePackageRequest
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
		h.logger.Error("create package", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, id)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModulePackage, *caller, perm.ActionUpdate, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req UpdatePackageRequest
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

	pkg, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req, caller.ID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pkg)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModulePackage, *caller, perm.ActionDelete, ""); err != nil {
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
