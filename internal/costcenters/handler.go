package costcenters

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

// Handler wires the cost center HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers cost center routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/cost-centers", h.List)
	r.Post("/cost-centers", h.Create)
	r.Get("/cost-centers/{id}", h.Show)
	r.Put("/cost-centers/{id}", h.Update)
	r.Delete("/cost-centers/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleCostCenter, *caller, perm.ActionRead, ""); err != nil {
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
		h.logger.Error("list cost centers", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleCostCenter, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	cc, err := h.tenantVisible(r, *caller, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cc)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleCostCenter, *caller, perm.ActionCreate, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req CreateCostCenterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}
	if caller.Role != perm.RoleAdmin && caller.ClientID != "" {
		req.ClientID = caller.ClientID
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, r, shared.NewValidation(shared.KeyInvalidPayload))
		return
	}

	id, err := h.service.Create(r.Context(), req, caller.ID)
	if err != nil {
		h.logger.Error("create cost center", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, id)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleCostCenter, *caller, perm.ActionUpdate, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	var req UpdateCostCenterRequest
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

	cc, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req, caller.ID)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleCostCenter, *caller, perm.ActionDelete, ""); err != nil {
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

// tenantVisible loads the target cost center and hides it from callers of
// another tenant: cross-tenant ids read as absent.
func (h *Handler) tenantVisible(r *http.Request, caller shared.Principal, id string) (CostCenter, error) {
	cc, err := h.service.Get(r.Context(), id)
	if err != nil {
		return CostCenter{}, err
	}
	if !perm.SameTenant(caller, cc.ClientID) {
		return CostCenter{}, shared.NewNotFound(shared.KeyNotFound)
	}
	return cc, nil
}
