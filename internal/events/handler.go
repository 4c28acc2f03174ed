package events

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tenaris-admin/tenaris-admin/internal/entity"
	"github.com/tenaris-admin/tenaris-admin/internal/perm"
	"github.com/tenaris-admin/tenaris-admin/internal/platform/httpx"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
)

// Handler wires the read-only HTTP endpoints for audit events.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers event routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/events", h.List)
	r.Get("/events/{id}", h.Show)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleEvent, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	params := httpx.ParseListParams(r)
	filters := map[string]any{}
	if v := r.URL.Query().Get("entity"); v != "" {
		filters["entity"] = v
	}
	if v := r.URL.Query().Get("actorId"); v != "" {
		filters["actor_id"] = v
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
		h.logger.Error("list events", slog.Any("error", err))
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	caller := shared.PrincipalFromContext(r.Context())
	if err := perm.Authorize(perm.ModuleEvent, *caller, perm.ActionRead, ""); err != nil {
		httpx.RespondError(w, r, err)
		return
	}

	event, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}
