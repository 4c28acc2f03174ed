package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/tenaris-admin/tenaris-admin/internal/auth"
	"github.com/tenaris-admin/tenaris-admin/internal/clients"
	"github.com/tenaris-admin/tenaris-admin/internal/costcenters"
	"github.com/tenaris-admin/tenaris-admin/internal/events"
	"github.com/tenaris-admin/tenaris-admin/internal/observability"
	"github.com/tenaris-admin/tenaris-admin/internal/packages"
	"github.com/tenaris-admin/tenaris-admin/internal/shared"
	"github.com/tenaris-admin/tenaris-admin/internal/sources"
	"github.com/tenaris-admin/tenaris-admin/internal/users"
	"github.com/tenaris-admin/tenaris-admin/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	SessionManager    *shared.SessionManager
	AuthHandler       *auth.Handler
	ClientsHandler    *clients.Handler
	UsersHandler      *users.Handler
	PackagesHandler   *packages.Handler
	SourcesHandler    *sources.Handler
	CostCenterHandler *costcenters.Handler
	EventsHandler     *events.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// Login is public but rate limited per caller IP. Everything else goes
	// through the principal loader.
	loginLimit := 10
	if params.Config != nil && params.Config.LoginRateLimit > 0 {
		loginLimit = params.Config.LoginRateLimit
	}
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(loginLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		params.AuthHandler.MountRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePrincipal(params.SessionManager))
		if params.ClientsHandler != nil {
			params.ClientsHandler.MountRoutes(r)
		}
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r)
		}
		if params.PackagesHandler != nil {
			params.PackagesHandler.MountRoutes(r)
		}
		if params.SourcesHandler != nil {
			params.SourcesHandler.MountRoutes(r)
		}
		if params.CostCenterHandler != nil {
			params.CostCenterHandler.MountRoutes(r)
		}
		if params.EventsHandler != nil {
			params.EventsHandler.MountRoutes(r)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
