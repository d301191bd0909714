package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/indiepro/indiepro/internal/auth"
	"github.com/indiepro/indiepro/internal/calculators"
	"github.com/indiepro/indiepro/internal/checklist"
	"github.com/indiepro/indiepro/internal/content"
	"github.com/indiepro/indiepro/internal/csvtemplates"
	"github.com/indiepro/indiepro/internal/entitlement"
	"github.com/indiepro/indiepro/internal/observability"
	"github.com/indiepro/indiepro/internal/platform/httpx"
	"github.com/indiepro/indiepro/internal/profile"
	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	Metrics            *observability.Metrics
	Gates              entitlement.Middleware
	AuthHandler        *auth.Handler
	EntitlementHandler *entitlement.Handler
	ProfileHandler     *profile.Handler
	ToolsHandler       *calculators.Handler
	TemplatesHandler   *csvtemplates.Handler
	ChecklistHandler   *checklist.Handler
	ContentHandler     *content.Handler
	JobHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with the platform defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.EntitlementHandler != nil {
		params.EntitlementHandler.MountCheckout(r)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
			token, err := params.CSRFManager.EnsureToken(w, r)
			if err != nil {
				params.Logger.Error("mint csrf token", slog.Any("error", err))
				httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "could not issue csrf token")
				return
			}
			httpx.JSON(w, http.StatusOK, map[string]string{"csrfToken": token})
		})

		if params.AuthHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Use(AuthRateLimit())
				params.AuthHandler.MountRoutes(r)
			})
		}
		if params.EntitlementHandler != nil {
			params.EntitlementHandler.MountAPI(r)
		}
		if params.ProfileHandler != nil {
			params.ProfileHandler.MountRoutes(r, params.Gates.RequireUser)
		}
		if params.ToolsHandler != nil {
			r.With(params.Gates.RequireUnlocked).Route("/tools", params.ToolsHandler.MountRoutes)
		}
		if params.TemplatesHandler != nil {
			r.With(params.Gates.RequireUnlocked).Route("/templates", params.TemplatesHandler.MountRoutes)
		}
		if params.ChecklistHandler != nil {
			r.With(params.Gates.RequireUser).Route("/checklists", params.ChecklistHandler.MountRoutes)
		}
		if params.ContentHandler != nil {
			r.Route("/learn", params.ContentHandler.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
