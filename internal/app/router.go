package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	audithttp "github.com/devisflow/devisflow/internal/audit/http"
	"github.com/devisflow/devisflow/internal/auth"
	"github.com/devisflow/devisflow/internal/clients"
	"github.com/devisflow/devisflow/internal/dashboard"
	fiscalhttp "github.com/devisflow/devisflow/internal/fiscal/http"
	"github.com/devisflow/devisflow/internal/observability"
	"github.com/devisflow/devisflow/internal/quotes"
	"github.com/devisflow/devisflow/internal/settings"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
	Auth    *auth.Middleware

	QuotesHandler       *quotes.Handler
	PublicQuotesHandler *quotes.PublicHandler
	ClientsHandler      *clients.Handler
	SettingsHandler     *settings.Handler
	DashboardHandler    *dashboard.Handler
	FiscalHandler       *fiscalhttp.Handler
	AuditHandler        *audithttp.Handler
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.PublicQuotesHandler != nil {
		params.PublicQuotesHandler.MountRoutes(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(params.Auth.RequireUser)
		if params.QuotesHandler != nil {
			params.QuotesHandler.MountRoutes(r)
		}
		if params.ClientsHandler != nil {
			params.ClientsHandler.MountRoutes(r)
		}
		if params.SettingsHandler != nil {
			params.SettingsHandler.MountRoutes(r)
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
		if params.FiscalHandler != nil {
			params.FiscalHandler.MountRoutes(r)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(r)
		}
	})

	return r
}
