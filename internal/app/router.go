package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robson-hennes/myfinai/internal/clients"
	"github.com/robson-hennes/myfinai/internal/collections"
	"github.com/robson-hennes/myfinai/internal/dashboard"
	"github.com/robson-hennes/myfinai/internal/notify"
	"github.com/robson-hennes/myfinai/internal/observability"
	"github.com/robson-hennes/myfinai/internal/settings"
	"github.com/robson-hennes/myfinai/internal/subscriptions"
	"github.com/robson-hennes/myfinai/internal/templates"
	"github.com/robson-hennes/myfinai/internal/transactions"
	"github.com/robson-hennes/myfinai/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	ClientsHandler       *clients.Handler
	SubscriptionsHandler *subscriptions.Handler
	TransactionsHandler  *transactions.Handler
	DashboardHandler     *dashboard.Handler
	CollectionsHandler   *collections.Handler
	TemplatesHandler     *templates.Handler
	SettingsHandler      *settings.Handler
	NotifyHandler        *notify.Handler
	JobsHandler          *jobs.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with myfinai defaults.
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

	r.Route("/api", func(r chi.Router) {
		r.Route("/clients", params.ClientsHandler.MountRoutes)
		r.Route("/subscriptions", params.SubscriptionsHandler.MountRoutes)
		r.Route("/transactions", params.TransactionsHandler.MountRoutes)
		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		r.Route("/collections", params.CollectionsHandler.MountRoutes)
		r.Route("/templates", params.TemplatesHandler.MountRoutes)
		r.Route("/settings", params.SettingsHandler.MountRoutes)
		r.Route("/notifications", params.NotifyHandler.MountRoutes)
	})

	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
