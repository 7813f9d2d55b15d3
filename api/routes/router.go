package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brightmill/storefront-insights/api/controllers"
	"github.com/brightmill/storefront-insights/api/middleware"
	"github.com/brightmill/storefront-insights/internal/dashboard"
	"github.com/brightmill/storefront-insights/pkg/config"
	"github.com/brightmill/storefront-insights/pkg/logger"
)

// Deps carries everything the router wires into handlers. Health pingers are
// optional; absent dependencies are skipped by the readiness check.
type Deps struct {
	Runner       dashboard.Runner
	RateLimiter  middleware.RateLimiterStore
	HealthChecks map[string]controllers.Pinger
	Registry     *prometheus.Registry
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.HealthChecks))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, deps.RateLimiter, logg))
		r.Post("/query", controllers.DashboardQuery(deps.Runner, logg))
	})

	return r
}
