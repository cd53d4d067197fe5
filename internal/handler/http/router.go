package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront-landing/pkg/health"
	"github.com/utafrali/storefront-landing/pkg/middleware"
)

// RouterConfig holds the settings the router needs beyond its handlers.
type RouterConfig struct {
	ServiceName    string
	AppProxySecret string
}

// NewRouter creates a chi router with all storefront landing routes registered.
func NewRouter(
	landingHandler *LandingHandler,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// App proxy endpoints
	r.Group(func(r chi.Router) {
		r.Use(VerifyAppProxySignature(cfg.AppProxySecret, logger))

		r.Get("/users", landingHandler.GetUserLanding)
	})

	return r
}
