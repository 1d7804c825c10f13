// Package api provides the REST API server of the dashboard backend.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	v1 "github.com/devpulse/devpulse-api/internal/api/v1"
	"github.com/devpulse/devpulse-api/internal/cache"
	"github.com/devpulse/devpulse-api/internal/dashboard"
	pkgsync "github.com/devpulse/devpulse-api/internal/sync"
)

// Services are the components the routes are served from. Nil members
// leave their routes unmounted.
type Services struct {
	Sync      pkgsync.Service
	Dashboard dashboard.Service
	Cache     *cache.Cache
	Scheduler v1.SchedulerStatusProvider
	Periodic  v1.PeriodicLister
	Readiness v1.ReadinessChecker
}

// ServerOption configures the API server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	metricsHandler http.Handler
	webhookOpts    []v1.WebhookOption
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetricsHandler serves h on /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// WithWebhookOptions configures the GitHub webhook routes
func WithWebhookOptions(opts ...v1.WebhookOption) ServerOption {
	return func(cfg *serverConfig) {
		cfg.webhookOpts = append(cfg.webhookOpts, opts...)
	}
}

// NewServer creates and configures the HTTP router with the given services and options
func NewServer(svcs Services, opts ...ServerOption) *chi.Mux {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	// Health, readiness and version live at the root
	r.Mount("/", v1.HealthRouter(svcs.Readiness))

	if cfg.metricsHandler != nil {
		r.Handle("/metrics", cfg.metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if svcs.Sync != nil {
			r.Mount("/webhooks", v1.WebhookRouter(svcs.Sync, cfg.webhookOpts...))
			r.Mount("/sync", v1.SyncRouter(svcs.Sync))
		}
		if svcs.Dashboard != nil {
			r.Mount("/dashboard", v1.DashboardRouter(svcs.Dashboard))
		}
		if svcs.Cache != nil {
			r.Mount("/cache", v1.CacheRouter(svcs.Cache))
		}
		r.Mount("/scheduler", v1.SchedulerRouter(svcs.Scheduler, svcs.Periodic))
	})

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
