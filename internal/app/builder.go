package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/devpulse/devpulse-api/internal/api"
	v1 "github.com/devpulse/devpulse-api/internal/api/v1"
	"github.com/devpulse/devpulse-api/internal/app/storage"
	"github.com/devpulse/devpulse-api/internal/cache"
	"github.com/devpulse/devpulse-api/internal/config"
	"github.com/devpulse/devpulse-api/internal/dashboard"
	"github.com/devpulse/devpulse-api/internal/github"
	"github.com/devpulse/devpulse-api/internal/scheduler"
	pkgsync "github.com/devpulse/devpulse-api/internal/sync"
	"github.com/devpulse/devpulse-api/internal/telemetry"
)

const (
	defaultRequestTimeout = 60 * time.Second
	defaultReadTimeout    = 10 * time.Second
	defaultWriteTimeout   = 75 * time.Second
	defaultIdleTimeout    = 60 * time.Second

	// SyncTracerName names the tracer handed to the sync engine
	SyncTracerName = "github.com/devpulse/devpulse-api/sync"
)

// DashboardAppOptions is a function that configures the dashboard app builder
type DashboardAppOptions func(*dashboardAppConfig) error

// dashboardAppConfig collects everything the builder needs. Optional
// overrides are mostly for tests; production uses the defaults.
type dashboardAppConfig struct {
	config *config.Config

	storageFactory storage.Factory
	clientFactory  github.ClientFactory
	clock          clock.WithTicker

	// HTTP server options
	address        string
	listener       net.Listener
	middlewares    []func(http.Handler) http.Handler
	requestTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	idleTimeout    time.Duration

	// Telemetry components
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	metricsHandler http.Handler
}

func baseConfig(opts ...DashboardAppOptions) (*dashboardAppConfig, error) {
	cfg := &dashboardAppConfig{
		requestTimeout: defaultRequestTimeout,
		readTimeout:    defaultReadTimeout,
		writeTimeout:   defaultWriteTimeout,
		idleTimeout:    defaultIdleTimeout,
		clock:          clock.RealClock{},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.config == nil {
		cfg.config = config.Default()
	}
	if cfg.address == "" {
		cfg.address = cfg.config.Server.Address
	}
	if cfg.address == "" {
		cfg.address = config.DefaultAddress
	}

	return cfg, nil
}

// NewDashboardApp wires storage, cache, sync engine, scheduler and HTTP server
func NewDashboardApp(ctx context.Context, opts ...DashboardAppOptions) (*DashboardApp, error) {
	cfg, err := baseConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build base configuration: %w", err)
	}

	if cfg.storageFactory == nil {
		cfg.storageFactory, err = storage.NewStorageFactory(ctx, cfg.config)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage factory: %w", err)
		}
	}

	// Ensure cleanup happens on error
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			cfg.storageFactory.Cleanup()
		}
	}()

	components, err := buildComponents(ctx, cfg)
	if err != nil {
		return nil, err
	}

	httpServer, err := buildHTTPServer(ctx, cfg, components)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP server: %w", err)
	}

	appCtx, cancel := context.WithCancel(ctx)
	cleanupNeeded = false

	return &DashboardApp{
		config:     cfg.config,
		components: components,
		httpServer: httpServer,
		listener:   cfg.listener,
		ctx:        appCtx,
		cancelFunc: func() {
			cfg.storageFactory.Cleanup()
			cancel()
		},
	}, nil
}

// WithConfig sets the configuration
func WithConfig(c *config.Config) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		cfg.config = c
		return nil
	}
}

// WithAddress sets the HTTP server address, overriding the configuration
func WithAddress(addr string) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		if addr == "" {
			return fmt.Errorf("address cannot be empty")
		}

		host, port, ok := strings.Cut(addr, ":")
		if !ok || port == "" {
			return fmt.Errorf("address is not a valid port: %s", addr)
		}
		if host == "localhost" {
			host = "127.0.0.1"
		}
		if host == "" {
			host = "0.0.0.0"
		}

		if _, err := netip.ParseAddrPort(host + ":" + port); err != nil {
			return fmt.Errorf("address is not a valid port: %w", err)
		}

		cfg.address = addr
		return nil
	}
}

// WithListener serves on an existing listener instead of binding the address
func WithListener(l net.Listener) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		if l == nil {
			return fmt.Errorf("listener cannot be nil")
		}
		cfg.listener = l
		cfg.address = l.Addr().String()
		return nil
	}
}

// WithMiddlewares sets custom HTTP middlewares
func WithMiddlewares(mw ...func(http.Handler) http.Handler) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		cfg.middlewares = mw
		return nil
	}
}

// WithRequestTimeout bounds the handling of a single request
func WithRequestTimeout(d time.Duration) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithStorageFactory allows injecting a custom storage factory (for testing)
func WithStorageFactory(f storage.Factory) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		cfg.storageFactory = f
		return nil
	}
}

// WithClientFactory replaces the GitHub client factory (for testing)
func WithClientFactory(f github.ClientFactory) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		cfg.clientFactory = f
		return nil
	}
}

// WithClock replaces the clock of the cache, the engine and the scheduler
func WithClock(clk clock.WithTicker) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		cfg.clock = clk
		return nil
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider for application metrics
func WithMeterProvider(mp metric.MeterProvider) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		cfg.meterProvider = mp
		return nil
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider
func WithTracerProvider(tp trace.TracerProvider) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		cfg.tracerProvider = tp
		return nil
	}
}

// WithMetricsHandler serves h on /metrics
func WithMetricsHandler(h http.Handler) DashboardAppOptions {
	return func(cfg *dashboardAppConfig) error {
		cfg.metricsHandler = h
		return nil
	}
}

// buildComponents builds the store, cache, sync engine, scheduler and dashboard
func buildComponents(ctx context.Context, b *dashboardAppConfig) (*AppComponents, error) {
	slog.Info("Initializing application components")

	s, err := b.storageFactory.CreateStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	syncMetrics, err := telemetry.NewSyncMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}
	cacheMetrics, err := telemetry.NewCacheMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache metrics: %w", err)
	}
	schedulerMetrics, err := telemetry.NewSchedulerMetrics(b.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler metrics: %w", err)
	}

	c := cache.New(
		cache.WithClock(b.clock),
		cache.WithDefaultTTL(b.config.Cache.DefaultTTL),
		cache.WithSweepInterval(b.config.Cache.SweepInterval),
		cache.WithMetrics(cacheMetrics),
	)

	if b.clientFactory == nil {
		b.clientFactory = buildClientFactory(b.config.GitHub)
	}
	refresher := github.NewRefresher(s, b.clientFactory, github.WithRefreshClock(b.clock))

	engineOpts := []pkgsync.Option{
		pkgsync.WithClock(b.clock),
		pkgsync.WithSyncMetrics(syncMetrics),
		pkgsync.WithMaxRetries(b.config.Sync.MaxRetries),
		pkgsync.WithConcurrency(b.config.Sync.Concurrency),
		pkgsync.WithStaleAfter(b.config.Sync.StaleAfter),
		pkgsync.WithRetention(b.config.Sync.Retention),
	}
	if b.tracerProvider != nil {
		engineOpts = append(engineOpts, pkgsync.WithTracer(b.tracerProvider.Tracer(SyncTracerName)))
	}
	engine := pkgsync.New(refresher, s, c, engineOpts...)

	sched := scheduler.New(engine,
		scheduler.WithClock(b.clock),
		scheduler.WithMetrics(schedulerMetrics),
		scheduler.WithIntervals(scheduler.Intervals{
			HealthCheck: b.config.Scheduler.HealthCheckInterval,
			FullSync:    b.config.Scheduler.FullSyncInterval,
			Cleanup:     b.config.Scheduler.CleanupInterval,
		}),
	)

	slog.Info("Application components initialized",
		"storage", b.config.Storage.Type,
		"max_retries", b.config.Sync.MaxRetries,
		"concurrency", b.config.Sync.Concurrency)

	return &AppComponents{
		Store:      s,
		Cache:      c,
		SyncEngine: engine,
		Scheduler:  sched,
		Dashboard:  dashboard.New(s, c, dashboard.WithClock(b.clock)),
	}, nil
}

func buildClientFactory(cfg config.GitHubConfig) github.ClientFactory {
	var opts []github.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, github.WithTimeout(cfg.Timeout))
	}
	return github.NewClientFactory(opts...)
}

// buildHTTPServer builds the HTTP server with router and middleware
func buildHTTPServer(_ context.Context, b *dashboardAppConfig, components *AppComponents) (*http.Server, error) {
	slog.Info("Initializing HTTP server")

	if b.middlewares == nil {
		b.middlewares = []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Recoverer,
			middleware.Timeout(b.requestTimeout),
			api.LoggingMiddleware,
		}
	}

	// Metrics and tracing go first so they see every request
	if b.tracerProvider != nil {
		b.middlewares = append([]func(http.Handler) http.Handler{telemetry.TracingMiddleware(b.tracerProvider)}, b.middlewares...)
	}
	if b.meterProvider != nil {
		metricsMiddleware, err := telemetry.MetricsMiddleware(b.meterProvider)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics middleware: %w", err)
		}
		b.middlewares = append([]func(http.Handler) http.Handler{metricsMiddleware}, b.middlewares...)
		slog.Info("HTTP metrics middleware enabled")
	}

	secret, err := b.config.GitHub.GetWebhookSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to load webhook secret: %w", err)
	}
	if len(secret) == 0 {
		slog.Warn("No GitHub webhook secret configured, webhook signatures are not verified")
	}

	router := api.NewServer(api.Services{
		Sync:      components.SyncEngine,
		Dashboard: components.Dashboard,
		Cache:     components.Cache,
		Scheduler: components.Scheduler,
		Periodic:  components.SyncEngine,
		Readiness: components.Store,
	},
		api.WithMiddlewares(b.middlewares...),
		api.WithMetricsHandler(b.metricsHandler),
		api.WithWebhookOptions(
			v1.WithWebhookSecret(secret),
			v1.WithDevMode(b.config.Server.DevMode),
		),
	)

	server := &http.Server{
		Addr:              b.address,
		Handler:           router,
		ReadTimeout:       b.readTimeout,
		ReadHeaderTimeout: b.readTimeout,
		WriteTimeout:      b.writeTimeout,
		IdleTimeout:       b.idleTimeout,
	}

	slog.Info("HTTP server configured", "address", b.address, "dev_mode", b.config.Server.DevMode)
	return server, nil
}
