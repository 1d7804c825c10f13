package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devpulse/devpulse-api/internal/app/storage/auth"
	"github.com/devpulse/devpulse-api/internal/config"
	"github.com/devpulse/devpulse-api/internal/store"
	"github.com/devpulse/devpulse-api/internal/store/postgres"
)

// DefaultConnectTimeout bounds the wait for the database at startup
const DefaultConnectTimeout = 30 * time.Second

// DatabaseFactory creates PostgreSQL backed stores over one connection pool
type DatabaseFactory struct {
	config         *config.Config
	pool           *pgxpool.Pool
	connectTimeout time.Duration
	initialBackoff time.Duration
}

var _ Factory = (*DatabaseFactory)(nil)

// DatabaseFactoryOption is a functional option for configuring the DatabaseFactory
type DatabaseFactoryOption func(*DatabaseFactory)

// WithConnectTimeout overrides how long startup retries the first ping
func WithConnectTimeout(d time.Duration) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.connectTimeout = d
	}
}

// WithInitialBackoff sets the delay before the first ping retry
func WithInitialBackoff(d time.Duration) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.initialBackoff = d
	}
}

// NewDatabaseFactory connects to the configured PostgreSQL database and
// waits until it answers a ping.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required for storage type %q", config.StorageTypePostgres)
	}

	factory := &DatabaseFactory{
		config:         cfg,
		connectTimeout: cfg.Database.ConnectTimeout,
		initialBackoff: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.connectTimeout <= 0 {
		factory.connectTimeout = DefaultConnectTimeout
	}

	slog.Info("Creating database-backed storage factory",
		"host", cfg.Database.Host,
		"database", cfg.Database.Database,
		"dynamic_auth", cfg.Database.UsesDynamicAuth())

	pool, err := buildDatabaseConnectionPool(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	if err := factory.waitForDatabase(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	factory.pool = pool
	return factory, nil
}

// waitForDatabase pings with exponential backoff until the database answers
// or the connect timeout elapses
func (d *DatabaseFactory) waitForDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.initialBackoff

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, pool.Ping(ctx)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(d.connectTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.Warn("Database not ready, retrying", "error", err, "retry_in", next)
		}),
	)
	if err != nil {
		return fmt.Errorf("database not reachable within %s: %w", d.connectTimeout, err)
	}
	slog.Info("Database connection established")
	return nil
}

// CreateStore returns a PostgreSQL store over the shared pool
func (d *DatabaseFactory) CreateStore(context.Context) (store.Store, error) {
	slog.Debug("Creating database-backed store")
	return postgres.New(d.pool), nil
}

// Cleanup closes the connection pool
func (d *DatabaseFactory) Cleanup() {
	if d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
	}
}

// buildDatabaseConnectionPool creates a pool from the configuration. With
// dynamic auth every new connection gets a fresh token instead of the static password.
func buildDatabaseConnectionPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	var connStr string
	if cfg.UsesDynamicAuth() {
		connStr = cfg.BuildConnectionString(cfg.User, "")
	} else {
		var err error
		if connStr, err = cfg.GetConnectionString(); err != nil {
			return nil, err
		}
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database connection string: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	if cfg.UsesDynamicAuth() {
		beforeConnect, err := auth.NewDynamicAuth(ctx, cfg, cfg.User)
		if err != nil {
			return nil, fmt.Errorf("failed to configure dynamic authentication: %w", err)
		}
		poolConfig.BeforeConnect = beforeConnect
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	return pool, nil
}
