package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpulse/devpulse-api/internal/telemetry"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestWithConfigPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	real := writeFile(t, dir, "config.yaml", "server:\n  address: \":9090\"\n")
	link := filepath.Join(dir, "link.yaml")
	require.NoError(t, os.Symlink(real, link))

	tests := []struct {
		name     string
		path     string
		wantErr  string
		wantPath string
	}{
		{name: "empty path", path: "", wantErr: "path is required"},
		{name: "missing file", path: filepath.Join(dir, "missing.yaml"), wantErr: "failed to evaluate symlinks"},
		{name: "regular file", path: real, wantPath: real},
		{name: "symlink is resolved", path: link, wantPath: real},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &loaderConfig{}
			err := WithConfigPath(tt.path)(cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			wantReal, err := filepath.EvalSymlinks(tt.wantPath)
			require.NoError(t, err)
			assert.Equal(t, wantReal, cfg.path)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, StorageTypeMemory, cfg.Storage.Type)
	assert.Equal(t, 30*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, 3, cfg.Sync.MaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.Sync.DefaultInterval)
	assert.Equal(t, 365*24*time.Hour, cfg.Sync.Retention)
	assert.Nil(t, cfg.Database)
	assert.Nil(t, cfg.Telemetry)
}

func TestLoadConfigFromYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "config.yaml", `
server:
  address: "127.0.0.1:9000"
  devMode: true
storage:
  type: postgres
database:
  host: db.internal
  user: devpulse
  database: devpulse
  sslMode: disable
  connMaxLifetime: 30m
github:
  baseURL: https://ghe.example.com/api/v3/
  timeout: 10s
sync:
  maxRetries: 5
  concurrency: 2
  staleAfter: 12h
scheduler:
  fullSyncInterval: 3h
cache:
  defaultTTL: 2m
telemetry:
  enabled: true
  metrics:
    enabled: true
    exporter: prometheus
`)

	cfg, err := LoadConfig(WithConfigPath(path))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.True(t, cfg.Server.DevMode)
	assert.Equal(t, StorageTypePostgres, cfg.Storage.Type)
	require.NotNil(t, cfg.Database)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 5432, cfg.Database.GetPort())
	assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.GitHub.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.GitHub.Timeout)
	assert.Equal(t, 5, cfg.Sync.MaxRetries)
	assert.Equal(t, 2, cfg.Sync.Concurrency)
	assert.Equal(t, 12*time.Hour, cfg.Sync.StaleAfter)
	// unset values keep their defaults
	assert.Equal(t, DefaultSyncInterval, cfg.Sync.DefaultInterval)
	assert.Equal(t, 3*time.Hour, cfg.Scheduler.FullSyncInterval)
	assert.Zero(t, cfg.Scheduler.CleanupInterval)
	assert.Equal(t, 2*time.Minute, cfg.Cache.DefaultTTL)
	require.NotNil(t, cfg.Telemetry)
	assert.True(t, cfg.Telemetry.Metrics.UsesPrometheus())
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "config.yaml", "server: [unclosed")
	_, err := LoadConfig(WithConfigPath(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML config")
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("DEVPULSE_SERVER_ADDRESS", ":7070")
	t.Setenv("DEVPULSE_SERVER_DEV_MODE", "true")
	t.Setenv("DEVPULSE_SYNC_MAX_RETRIES", "7")
	t.Setenv("DEVPULSE_GITHUB_TIMEOUT", "45s")
	t.Setenv("DEVPULSE_DATABASE_HOST", "pg")
	t.Setenv("DEVPULSE_DATABASE_USER", "app")
	t.Setenv("DEVPULSE_DATABASE_NAME", "dash")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address)
	assert.True(t, cfg.Server.DevMode)
	assert.Equal(t, 7, cfg.Sync.MaxRetries)
	assert.Equal(t, 45*time.Second, cfg.GitHub.Timeout)
	require.NotNil(t, cfg.Database)
	assert.Equal(t, "pg", cfg.Database.Host)
	assert.Equal(t, "app", cfg.Database.User)
	assert.Equal(t, "dash", cfg.Database.Database)
}

func TestLoadConfigInvalidEnvOverride(t *testing.T) {
	t.Setenv("DEVPULSE_SYNC_CONCURRENCY", "many")
	t.Setenv("DEVPULSE_GITHUB_TIMEOUT", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync.concurrency")
	assert.Contains(t, err.Error(), "github.timeout")
}

func TestLoadConfigEnvFile(t *testing.T) {
	envFile := writeFile(t, t.TempDir(), ".env", "DEVPULSE_STORAGE_TYPE=memory\nDEVPULSE_SYNC_CONCURRENCY=9\n")
	t.Cleanup(func() {
		_ = os.Unsetenv("DEVPULSE_STORAGE_TYPE")
		_ = os.Unsetenv("DEVPULSE_SYNC_CONCURRENCY")
	})

	cfg, err := LoadConfig(WithEnvFile(envFile))
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Sync.Concurrency)

	_, err = LoadConfig(WithEnvFile(filepath.Join(t.TempDir(), "missing.env")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load env file")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	validDB := &DatabaseConfig{Host: "localhost", User: "app", Database: "dash"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr []string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:   "hostname address",
			mutate: func(c *Config) { c.Server.Address = "localhost:8080" },
		},
		{
			name:    "address without port",
			mutate:  func(c *Config) { c.Server.Address = "localhost" },
			wantErr: []string{"server.address"},
		},
		{
			name:    "unknown storage type",
			mutate:  func(c *Config) { c.Storage.Type = "sqlite" },
			wantErr: []string{`storage.type must be "memory" or "postgres"`},
		},
		{
			name:    "postgres without database",
			mutate:  func(c *Config) { c.Storage.Type = StorageTypePostgres },
			wantErr: []string{"database: required"},
		},
		{
			name: "postgres with database",
			mutate: func(c *Config) {
				c.Storage.Type = StorageTypePostgres
				c.Database = validDB
			},
		},
		{
			name: "incomplete database",
			mutate: func(c *Config) {
				c.Storage.Type = StorageTypePostgres
				c.Database = &DatabaseConfig{SSLMode: "sometimes"}
			},
			wantErr: []string{"host is required", "user is required", "database is required", "unsupported sslMode"},
		},
		{
			name: "rds iam without region",
			mutate: func(c *Config) {
				c.Storage.Type = StorageTypePostgres
				db := *validDB
				db.DynamicAuth = &DynamicAuthConfig{AWSRDSIAM: &AWSRDSIAMConfig{}}
				c.Database = &db
			},
			wantErr: []string{"awsRdsIam.region is required"},
		},
		{
			name:    "relative github url",
			mutate:  func(c *Config) { c.GitHub.BaseURL = "/api/v3" },
			wantErr: []string{"github.baseURL"},
		},
		{
			name: "sync bounds",
			mutate: func(c *Config) {
				c.Sync.MaxRetries = 0
				c.Sync.Concurrency = 0
				c.Scheduler.CleanupInterval = -time.Second
			},
			wantErr: []string{"sync.maxRetries", "sync.concurrency", "scheduler.cleanupInterval"},
		},
		{
			name: "telemetry is validated",
			mutate: func(c *Config) {
				c.Telemetry = &telemetry.Config{
					Enabled: true,
					Metrics: &telemetry.MetricsConfig{Enabled: true, Exporter: "statsd"},
				}
			},
			wantErr: []string{"telemetry: metrics"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

func TestDatabaseConfig_GetPassword(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "password", "  from-file\n")

	t.Run("file wins over environment", func(t *testing.T) {
		t.Setenv(EnvDatabasePassword, "from-env")
		got, err := (&DatabaseConfig{PasswordFile: file}).GetPassword()
		require.NoError(t, err)
		assert.Equal(t, "from-file", got)
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv(EnvDatabasePassword, "from-env")
		got, err := (&DatabaseConfig{}).GetPassword()
		require.NoError(t, err)
		assert.Equal(t, "from-env", got)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := (&DatabaseConfig{PasswordFile: filepath.Join(dir, "nope")}).GetPassword()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read password")
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Setenv(EnvDatabasePassword, "")
		_, err := (&DatabaseConfig{}).GetPassword()
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvDatabasePassword)
	})
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	t.Setenv(EnvDatabasePassword, "p@ss/word")

	db := &DatabaseConfig{Host: "db", Port: 6543, User: "app", Database: "dash"}
	got, err := db.GetConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:6543/dash?sslmode=require", got)

	db.SSLMode = "disable"
	db.Port = 0
	assert.Equal(t, "postgres://migrator@db:5432/dash?sslmode=disable", db.BuildConnectionString("migrator", ""))

	assert.Equal(t, "app", db.GetMigrationUser())
	db.MigrationUser = "migrator"
	assert.Equal(t, "migrator", db.GetMigrationUser())
	assert.False(t, db.UsesDynamicAuth())
}

func TestGitHubConfig_GetWebhookSecret(t *testing.T) {
	file := writeFile(t, t.TempDir(), "secret", "s3cret\n")

	t.Setenv(EnvGitHubWebhookSecret, "")
	secret, err := (&GitHubConfig{}).GetWebhookSecret()
	require.NoError(t, err)
	assert.Nil(t, secret)

	t.Setenv(EnvGitHubWebhookSecret, "env-secret")
	secret, err = (&GitHubConfig{}).GetWebhookSecret()
	require.NoError(t, err)
	assert.Equal(t, []byte("env-secret"), secret)

	secret, err = (&GitHubConfig{WebhookSecretFile: file}).GetWebhookSecret()
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), secret)
}
