// Package config provides configuration loading and management for the dashboard API.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/devpulse/devpulse-api/internal/telemetry"
)

// EnvPrefix prefixes every environment override, e.g. DEVPULSE_SERVER_ADDRESS
const EnvPrefix = "DEVPULSE"

const (
	// StorageTypeMemory keeps all data in process memory
	StorageTypeMemory = "memory"

	// StorageTypePostgres persists data in PostgreSQL
	StorageTypePostgres = "postgres"
)

// Environment variables holding secrets
const (
	EnvDatabasePassword    = EnvPrefix + "_DATABASE_PASSWORD"
	EnvGitHubWebhookSecret = EnvPrefix + "_GITHUB_WEBHOOK_SECRET"
)

// Defaults applied before the file and the environment are read
const (
	DefaultAddress         = ":8080"
	DefaultGitHubTimeout   = 30 * time.Second
	DefaultMaxRetries      = 3
	DefaultConcurrency     = 5
	DefaultSyncInterval    = 15 * time.Minute
	DefaultStaleAfter      = 24 * time.Hour
	DefaultRetention       = 365 * 24 * time.Hour
	DefaultCacheTTL        = 5 * time.Minute
	DefaultCacheSweep      = time.Minute
	DefaultDatabasePort    = 5432
	DefaultDatabaseSSLMode = "require"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path    string
	envFile string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// EvalSymlinks also cleans the path
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// WithEnvFile loads variables from a dotenv file before the environment is
// read. Variables already set in the process environment win.
func WithEnvFile(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("env file path is required")
		}
		cfg.envFile = filepath.Clean(path)
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Storage   StorageConfig     `yaml:"storage"`
	Database  *DatabaseConfig   `yaml:"database,omitempty"`
	GitHub    GitHubConfig      `yaml:"github"`
	Sync      SyncConfig        `yaml:"sync"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Cache     CacheConfig       `yaml:"cache"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	// Address is the listen address, e.g. ":8080"
	Address string `yaml:"address"`

	// DevMode enables development-only endpoints such as the webhook test delivery
	DevMode bool `yaml:"devMode,omitempty"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	// Type is "memory" or "postgres"
	Type string `yaml:"type"`
}

// GitHubConfig configures the upstream API client and inbound webhooks
type GitHubConfig struct {
	// BaseURL overrides the REST endpoint, for GitHub Enterprise
	BaseURL string `yaml:"baseURL,omitempty"`

	// Timeout bounds every upstream request
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// WebhookSecretFile is the path to a file containing the webhook secret
	WebhookSecretFile string `yaml:"webhookSecretFile,omitempty"`
}

// SyncConfig tunes the sync engine
type SyncConfig struct {
	MaxRetries      int           `yaml:"maxRetries,omitempty"`
	Concurrency     int           `yaml:"concurrency,omitempty"`
	DefaultInterval time.Duration `yaml:"defaultInterval,omitempty"`

	// StaleAfter is the age of the last sync after which the health check resyncs
	StaleAfter time.Duration `yaml:"staleAfter,omitempty"`

	// Retention is how long activities are kept before the cleanup job deletes them
	Retention time.Duration `yaml:"retention,omitempty"`
}

// SchedulerConfig overrides the system job intervals. Zero keeps the default.
type SchedulerConfig struct {
	HealthCheckInterval time.Duration `yaml:"healthCheckInterval,omitempty"`
	FullSyncInterval    time.Duration `yaml:"fullSyncInterval,omitempty"`
	CleanupInterval     time.Duration `yaml:"cleanupInterval,omitempty"`
}

// CacheConfig tunes the response cache
type CacheConfig struct {
	DefaultTTL    time.Duration `yaml:"defaultTTL,omitempty"`
	SweepInterval time.Duration `yaml:"sweepInterval,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Database string `yaml:"database"`

	// PasswordFile is the path to a file containing only the password.
	// Trailing whitespace is ignored.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// SSLMode is disable, require, verify-ca or verify-full
	SSLMode string `yaml:"sslMode,omitempty"`

	// MigrationUser runs schema migrations. Defaults to User.
	MigrationUser string `yaml:"migrationUser,omitempty"`

	MaxOpenConns    int32         `yaml:"maxOpenConns,omitempty"`
	MaxIdleConns    int32         `yaml:"maxIdleConns,omitempty"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime,omitempty"`

	// ConnectTimeout bounds the startup retries until the database answers
	ConnectTimeout time.Duration `yaml:"connectTimeout,omitempty"`

	// DynamicAuth replaces the static password with short-lived tokens
	DynamicAuth *DynamicAuthConfig `yaml:"dynamicAuth,omitempty"`
}

// DynamicAuthConfig selects a token based authentication method
type DynamicAuthConfig struct {
	AWSRDSIAM *AWSRDSIAMConfig `yaml:"awsRdsIam,omitempty"`
}

// AWSRDSIAMConfig configures AWS RDS IAM authentication
type AWSRDSIAMConfig struct {
	// Region is the AWS region of the instance, or "detect" to read it from IMDS
	Region string `yaml:"region"`
}

// Default returns the configuration used when neither file nor environment set a value
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Address: DefaultAddress},
		Storage: StorageConfig{Type: StorageTypeMemory},
		GitHub:  GitHubConfig{Timeout: DefaultGitHubTimeout},
		Sync: SyncConfig{
			MaxRetries:      DefaultMaxRetries,
			Concurrency:     DefaultConcurrency,
			DefaultInterval: DefaultSyncInterval,
			StaleAfter:      DefaultStaleAfter,
			Retention:       DefaultRetention,
		},
		Cache: CacheConfig{
			DefaultTTL:    DefaultCacheTTL,
			SweepInterval: DefaultCacheSweep,
		},
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// an optional dotenv file and DEVPULSE_ environment variables, in that order.
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.envFile != "" {
		if err := godotenv.Load(loaderCfg.envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	config := Default()
	if loaderCfg.path != "" {
		data, err := os.ReadFile(loaderCfg.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnv overlays DEVPULSE_* variables. Keys map dots to underscores, so
// sync.max_retries is read from DEVPULSE_SYNC_MAX_RETRIES.
func (c *Config) applyEnv() error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	get := func(key string) (string, bool) {
		if !v.IsSet(key) {
			return "", false
		}
		return v.GetString(key), true
	}

	var errs []error
	str := func(key string, dst *string) {
		if s, ok := get(key); ok {
			*dst = s
		}
	}
	num := func(key string, dst *int) {
		if s, ok := get(key); ok {
			n, err := strconv.Atoi(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %q is not a number", key, s))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if s, ok := get(key); ok {
			d, err := time.ParseDuration(s)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	flag := func(key string, dst *bool) {
		if s, ok := get(key); ok {
			switch strings.ToLower(s) {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off", "":
				*dst = false
			default:
				errs = append(errs, fmt.Errorf("%s: %q is not a boolean", key, s))
			}
		}
	}

	str("server.address", &c.Server.Address)
	flag("server.dev_mode", &c.Server.DevMode)
	str("storage.type", &c.Storage.Type)
	str("github.base_url", &c.GitHub.BaseURL)
	dur("github.timeout", &c.GitHub.Timeout)
	num("sync.max_retries", &c.Sync.MaxRetries)
	num("sync.concurrency", &c.Sync.Concurrency)
	dur("sync.default_interval", &c.Sync.DefaultInterval)

	if host, ok := get("database.host"); ok {
		if c.Database == nil {
			c.Database = &DatabaseConfig{}
		}
		c.Database.Host = host
		str("database.user", &c.Database.User)
		str("database.name", &c.Database.Database)
		num("database.port", &c.Database.Port)
		str("database.ssl_mode", &c.Database.SSLMode)
	}

	return errors.Join(errs...)
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	var errs []error
	if err := validateAddress(c.Server.Address); err != nil {
		errs = append(errs, fmt.Errorf("server.address: %w", err))
	}

	switch c.Storage.Type {
	case StorageTypeMemory:
	case StorageTypePostgres:
		if c.Database == nil {
			errs = append(errs, fmt.Errorf("database: required for storage type %q", StorageTypePostgres))
		} else if err := c.Database.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.type must be %q or %q, got %q",
			StorageTypeMemory, StorageTypePostgres, c.Storage.Type))
	}

	if c.GitHub.BaseURL != "" {
		if u, err := url.Parse(c.GitHub.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("github.baseURL: %q is not an absolute URL", c.GitHub.BaseURL))
		}
	}
	if c.GitHub.Timeout < 0 {
		errs = append(errs, fmt.Errorf("github.timeout must not be negative"))
	}

	if c.Sync.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("sync.maxRetries must be at least 1, got %d", c.Sync.MaxRetries))
	}
	if c.Sync.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("sync.concurrency must be at least 1, got %d", c.Sync.Concurrency))
	}
	for name, d := range map[string]time.Duration{
		"sync.defaultInterval":          c.Sync.DefaultInterval,
		"sync.staleAfter":               c.Sync.StaleAfter,
		"sync.retention":                c.Sync.Retention,
		"scheduler.healthCheckInterval": c.Scheduler.HealthCheckInterval,
		"scheduler.fullSyncInterval":    c.Scheduler.FullSyncInterval,
		"scheduler.cleanupInterval":     c.Scheduler.CleanupInterval,
		"cache.defaultTTL":              c.Cache.DefaultTTL,
		"cache.sweepInterval":           c.Cache.SweepInterval,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("telemetry: %w", err))
	}

	return errors.Join(errs...)
}

func validateAddress(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("invalid port in listen address %q", addr)
	}
	return nil
}

// Validate checks the connection settings
func (d *DatabaseConfig) Validate() error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, fmt.Errorf("host is required"))
	}
	if d.User == "" {
		errs = append(errs, fmt.Errorf("user is required"))
	}
	if d.Database == "" {
		errs = append(errs, fmt.Errorf("database is required"))
	}
	if d.Port < 0 || d.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", d.Port))
	}
	switch d.SSLMode {
	case "", "disable", "require", "verify-ca", "verify-full":
	default:
		errs = append(errs, fmt.Errorf("unsupported sslMode %q", d.SSLMode))
	}
	if d.DynamicAuth != nil && d.DynamicAuth.AWSRDSIAM != nil && d.DynamicAuth.AWSRDSIAM.Region == "" {
		errs = append(errs, fmt.Errorf("dynamicAuth.awsRdsIam.region is required"))
	}
	return errors.Join(errs...)
}

// GetPort returns the port, defaulting to 5432
func (d *DatabaseConfig) GetPort() int {
	if d.Port == 0 {
		return DefaultDatabasePort
	}
	return d.Port
}

// GetMigrationUser returns the user that runs migrations
func (d *DatabaseConfig) GetMigrationUser() string {
	if d.MigrationUser == "" {
		return d.User
	}
	return d.MigrationUser
}

// UsesDynamicAuth reports whether passwords are replaced by generated tokens
func (d *DatabaseConfig) UsesDynamicAuth() bool {
	return d.DynamicAuth != nil && d.DynamicAuth.AWSRDSIAM != nil
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from the DEVPULSE_DATABASE_PASSWORD environment variable
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		data, err := os.ReadFile(filepath.Clean(d.PasswordFile))
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv(EnvDatabasePassword); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s environment variable", EnvDatabasePassword,
	)
}

// GetConnectionString builds a PostgreSQL connection string with the static password
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}
	return d.BuildConnectionString(d.User, password), nil
}

// BuildConnectionString builds a connection string for user. An empty
// password is left out so libpq fallbacks such as .pgpass still apply.
// The password is URL-escaped.
func (d *DatabaseConfig) BuildConnectionString(user, password string) string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = DefaultDatabaseSSLMode
	}

	userInfo := url.User(user)
	if password != "" {
		userInfo = url.UserPassword(user, password)
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", d.Host, d.GetPort()),
		Path:     "/" + d.Database,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return u.String()
}

// GetWebhookSecret returns the webhook secret from WebhookSecretFile or the
// DEVPULSE_GITHUB_WEBHOOK_SECRET environment variable. No secret is not an
// error; signature validation is then skipped.
func (g *GitHubConfig) GetWebhookSecret() ([]byte, error) {
	if g.WebhookSecretFile != "" {
		data, err := os.ReadFile(filepath.Clean(g.WebhookSecretFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read webhook secret from file %s: %w", g.WebhookSecretFile, err)
		}
		return []byte(strings.TrimSpace(string(data))), nil
	}
	if s := os.Getenv(EnvGitHubWebhookSecret); s != "" {
		return []byte(s), nil
	}
	return nil, nil
}
