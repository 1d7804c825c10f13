package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	dashboardapp "github.com/devpulse/devpulse-api/internal/app"
	"github.com/devpulse/devpulse-api/internal/config"
	"github.com/devpulse/devpulse-api/internal/github"
	"github.com/devpulse/devpulse-api/internal/telemetry"
)

const (
	defaultGracefulTimeout   = 30 * time.Second
	telemetryShutdownTimeout = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		Long: `Start the dashboard API server.

Settings come from built-in defaults, the optional YAML file (--config), the
optional dotenv file (--env-file) and DEVPULSE_ environment variables, in that
order. The server runs the scheduled health check, full sync and cleanup jobs
until it receives SIGINT or SIGTERM.`,
		RunE: runServe,
	}

	cmd.Flags().String("address", "", "Address to listen on (overrides server.address)")
	addConfigFlags(cmd)
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	tel, err := telemetry.New(ctx,
		telemetry.WithTelemetryConfig(cfg.Telemetry),
		telemetry.WithResourceAttributes(
			telemetry.AttrStorageType.String(cfg.Storage.Type),
			telemetry.AttrGitHubHost.String(githubHost(cfg.GitHub.BaseURL)),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to shutdown telemetry", "error", err)
		}
	}()

	opts := []dashboardapp.DashboardAppOptions{
		dashboardapp.WithConfig(cfg),
		dashboardapp.WithMeterProvider(tel.MeterProvider()),
		dashboardapp.WithTracerProvider(tel.TracerProvider()),
		dashboardapp.WithMetricsHandler(tel.MetricsHandler()),
	}
	if address, _ := cmd.Flags().GetString("address"); address != "" {
		opts = append(opts, dashboardapp.WithAddress(address))
	}

	app, err := dashboardapp.NewDashboardApp(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	slog.Info("Starting DevPulse dashboard API server",
		"address", app.GetHTTPServer().Addr,
		"storage", cfg.Storage.Type)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()

	select {
	case err := <-errChan:
		if stopErr := app.Stop(defaultGracefulTimeout); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
		return err
	case <-ctx.Done():
	}

	if err := app.Stop(defaultGracefulTimeout); err != nil {
		return err
	}
	return <-errChan
}

// loadConfig loads the configuration named by the --config and --env-file flags
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var opts []config.Option

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if configPath != "" {
		opts = append(opts, config.WithConfigPath(configPath))
	}

	envFile, err := cmd.Flags().GetString("env-file")
	if err != nil {
		return nil, fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// githubHost names the upstream API host, api.github.com unless overridden
func githubHost(baseURL string) string {
	if baseURL == "" {
		baseURL = github.DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}
	return u.Host
}
