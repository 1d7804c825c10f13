package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/devpulse/devpulse-api/internal/config"
)

// MigrationConnectionString builds the connection string golang-migrate opens
// its own connection with. A dynamic token is embedded when configured,
// otherwise the static password. Without either the password is left out so
// .pgpass still applies.
func MigrationConnectionString(ctx context.Context, cfg *config.DatabaseConfig) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("database configuration is required")
	}

	user := cfg.GetMigrationUser()
	if cfg.DynamicAuth != nil {
		token, err := ResolveAuthToken(ctx, cfg, user)
		if err != nil {
			return "", fmt.Errorf("failed to resolve auth token for migration user: %w", err)
		}
		return cfg.BuildConnectionString(user, token), nil
	}

	password, err := cfg.GetPassword()
	if err != nil {
		slog.Debug("No static database password, relying on pgpass", "error", err)
		password = ""
	}
	return cfg.BuildConnectionString(user, password), nil
}
