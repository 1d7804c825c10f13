package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devpulse/devpulse-api/database"
	"github.com/devpulse/devpulse-api/internal/app/storage/auth"
	"github.com/devpulse/devpulse-api/internal/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tool",
		Long:  `Database migration tool for managing schema versions. Use with 'up' or 'down' subcommands.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	cmd.PersistentFlags().BoolP("yes", "y", false, "Answer yes to all questions")
	cmd.PersistentFlags().UintP("num-steps", "n", 0, "Number of steps to migrate (0 = all)")
	cmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format)")
	cmd.PersistentFlags().String("env-file", "", "Path to a dotenv file loaded before DEVPULSE_ variables are read")

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	return cmd
}

// migrationTarget is what both migrate subcommands need before touching the schema
type migrationTarget struct {
	cfg        *config.DatabaseConfig
	connString string
	numSteps   uint
	yes        bool
}

func setupMigration(cmd *cobra.Command) (*migrationTarget, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.Database == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return nil, fmt.Errorf("failed to get num-steps flag: %w", err)
	}
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return nil, fmt.Errorf("failed to get yes flag: %w", err)
	}

	connString, err := auth.MigrationConnectionString(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to get migration connection string: %w", err)
	}

	return &migrationTarget{
		cfg:        cfg.Database,
		connString: connString,
		numSteps:   numSteps,
		yes:        yes,
	}, nil
}

func (t *migrationTarget) describe() string {
	return fmt.Sprintf("%s@%s:%d/%s", t.cfg.GetMigrationUser(), t.cfg.Host, t.cfg.GetPort(), t.cfg.Database)
}

func displayMigrationVersion(connString string) {
	version, dirty, err := database.GetVersion(connString)
	switch {
	case err != nil:
		slog.Warn("Unable to get migration version", "error", err)
	case dirty:
		slog.Warn("Database is in a dirty state, manual intervention may be required", "version", version)
	default:
		slog.Info("Current migration version", "version", version)
	}
}
