package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/devpulse/devpulse-api/database"
)

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending database migrations",
		Long: `Apply pending database migrations to bring the schema up to date.
The connection uses the migration user from the database configuration when one
is set, and the application user otherwise.`,
		RunE: runMigrateUp,
	}
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	target, err := setupMigration(cmd)
	if err != nil {
		return err
	}

	if !target.yes && !confirm(cmd, fmt.Sprintf("About to apply migrations to %s. Continue?", target.describe())) {
		slog.Info("Migration cancelled by user")
		return nil
	}

	slog.Info("Applying database migrations", "steps", target.numSteps)
	if err := database.MigrateUp(target.connString, target.numSteps); err != nil {
		return err
	}

	displayMigrationVersion(target.connString)
	return nil
}
