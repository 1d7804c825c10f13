package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	dashboardapp "github.com/devpulse/devpulse-api/internal/app"
)

const syncCmdStopTimeout = 5 * time.Second

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a one-off GitHub sync without starting the server",
		Long: `Run a one-off GitHub sync against the configured store and print the result as JSON.

Examples:
  # Sync one user with up to 5 attempts
  devpulse-api sync --config config.yaml --user 42 --max-retries 5

  # Sync every connected user
  devpulse-api sync --config config.yaml --all`,
		RunE: runSync,
	}

	cmd.Flags().String("user", "", "ID of the user to sync")
	cmd.Flags().Bool("all", false, "Sync every user with a GitHub connection")
	cmd.Flags().Int("max-retries", 0, "Attempts for a single user sync (0 = configured default)")
	cmd.MarkFlagsMutuallyExclusive("user", "all")
	cmd.MarkFlagsOneRequired("user", "all")
	addConfigFlags(cmd)
	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	app, err := dashboardapp.NewDashboardApp(ctx, dashboardapp.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Stop(syncCmdStopTimeout); err != nil {
			slog.Error("Failed to stop application", "error", err)
		}
	}()

	engine := app.Components().SyncEngine

	var (
		out     any
		failure error
	)
	all, _ := cmd.Flags().GetBool("all")
	if all {
		summary, err := engine.SyncAllUsers(ctx)
		if err != nil {
			return fmt.Errorf("failed to sync users: %w", err)
		}
		out = summary
		if summary.FailedSyncs > 0 {
			failure = fmt.Errorf("%d of %d user syncs failed", summary.FailedSyncs, summary.TotalUsers)
		}
	} else {
		userID, _ := cmd.Flags().GetString("user")
		maxRetries, _ := cmd.Flags().GetInt("max-retries")
		result := engine.SyncUserData(ctx, userID, maxRetries)
		out = result
		if !result.Success {
			failure = fmt.Errorf("sync of user %s failed: %s", userID, result.Error)
		}
	}

	output, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format sync result as JSON: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(output)); err != nil {
		return err
	}
	return failure
}
