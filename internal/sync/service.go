package sync

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go Service

// Service is the sync surface exposed to the HTTP API and the CLI
type Service interface {
	// SyncUserData refreshes one user, retrying up to maxRetries attempts (0 selects the default)
	SyncUserData(ctx context.Context, userID string, maxRetries int) Result

	// StartPeriodicSync schedules a recurring sync for the user, replacing any existing one
	StartPeriodicSync(ctx context.Context, userID string, interval time.Duration) error

	// StopPeriodicSync cancels the user's recurring sync and reports whether one existed
	StopPeriodicSync(userID string) bool

	// SyncAllUsers syncs every connected user
	SyncAllUsers(ctx context.Context) (Summary, error)

	// UserStatus reports connection and periodic sync state
	UserStatus(ctx context.Context, userID string) (UserStatus, error)

	// UserStats counts recorded activities and repositories
	UserStats(ctx context.Context, userID string) (UserStats, error)

	// ProcessWebhookEvent applies one GitHub webhook delivery
	ProcessWebhookEvent(ctx context.Context, event WebhookEvent) (WebhookResult, error)
}

var _ Service = (*Engine)(nil)
