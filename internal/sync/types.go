package sync

import (
	"time"

	"github.com/devpulse/devpulse-api/internal/store"
)

// Result describes the outcome of one user sync. A retried sync returns the
// result of its last attempt.
type Result struct {
	Success          bool      `json:"success"`
	SyncedRepos      int       `json:"syncedRepos"`
	SyncedActivities int       `json:"syncedActivities"`
	SyncedAt         time.Time `json:"syncedAt"`
	Error            string    `json:"error,omitempty"`
	Attempt          int       `json:"attempt,omitempty"`
}

// UserError pairs a user with the error message of a failed sync
type UserError struct {
	UserID string `json:"userId"`
	Error  string `json:"error"`
}

// Summary aggregates a sync over every connected user
type Summary struct {
	TotalUsers        int         `json:"totalUsers"`
	SuccessfulSyncs   int         `json:"successfulSyncs"`
	FailedSyncs       int         `json:"failedSyncs"`
	TotalActivities   int         `json:"totalActivities"`
	TotalRepositories int         `json:"totalRepositories"`
	StartedAt         time.Time   `json:"startedAt"`
	CompletedAt       time.Time   `json:"completedAt"`
	Errors            []UserError `json:"errors"`
}

// UserStatus is the sync state of one user
type UserStatus struct {
	UserID             string     `json:"userId"`
	Connected          bool       `json:"connected"`
	GitHubUsername     string     `json:"githubUsername,omitempty"`
	LastSyncAt         *time.Time `json:"lastSyncAt,omitempty"`
	PeriodicSyncActive bool       `json:"periodicSyncActive"`
}

// UserStats counts what has been recorded for a user
type UserStats struct {
	UserID          string                     `json:"userId"`
	TotalActivities int                        `json:"totalActivities"`
	ByType          map[store.ActivityType]int `json:"byType"`
	Repositories    int                        `json:"repositories"`
	LastSyncAt      *time.Time                 `json:"lastSyncAt,omitempty"`
}

// WebhookEvent is an inbound GitHub delivery
type WebhookEvent struct {
	Type       string
	DeliveryID string
	Payload    []byte
}

// WebhookResult acknowledges a webhook delivery
type WebhookResult struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	ProcessedAt time.Time `json:"processedAt"`
}
