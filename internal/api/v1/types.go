// Package v1 provides the /api/v1 handlers of the dashboard API together with
// the root health endpoints.
package v1

import (
	"time"

	"github.com/devpulse/devpulse-api/internal/scheduler"
	pkgsync "github.com/devpulse/devpulse-api/internal/sync"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string `json:"status"`
}

// WebhookStatusResponse describes the webhook endpoint
type WebhookStatusResponse struct {
	Status          string    `json:"status"`
	Timestamp       time.Time `json:"timestamp"`
	SupportedEvents []string  `json:"supportedEvents"`
}

// WebhookTestResponse wraps the result of a synthetic delivery
type WebhookTestResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Result  pkgsync.WebhookResult `json:"result"`
}

// TriggerSyncResponse is returned by a manual sync
type TriggerSyncResponse struct {
	Success          bool      `json:"success"`
	Message          string    `json:"message"`
	UserID           string    `json:"userId"`
	SyncedAt         time.Time `json:"syncedAt"`
	SyncedActivities int       `json:"syncedActivities"`
	SyncedRepos      int       `json:"syncedRepos"`
	Attempt          int       `json:"attempt,omitempty"`
}

// StartPeriodicSyncRequest is the optional body of a periodic sync start
type StartPeriodicSyncRequest struct {
	IntervalMinutes *int `json:"intervalMinutes,omitempty"`
}

// PeriodicSyncResponse acknowledges a periodic sync start or stop
type PeriodicSyncResponse struct {
	Success         bool   `json:"success"`
	Message         string `json:"message"`
	UserID          string `json:"userId"`
	IntervalMinutes int    `json:"intervalMinutes,omitempty"`
}

// SyncAllResponse wraps the summary of a sync over every user
type SyncAllResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Summary pkgsync.Summary `json:"summary"`
}

// CacheInvalidateResponse reports how many entries a user invalidation removed
type CacheInvalidateResponse struct {
	UserID      string `json:"userId"`
	Invalidated int    `json:"invalidated"`
}

// SchedulerStatusResponse combines the system jobs with the per-user timers
type SchedulerStatusResponse struct {
	System        scheduler.Status `json:"system"`
	PeriodicSyncs []string         `json:"periodicSyncs"`
}
