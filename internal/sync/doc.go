// Package sync keeps each user's GitHub data in the store fresh.
//
// # Engine
//
// Engine wraps a single GitHub refresh (see internal/github.Refresher) in a
// bounded retry loop. Failures classified as rate limits wait
// min(10s*2^n, 5m) before the next attempt; any other failure waits
// min(1s*2^(n-1), 30s). A missing GitHub connection is never retried. No
// wait follows the final attempt. Concurrent syncs of the same user share
// one run.
//
// A successful sync drops every cache entry belonging to the user so that
// dashboard reads observe the new data.
//
// # Periodic Syncs
//
// StartPeriodicSync keeps at most one timer per user. Starting again replaces
// the timer, and stopping it never cancels a sync already in progress.
//
// # System Jobs
//
// Engine implements scheduler.Runner:
//
//   - HealthCheck: resyncs users whose last sync is missing or stale
//   - FullSync: resyncs every connected user with bounded parallelism
//   - Cleanup: sweeps expired cache entries and deletes activities past retention
//
// # Webhooks
//
// ProcessWebhookEvent validates push, pull_request and issues deliveries.
// Push commits are recorded for the connected user matching the pusher.
// Other event types are acknowledged and ignored.
package sync
