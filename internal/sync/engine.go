package sync

//go:generate mockgen -destination=mocks/mock_refresher.go -package=mocks -source=engine.go Refresher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	gh "github.com/google/go-github/v57/github"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"

	"github.com/devpulse/devpulse-api/internal/cache"
	"github.com/devpulse/devpulse-api/internal/github"
	"github.com/devpulse/devpulse-api/internal/otel"
	"github.com/devpulse/devpulse-api/internal/retry"
	"github.com/devpulse/devpulse-api/internal/scheduler"
	"github.com/devpulse/devpulse-api/internal/store"
	"github.com/devpulse/devpulse-api/internal/telemetry"
)

const (
	// DefaultSyncInterval is the period of a per-user sync when none is given
	DefaultSyncInterval = 15 * time.Minute

	// DefaultConcurrency bounds how many users SyncAllUsers refreshes at once
	DefaultConcurrency = 4

	// DefaultStaleAfter is how old a last sync may get before the health check resyncs the user
	DefaultStaleAfter = 24 * time.Hour

	// DefaultRetention is how long activities are kept by the cleanup job
	DefaultRetention = 365 * 24 * time.Hour

	periodicJobPrefix = "user-sync:"
)

// Refresher performs a single, non-retried refresh of a user's GitHub data
type Refresher interface {
	SyncUserData(ctx context.Context, userID string) (github.RefreshResult, error)
	RecordPushCommits(ctx context.Context, userID, repoFullName string, commits []*gh.HeadCommit, fallback time.Time) (int, error)
}

// Engine runs user syncs and owns the per-user periodic timers
type Engine struct {
	refresher Refresher
	store     store.Store
	cache     *cache.Cache

	periodic *scheduler.Scheduler
	inflight singleflight.Group

	clock       clock.WithTicker
	sleep       retry.SleepFunc
	maxRetries  int
	concurrency int
	staleAfter  time.Duration
	retention   time.Duration

	metrics *telemetry.SyncMetrics
	tracer  trace.Tracer
}

var _ scheduler.Runner = (*Engine)(nil)

// Option configures an Engine
type Option func(*Engine)

// WithSyncMetrics sets the sync metrics for the engine
func WithSyncMetrics(m *telemetry.SyncMetrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracer enables spans around syncs and webhook processing
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// WithClock injects the clock used for timestamps and per-user timers
func WithClock(clk clock.WithTicker) Option {
	return func(e *Engine) {
		e.clock = clk
	}
}

// WithSleep replaces the wait between retry attempts
func WithSleep(sleep retry.SleepFunc) Option {
	return func(e *Engine) {
		e.sleep = sleep
	}
}

// WithMaxRetries sets the attempt limit used when a caller passes zero
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithConcurrency bounds parallel user syncs in SyncAllUsers
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithStaleAfter sets the last-sync age that makes the health check resync a user
func WithStaleAfter(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.staleAfter = d
		}
	}
}

// WithRetention sets how long activities survive the cleanup job. Zero disables deletion.
func WithRetention(d time.Duration) Option {
	return func(e *Engine) {
		e.retention = d
	}
}

// New creates an engine. Per-user periodic syncs run on a private scheduler
// that shares the engine clock.
func New(refresher Refresher, s store.Store, c *cache.Cache, opts ...Option) *Engine {
	e := &Engine{
		refresher:   refresher,
		store:       s,
		cache:       c,
		clock:       clock.RealClock{},
		sleep:       retry.ContextSleep,
		maxRetries:  retry.DefaultMaxAttempts,
		concurrency: DefaultConcurrency,
		staleAfter:  DefaultStaleAfter,
		retention:   DefaultRetention,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.periodic = scheduler.New(nil, scheduler.WithClock(e.clock))
	return e
}

// SyncUserData refreshes one user, retrying failures up to maxRetries attempts
// (the engine default when maxRetries <= 0). A missing connection fails
// immediately. A successful sync invalidates every cache entry of the user.
// Concurrent calls for the same user share one run and its result.
func (e *Engine) SyncUserData(ctx context.Context, userID string, maxRetries int) Result {
	v, _, shared := e.inflight.Do(userID, func() (any, error) {
		return e.syncWithRetry(context.WithoutCancel(ctx), userID, maxRetries), nil
	})
	if shared {
		slog.Debug("Joined in-flight sync", "user_id", userID)
	}
	return v.(Result)
}

func (e *Engine) syncWithRetry(ctx context.Context, userID string, maxRetries int) Result {
	if maxRetries <= 0 {
		maxRetries = e.maxRetries
	}

	ctx, span := otel.StartSpan(ctx, e.tracer, "sync.SyncUserData",
		trace.WithAttributes(otel.AttrUserID.String(userID), otel.AttrSyncMax.Int(maxRetries)))
	defer span.End()

	start := e.clock.Now()
	var last Result

	policy := &retry.Policy{
		MaxAttempts: maxRetries,
		Delay:       retry.SyncDelay(github.IsRateLimited),
		Sleep:       e.sleep,
		Notify: func(attempt int, err error, delay time.Duration) {
			slog.Warn("Sync attempt failed, retrying",
				"user_id", userID,
				"attempt", attempt,
				"max_attempts", maxRetries,
				"rate_limited", github.IsRateLimited(err),
				"delay", delay,
				"error", err)
		},
	}

	attempts, err := policy.Do(ctx, func(ctx context.Context, attempt int) (opErr error) {
		defer func() {
			if r := recover(); r != nil {
				opErr = fmt.Errorf("sync panicked: %v", r)
				last = Result{SyncedAt: e.clock.Now().UTC(), Attempt: attempt, Error: opErr.Error()}
			}
		}()

		res, err := e.refresher.SyncUserData(ctx, userID)
		last = Result{
			SyncedRepos:      res.Repositories,
			SyncedActivities: res.Activities,
			SyncedAt:         res.SyncedAt,
			Attempt:          attempt,
		}
		if last.SyncedAt.IsZero() {
			last.SyncedAt = e.clock.Now().UTC()
		}
		if err != nil {
			last.Error = err.Error()
			e.metrics.RecordAttempt(ctx, attemptOutcome(err))
			if errors.Is(err, store.ErrConnectionMissing) {
				return backoff.Permanent(err)
			}
			return err
		}
		e.metrics.RecordAttempt(ctx, "success")
		return nil
	})

	span.SetAttributes(otel.AttrSyncAttempt.Int(attempts))
	e.metrics.RecordSyncDuration(ctx, e.clock.Since(start), err == nil)

	if err == nil {
		last.Success = true
		removed := e.cache.InvalidateUser(userID)
		e.metrics.RecordActivities(ctx, "poll", last.SyncedActivities)
		slog.Info("Sync completed",
			"user_id", userID,
			"attempt", last.Attempt,
			"repositories", last.SyncedRepos,
			"activities", last.SyncedActivities,
			"cache_entries_invalidated", removed)
		return last
	}

	otel.RecordError(span, err)
	last.Success = false
	last.Attempt = attempts
	if errors.Is(err, store.ErrConnectionMissing) {
		last.Error = store.ErrConnectionMissing.Error()
	} else {
		last.Error = err.Error()
	}
	slog.Error("Sync failed",
		"user_id", userID,
		"attempts", attempts,
		"error", last.Error)
	return last
}

func attemptOutcome(err error) string {
	if github.IsRateLimited(err) {
		return "rate_limited"
	}
	return "error"
}

func periodicJobName(userID string) string {
	return periodicJobPrefix + userID
}

// StartPeriodicSync replaces any existing timer for the user, runs one sync
// right away in the background and then syncs again every interval.
func (e *Engine) StartPeriodicSync(ctx context.Context, userID string, interval time.Duration) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	task := func(ctx context.Context) error {
		if res := e.SyncUserData(ctx, userID, 0); !res.Success {
			return errors.New(res.Error)
		}
		return nil
	}

	if err := e.periodic.AddJob(periodicJobName(userID), interval, task); err != nil {
		return fmt.Errorf("failed to schedule periodic sync: %w", err)
	}

	go func() {
		if err := task(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("Initial periodic sync failed", "user_id", userID, "error", err)
		}
	}()

	slog.Info("Periodic sync started", "user_id", userID, "interval", interval)
	return nil
}

// StopPeriodicSync cancels the user's timer and reports whether one existed.
// A sync already running is left to finish.
func (e *Engine) StopPeriodicSync(userID string) bool {
	stopped := e.periodic.RemoveJob(periodicJobName(userID))
	if stopped {
		slog.Info("Periodic sync stopped", "user_id", userID)
	}
	return stopped
}

// PeriodicSyncActive reports whether the user has a live periodic timer
func (e *Engine) PeriodicSyncActive(userID string) bool {
	return e.periodic.HasJob(periodicJobName(userID))
}

// PeriodicSyncs lists the users with a live periodic timer
func (e *Engine) PeriodicSyncs() []string {
	jobs := e.periodic.Status().Jobs
	users := make([]string, 0, len(jobs))
	for _, name := range jobs {
		users = append(users, strings.TrimPrefix(name, periodicJobPrefix))
	}
	return users
}

// Shutdown cancels every per-user timer
func (e *Engine) Shutdown() {
	e.periodic.Stop()
}

// SyncAllUsers syncs every connected user with bounded parallelism. The error
// is non-nil only when the connection list itself cannot be loaded.
func (e *Engine) SyncAllUsers(ctx context.Context) (Summary, error) {
	summary := Summary{StartedAt: e.clock.Now().UTC(), Errors: []UserError{}}

	conns, err := e.store.ListConnections(ctx)
	if err != nil {
		summary.CompletedAt = e.clock.Now().UTC()
		return summary, fmt.Errorf("failed to list connections: %w", err)
	}

	results := make([]Result, len(conns))
	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, conn := range conns {
		g.Go(func() error {
			results[i] = e.SyncUserData(ctx, conn.UserID, 0)
			return nil
		})
	}
	_ = g.Wait()

	summary.TotalUsers = len(conns)
	for i, res := range results {
		if res.Success {
			summary.SuccessfulSyncs++
			summary.TotalActivities += res.SyncedActivities
			summary.TotalRepositories += res.SyncedRepos
			continue
		}
		summary.FailedSyncs++
		summary.Errors = append(summary.Errors, UserError{UserID: conns[i].UserID, Error: res.Error})
	}
	summary.CompletedAt = e.clock.Now().UTC()

	slog.Info("Sync of all users completed",
		"total", summary.TotalUsers,
		"successful", summary.SuccessfulSyncs,
		"failed", summary.FailedSyncs,
		"activities", summary.TotalActivities,
		"repositories", summary.TotalRepositories)
	return summary, nil
}

// HealthCheck resyncs users that never synced or whose last sync is stale
func (e *Engine) HealthCheck(ctx context.Context) error {
	conns, err := e.store.ListConnections(ctx)
	if err != nil {
		return fmt.Errorf("failed to list connections: %w", err)
	}

	cutoff := e.clock.Now().Add(-e.staleAfter)
	var errs []error
	stale := 0
	for _, conn := range conns {
		if conn.LastSyncAt != nil && conn.LastSyncAt.After(cutoff) {
			continue
		}
		stale++
		if res := e.SyncUserData(ctx, conn.UserID, 0); !res.Success {
			errs = append(errs, fmt.Errorf("user %s: %s", conn.UserID, res.Error))
		}
	}

	slog.Info("Sync health check completed", "connections", len(conns), "stale", stale, "failed", len(errs))
	return errors.Join(errs...)
}

// FullSync is the recurring resync of every connected user
func (e *Engine) FullSync(ctx context.Context) error {
	summary, err := e.SyncAllUsers(ctx)
	if err != nil {
		return err
	}
	if summary.FailedSyncs > 0 {
		return fmt.Errorf("%d of %d user syncs failed", summary.FailedSyncs, summary.TotalUsers)
	}
	return nil
}

// Cleanup sweeps expired cache entries and deletes activities past retention
func (e *Engine) Cleanup(ctx context.Context) error {
	swept := e.cache.Sweep()

	var deleted int64
	if e.retention > 0 {
		var err error
		deleted, err = e.store.DeleteActivitiesBefore(ctx, e.clock.Now().Add(-e.retention))
		if err != nil {
			return fmt.Errorf("failed to delete old activities: %w", err)
		}
	}

	slog.Info("Cleanup completed", "cache_entries_swept", swept, "activities_deleted", deleted)
	return nil
}

// UserStatus reports connection and timer state for a user
func (e *Engine) UserStatus(ctx context.Context, userID string) (UserStatus, error) {
	st := UserStatus{UserID: userID, PeriodicSyncActive: e.PeriodicSyncActive(userID)}

	conn, err := e.store.FindConnectionByUser(ctx, userID)
	if errors.Is(err, store.ErrConnectionMissing) {
		return st, nil
	}
	if err != nil {
		return st, err
	}

	st.Connected = true
	st.GitHubUsername = conn.GitHubUsername
	st.LastSyncAt = conn.LastSyncAt
	return st, nil
}

// UserStats counts the activities and repositories recorded for a user
func (e *Engine) UserStats(ctx context.Context, userID string) (UserStats, error) {
	stats := UserStats{UserID: userID}

	byType, err := e.store.CountActivities(ctx, userID)
	if err != nil {
		return stats, err
	}
	repos, err := e.store.ListRepositories(ctx, userID)
	if err != nil {
		return stats, err
	}

	stats.ByType = byType
	for _, n := range byType {
		stats.TotalActivities += n
	}
	stats.Repositories = len(repos)

	if conn, err := e.store.FindConnectionByUser(ctx, userID); err == nil {
		stats.LastSyncAt = conn.LastSyncAt
	}
	return stats, nil
}
