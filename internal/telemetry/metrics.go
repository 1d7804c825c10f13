// Package telemetry provides OpenTelemetry instrumentation for the dashboard API.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/devpulse/devpulse-api/sync"

	// CacheMetricsMeterName is the name used for the cache metrics meter
	CacheMetricsMeterName = "github.com/devpulse/devpulse-api/cache"

	// SchedulerMetricsMeterName is the name used for the scheduler metrics meter
	SchedulerMetricsMeterName = "github.com/devpulse/devpulse-api/scheduler"
)

// SyncMetrics holds the OpenTelemetry instruments for sync operation metrics
type SyncMetrics struct {
	syncDuration metric.Float64Histogram
	attempts     metric.Int64Counter
	activities   metric.Int64Counter
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"devpulse_sync_duration_seconds",
		metric.WithDescription("Duration of user sync operations in seconds, retries included"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	attempts, err := meter.Int64Counter(
		"devpulse_sync_attempts_total",
		metric.WithDescription("Number of upstream sync attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	activities, err := meter.Int64Counter(
		"devpulse_sync_activities_total",
		metric.WithDescription("Number of activities recorded by sync or webhook"),
		metric.WithUnit("{activity}"),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration: syncDuration,
		attempts:     attempts,
		activities:   activities,
	}, nil
}

// RecordSyncDuration records the duration of a complete user sync
func (m *SyncMetrics) RecordSyncDuration(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || m.syncDuration == nil {
		return
	}

	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordAttempt counts one upstream attempt. outcome is "success", "rate_limited" or "error".
func (m *SyncMetrics) RecordAttempt(ctx context.Context, outcome string) {
	if m == nil || m.attempts == nil {
		return
	}

	m.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordActivities counts activities persisted from the given source ("poll" or "webhook")
func (m *SyncMetrics) RecordActivities(ctx context.Context, source string, count int) {
	if m == nil || m.activities == nil || count <= 0 {
		return
	}

	m.activities.Add(ctx, int64(count), metric.WithAttributes(attribute.String("source", source)))
}

// CacheMetrics holds the OpenTelemetry instruments for the dashboard cache
type CacheMetrics struct {
	lookups       metric.Int64Counter
	invalidations metric.Int64Counter
	swept         metric.Int64Counter
}

// NewCacheMetrics creates a new CacheMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewCacheMetrics(provider metric.MeterProvider) (*CacheMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CacheMetricsMeterName)

	lookups, err := meter.Int64Counter(
		"devpulse_cache_lookups_total",
		metric.WithDescription("Number of cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	invalidations, err := meter.Int64Counter(
		"devpulse_cache_invalidated_entries_total",
		metric.WithDescription("Number of entries removed by pattern invalidation"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	swept, err := meter.Int64Counter(
		"devpulse_cache_swept_entries_total",
		metric.WithDescription("Number of expired entries removed by the background sweep"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	return &CacheMetrics{
		lookups:       lookups,
		invalidations: invalidations,
		swept:         swept,
	}, nil
}

// RecordLookup counts a cache hit or miss
func (m *CacheMetrics) RecordLookup(ctx context.Context, hit bool) {
	if m == nil || m.lookups == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordInvalidation counts entries dropped by a pattern delete
func (m *CacheMetrics) RecordInvalidation(ctx context.Context, count int) {
	if m == nil || m.invalidations == nil || count <= 0 {
		return
	}

	m.invalidations.Add(ctx, int64(count))
}

// RecordSweep counts entries dropped by the expiry sweep
func (m *CacheMetrics) RecordSweep(ctx context.Context, count int) {
	if m == nil || m.swept == nil || count <= 0 {
		return
	}

	m.swept.Add(ctx, int64(count))
}

// SchedulerMetrics holds the OpenTelemetry instruments for scheduled jobs
type SchedulerMetrics struct {
	jobRuns     metric.Int64Counter
	jobDuration metric.Float64Histogram
}

// NewSchedulerMetrics creates a new SchedulerMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSchedulerMetrics(provider metric.MeterProvider) (*SchedulerMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SchedulerMetricsMeterName)

	jobRuns, err := meter.Int64Counter(
		"devpulse_scheduler_job_runs_total",
		metric.WithDescription("Number of scheduled job runs by job and outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	jobDuration, err := meter.Float64Histogram(
		"devpulse_scheduler_job_duration_seconds",
		metric.WithDescription("Duration of scheduled job runs in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerMetrics{
		jobRuns:     jobRuns,
		jobDuration: jobDuration,
	}, nil
}

// RecordJobRun records one execution of a named job
func (m *SchedulerMetrics) RecordJobRun(ctx context.Context, job string, duration time.Duration, success bool) {
	if m == nil || m.jobRuns == nil || m.jobDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("job", job),
		attribute.Bool("success", success),
	)
	m.jobRuns.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, duration.Seconds(), attrs)
}
