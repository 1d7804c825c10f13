// Package scheduler runs named recurring jobs inside the process.
//
// Each job owns one ticker goroutine. Replacing or removing a job stops its
// ticker before anything else happens, so at most one timer is live per name.
// Stopping a job never cancels a run that has already begun.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/devpulse/devpulse-api/internal/telemetry"
)

// Names of the jobs registered by Start
const (
	JobHealthCheck = "sync-health-check"
	JobFullSync    = "full-sync"
	JobCleanup     = "daily-cleanup"
)

// Default intervals of the system jobs
const (
	DefaultHealthCheckInterval = time.Hour
	DefaultFullSyncInterval    = 6 * time.Hour
	DefaultCleanupInterval     = 24 * time.Hour
)

// Task is the unit of work a job runs on every tick
type Task func(ctx context.Context) error

// Runner provides the work behind the system jobs
type Runner interface {
	HealthCheck(ctx context.Context) error
	FullSync(ctx context.Context) error
	Cleanup(ctx context.Context) error
}

// Intervals overrides the system job intervals. Zero values keep the defaults.
type Intervals struct {
	HealthCheck time.Duration
	FullSync    time.Duration
	Cleanup     time.Duration
}

// Status is a point-in-time view of the scheduler
type Status struct {
	IsRunning bool       `json:"isRunning"`
	JobCount  int        `json:"jobCount"`
	Jobs      []string   `json:"jobs"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}

type job struct {
	name     string
	interval time.Duration
	task     Task
	ticker   clock.Ticker
	stop     chan struct{}
}

// Scheduler holds the named jobs and the running flag
type Scheduler struct {
	mu        sync.Mutex
	jobs      map[string]*job
	running   bool
	startedAt *time.Time
	baseCtx   context.Context

	runner    Runner
	intervals Intervals
	clock     clock.WithTicker
	metrics   *telemetry.SchedulerMetrics
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithClock injects the clock that drives job tickers
func WithClock(clk clock.WithTicker) Option {
	return func(s *Scheduler) {
		s.clock = clk
	}
}

// WithIntervals overrides the system job intervals
func WithIntervals(iv Intervals) Option {
	return func(s *Scheduler) {
		s.intervals = iv
	}
}

// WithMetrics records job runs
func WithMetrics(m *telemetry.SchedulerMetrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// New creates a stopped scheduler. runner may be nil for a scheduler that only
// carries ad hoc jobs; Start then registers nothing.
func New(runner Runner, opts ...Option) *Scheduler {
	s := &Scheduler{
		jobs:    make(map[string]*job),
		runner:  runner,
		clock:   clock.RealClock{},
		baseCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// Start registers the system jobs and marks the scheduler running.
// It is a no-op when already running. ctx supplies values, not cancellation,
// to every task run.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Debug("Scheduler already running")
		return
	}
	s.running = true
	now := s.clock.Now()
	s.startedAt = &now
	s.baseCtx = ctx
	s.mu.Unlock()

	if s.runner != nil {
		s.mustAdd(JobHealthCheck, orDefault(s.intervals.HealthCheck, DefaultHealthCheckInterval), s.runner.HealthCheck)
		s.mustAdd(JobFullSync, orDefault(s.intervals.FullSync, DefaultFullSyncInterval), s.runner.FullSync)
		s.mustAdd(JobCleanup, orDefault(s.intervals.Cleanup, DefaultCleanupInterval), s.runner.Cleanup)
	}

	slog.Info("Scheduler started", "jobs", s.Status().Jobs)
}

func (s *Scheduler) mustAdd(name string, interval time.Duration, task Task) {
	if err := s.AddJob(name, interval, task); err != nil {
		// interval and task are always valid for system jobs
		panic(err)
	}
}

// Stop cancels every job timer and clears the job set. Safe to call when not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, j := range s.jobs {
		j.halt()
		delete(s.jobs, name)
	}
	if s.running {
		slog.Info("Scheduler stopped")
	}
	s.running = false
	s.startedAt = nil
}

// AddJob schedules task to run every interval under name. An existing job with
// the same name is stopped first.
func (s *Scheduler) AddJob(name string, interval time.Duration, task Task) error {
	if name == "" {
		return fmt.Errorf("job name is required")
	}
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive, got %s", name, interval)
	}
	if task == nil {
		return fmt.Errorf("job %s: task is required", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[name]; ok {
		existing.halt()
		slog.Debug("Replaced scheduled job", "job", name)
	}

	j := &job{
		name:     name,
		interval: interval,
		task:     task,
		ticker:   s.clock.NewTicker(interval),
		stop:     make(chan struct{}),
	}
	s.jobs[name] = j
	go s.loop(context.WithoutCancel(s.baseCtx), j)

	slog.Debug("Scheduled job", "job", name, "interval", interval)
	return nil
}

// RemoveJob stops and forgets the named job, reporting whether it existed
func (s *Scheduler) RemoveJob(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return false
	}
	j.halt()
	delete(s.jobs, name)
	return true
}

// HasJob reports whether a job with the given name is scheduled
func (s *Scheduler) HasJob(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}

// Status reports the running flag and the scheduled job names
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	st := Status{
		IsRunning: s.running,
		JobCount:  len(names),
		Jobs:      names,
	}
	if s.startedAt != nil {
		t := *s.startedAt
		st.StartedAt = &t
	}
	return st
}

// halt must be called with the scheduler lock held
func (j *job) halt() {
	j.ticker.Stop()
	close(j.stop)
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	for {
		select {
		case <-j.stop:
			return
		case <-j.ticker.C():
			// a tick may race with halt; the stop signal wins
			select {
			case <-j.stop:
				return
			default:
			}
			s.run(ctx, j)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, j *job) {
	start := s.clock.Now()
	success := false

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Scheduled job panicked",
				"job", j.name,
				"panic", r,
				"stack", string(debug.Stack()))
		}
		s.metrics.RecordJobRun(ctx, j.name, s.clock.Since(start), success)
	}()

	slog.Debug("Running scheduled job", "job", j.name)
	if err := j.task(ctx); err != nil {
		slog.Error("Scheduled job failed", "job", j.name, "error", err)
		return
	}
	success = true
}
