// Package cache provides the in-process TTL cache that fronts dashboard reads.
//
// Entries expire lazily on read and are also removed by a background sweep so
// that keys written once and never read again do not accumulate.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/devpulse/devpulse-api/internal/telemetry"
)

const (
	// DefaultTTL is applied when Set is called without a positive TTL
	DefaultTTL = 5 * time.Minute

	// DefaultSweepInterval is how often expired entries are purged
	DefaultSweepInterval = time.Minute
)

// Entry is a single cached value with its bookkeeping timestamps
type Entry struct {
	Value        any
	CreatedAt    time.Time
	ExpiresAt    time.Time
	LastAccessed time.Time
}

func (e *Entry) expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Stats summarizes the cache contents
type Stats struct {
	TotalEntries    int     `json:"totalEntries"`
	ExpiredEntries  int     `json:"expiredEntries"`
	ActiveEntries   int     `json:"activeEntries"`
	ApproximateSize int     `json:"approximateSize"`
	HitRate         float64 `json:"hitRate"`
}

// Cache is a mutex-guarded map of entries with per-entry expiry
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	hits    uint64
	misses  uint64

	clock         clock.WithTicker
	defaultTTL    time.Duration
	sweepInterval time.Duration
	metrics       *telemetry.CacheMetrics

	sweepMu    sync.Mutex
	cancelFunc context.CancelFunc
	done       chan struct{}
}

// Option configures a Cache
type Option func(*Cache)

// WithDefaultTTL overrides the TTL used when Set receives a non-positive TTL
func WithDefaultTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithSweepInterval overrides how often the background sweep runs
func WithSweepInterval(interval time.Duration) Option {
	return func(c *Cache) {
		if interval > 0 {
			c.sweepInterval = interval
		}
	}
}

// WithClock injects the clock used for expiry and for the sweep ticker
func WithClock(clk clock.WithTicker) Option {
	return func(c *Cache) {
		c.clock = clk
	}
}

// WithMetrics attaches OpenTelemetry instruments to the cache
func WithMetrics(m *telemetry.CacheMetrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New creates an empty cache. Call Start to enable the background sweep.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:       make(map[string]*Entry),
		clock:         clock.RealClock{},
		defaultTTL:    DefaultTTL,
		sweepInterval: DefaultSweepInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value stored under key if it exists and has not expired.
// An expired entry found here is removed.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		c.metrics.RecordLookup(context.Background(), false)
		return nil, false
	}
	if entry.expired(now) {
		delete(c.entries, key)
		c.misses++
		c.metrics.RecordLookup(context.Background(), false)
		return nil, false
	}

	entry.LastAccessed = now
	c.hits++
	c.metrics.RecordLookup(context.Background(), true)
	return entry.Value, true
}

// GetAs is Get with a type assertion. A value of the wrong type is reported as absent.
func GetAs[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set stores value under key, replacing any existing entry.
// A non-positive ttl means the cache default.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	c.entries[key] = &Entry{
		Value:        value,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastAccessed: now,
	}
}

// Delete removes a single entry and reports whether it existed
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// DeletePattern removes every key matching pattern and returns how many were removed
func (c *Cache) DeletePattern(pattern *regexp.Regexp) int {
	if pattern == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if pattern.MatchString(key) {
			delete(c.entries, key)
			removed++
		}
	}
	c.metrics.RecordInvalidation(context.Background(), removed)
	return removed
}

// Has reports whether key holds an unexpired entry. Unlike Get it does not
// touch LastAccessed or the hit counters.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	if entry.expired(c.clock.Now()) {
		delete(c.entries, key)
		return false
	}
	return true
}

// Clear drops every entry and resets the hit counters
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of stored entries, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache contents
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.clock.Now()
	stats := Stats{TotalEntries: len(c.entries)}
	for _, entry := range c.entries {
		if entry.expired(now) {
			stats.ExpiredEntries++
		} else {
			stats.ActiveEntries++
		}
		if raw, err := json.Marshal(entry.Value); err == nil {
			stats.ApproximateSize += len(raw)
		}
	}

	if lookups := c.hits + c.misses; lookups > 0 {
		stats.HitRate = float64(c.hits) / float64(lookups)
	}
	return stats
}

// Sweep removes every expired entry and returns how many were removed
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	removed := 0
	for key, entry := range c.entries {
		if entry.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	c.metrics.RecordSweep(context.Background(), removed)
	return removed
}

// Start launches the background sweep. Calling Start on a running cache is a no-op.
func (c *Cache) Start(ctx context.Context) {
	c.sweepMu.Lock()
	defer c.sweepMu.Unlock()

	if c.cancelFunc != nil {
		return
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel
	c.done = make(chan struct{})

	ticker := c.clock.NewTicker(c.sweepInterval)
	go func(done chan struct{}) {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C():
				if removed := c.Sweep(); removed > 0 {
					slog.Debug("Cache sweep removed expired entries", "count", removed)
				}
			}
		}
	}(c.done)

	slog.Debug("Cache sweep started", "interval", c.sweepInterval)
}

// Stop halts the background sweep and waits for it to exit. Safe to call more than once.
func (c *Cache) Stop() {
	c.sweepMu.Lock()
	cancel, done := c.cancelFunc, c.done
	c.cancelFunc, c.done = nil, nil
	c.sweepMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
