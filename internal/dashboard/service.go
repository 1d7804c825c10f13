// Package dashboard serves the derived dashboard reads, each cached per user
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"k8s.io/utils/clock"

	"github.com/devpulse/devpulse-api/internal/cache"
	"github.com/devpulse/devpulse-api/internal/store"
)

var (
	// ErrInvalidRange is returned for a time range other than week, month or year
	ErrInvalidRange = errors.New("invalid time range")
	// ErrInvalidYear is returned for a calendar year outside the supported window
	ErrInvalidYear = errors.New("invalid year")
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go Service

// Service defines the dashboard read operations
type Service interface {
	// Metrics returns commit counters and the change against the previous period
	Metrics(ctx context.Context, userID string, r Range) (*Metrics, error)

	// Trend returns one point per day of the range, oldest first
	Trend(ctx context.Context, userID string, r Range) ([]TrendPoint, error)

	// Calendar returns one cell per day of the year
	Calendar(ctx context.Context, userID string, year int) ([]CalendarDay, error)
}

// Range selects the window of a dashboard read
type Range string

// Supported ranges
const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeYear  Range = "year"
)

// ParseRange validates s. An empty string selects a week.
func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case "":
		return RangeWeek, nil
	case RangeWeek, RangeMonth, RangeYear:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRange, s)
	}
}

// Days is the number of days the range covers
func (r Range) Days() int {
	switch r {
	case RangeMonth:
		return 30
	case RangeYear:
		return 365
	default:
		return 7
	}
}

// Trend directions
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Metrics is the headline block of the dashboard
type Metrics struct {
	UserID           string  `json:"userId"`
	TimeRange        Range   `json:"timeRange"`
	TodayCommits     int     `json:"todayCommits"`
	WeeklyCommits    int     `json:"weeklyCommits"`
	MonthlyCommits   int     `json:"monthlyCommits"`
	PeriodCommits    int     `json:"periodCommits"`
	PreviousCommits  int     `json:"previousCommits"`
	PercentageChange float64 `json:"percentageChange"`
	Trend            string  `json:"trend"`
}

// TrendPoint is one day of the trend chart
type TrendPoint struct {
	Date      string `json:"date"`
	Commits   int    `json:"commits"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// CalendarDay is one cell of the contribution calendar
type CalendarDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

const dateLayout = "2006-01-02"

// service is the default Service backed by the store and the cache
type service struct {
	store store.Store
	cache *cache.Cache
	clock clock.PassiveClock
}

var _ Service = (*service)(nil)

// Option configures the dashboard service
type Option func(*service)

// WithClock overrides the clock that decides what "today" is
func WithClock(clk clock.PassiveClock) Option {
	return func(s *service) {
		s.clock = clk
	}
}

// New creates the dashboard service
func New(s store.Store, c *cache.Cache, opts ...Option) Service {
	svc := &service{
		store: s,
		cache: c,
		clock: clock.RealClock{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// cached returns the value under key or computes and stores it
func cached[T any](c *cache.Cache, key string, ttl time.Duration, compute func() (T, error)) (T, error) {
	if v, ok := cache.GetAs[T](c, key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.Set(key, v, ttl)
	return v, nil
}

// Metrics implements Service
func (s *service) Metrics(ctx context.Context, userID string, r Range) (*Metrics, error) {
	key := cache.DashboardKey(userID, cache.EndpointMetrics, string(r))
	return cached(s.cache, key, cache.TTLMedium, func() (*Metrics, error) {
		return s.computeMetrics(ctx, userID, r)
	})
}

func (s *service) computeMetrics(ctx context.Context, userID string, r Range) (*Metrics, error) {
	today := store.Day(s.clock.Now())
	tomorrow := today.AddDate(0, 0, 1)

	count := func(days int, offset int) (int, error) {
		to := tomorrow.AddDate(0, 0, -offset)
		from := to.AddDate(0, 0, -days)
		n, err := s.store.CountCommits(ctx, userID, from, to)
		if err != nil {
			return 0, fmt.Errorf("failed to count commits: %w", err)
		}
		return n, nil
	}

	m := &Metrics{UserID: userID, TimeRange: r}
	var err error
	if m.TodayCommits, err = count(1, 0); err != nil {
		return nil, err
	}
	if m.WeeklyCommits, err = count(7, 0); err != nil {
		return nil, err
	}
	if m.MonthlyCommits, err = count(30, 0); err != nil {
		return nil, err
	}
	days := r.Days()
	if m.PeriodCommits, err = count(days, 0); err != nil {
		return nil, err
	}
	if m.PreviousCommits, err = count(days, days); err != nil {
		return nil, err
	}

	m.PercentageChange = PercentageChange(m.PreviousCommits, m.PeriodCommits)
	m.Trend = TrendOf(m.PercentageChange)

	slog.Debug("Computed dashboard metrics", "user_id", userID, "range", r, "period_commits", m.PeriodCommits)
	return m, nil
}

// PercentageChange is the change from previous to current in percent, rounded
// to two decimals. Growth from zero counts as 100.
func PercentageChange(previous, current int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	change := float64(current-previous) / float64(previous) * 100
	return math.Round(change*100) / 100
}

// TrendOf maps a percentage change to a direction
func TrendOf(change float64) string {
	switch {
	case change > 0:
		return TrendUp
	case change < 0:
		return TrendDown
	default:
		return TrendStable
	}
}

// Trend implements Service
func (s *service) Trend(ctx context.Context, userID string, r Range) ([]TrendPoint, error) {
	key := cache.DashboardKey(userID, cache.EndpointTrend, string(r))
	return cached(s.cache, key, cache.TTLLong, func() ([]TrendPoint, error) {
		days := r.Days()
		to := store.Day(s.clock.Now()).AddDate(0, 0, 1)
		from := to.AddDate(0, 0, -days)

		stats, err := s.store.ListDailyStats(ctx, userID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to list daily stats: %w", err)
		}
		byDate := indexByDate(stats)

		points := make([]TrendPoint, 0, days)
		for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
			date := d.Format(dateLayout)
			st := byDate[date]
			points = append(points, TrendPoint{
				Date:      date,
				Commits:   st.Commits,
				Additions: st.Additions,
				Deletions: st.Deletions,
			})
		}
		return points, nil
	})
}

// Calendar implements Service
func (s *service) Calendar(ctx context.Context, userID string, year int) ([]CalendarDay, error) {
	if year < 2008 || year > s.clock.Now().UTC().Year()+1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	key := cache.DashboardKey(userID, cache.EndpointCalendar, year)
	return cached(s.cache, key, cache.TTLLong, func() ([]CalendarDay, error) {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)

		stats, err := s.store.ListDailyStats(ctx, userID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to list daily stats: %w", err)
		}
		byDate := indexByDate(stats)

		days := make([]CalendarDay, 0, 366)
		for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
			date := d.Format(dateLayout)
			n := byDate[date].Commits
			days = append(days, CalendarDay{Date: date, Count: n, Level: Level(n)})
		}
		return days, nil
	})
}

// Level buckets a daily commit count into the five calendar shades
func Level(count int) int {
	switch {
	case count <= 0:
		return 0
	case count >= 10:
		return 4
	case count >= 7:
		return 3
	case count >= 4:
		return 2
	default:
		return 1
	}
}

func indexByDate(stats []store.DailyStats) map[string]store.DailyStats {
	out := make(map[string]store.DailyStats, len(stats))
	for _, st := range stats {
		out[st.Date.UTC().Format(dateLayout)] = st
	}
	return out
}
