package store

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type repoKey struct {
	userID   string
	githubID int64
}

type commitKey struct {
	userID string
	sha    string
}

type statsKey struct {
	userID string
	day    time.Time
}

// MemoryStore keeps everything in process memory. It is used for local runs and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	connections  map[string]*Connection
	repositories map[repoKey]*Repository
	activities   []*Activity
	commits      map[commitKey]struct{}
	stats        map[statsKey]*DailyStats
	now          func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		connections:  make(map[string]*Connection),
		repositories: make(map[repoKey]*Repository),
		commits:      make(map[commitKey]struct{}),
		stats:        make(map[statsKey]*DailyStats),
		now:          time.Now,
	}
}

// FindConnectionByUser implements Store
func (s *MemoryStore) FindConnectionByUser(_ context.Context, userID string) (*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.connections[userID]
	if !ok {
		return nil, ErrConnectionMissing
	}
	cp := *conn
	return &cp, nil
}

// FindConnectionByUsername implements Store
func (s *MemoryStore) FindConnectionByUsername(_ context.Context, username string) (*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conn := range s.connections {
		if strings.EqualFold(conn.GitHubUsername, username) {
			cp := *conn
			return &cp, nil
		}
	}
	return nil, ErrConnectionMissing
}

// ListConnections implements Store
func (s *MemoryStore) ListConnections(_ context.Context) ([]Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Connection, 0, len(s.connections))
	for _, conn := range s.connections {
		out = append(out, *conn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// UpsertConnection implements Store
func (s *MemoryStore) UpsertConnection(_ context.Context, conn *Connection) (*Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cp := *conn
	if existing, ok := s.connections[conn.UserID]; ok {
		cp.CreatedAt = existing.CreatedAt
		if cp.LastSyncAt == nil {
			cp.LastSyncAt = existing.LastSyncAt
		}
	} else {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	s.connections[conn.UserID] = &cp

	out := cp
	return &out, nil
}

// UpdateLastSync implements Store
func (s *MemoryStore) UpdateLastSync(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connections[userID]
	if !ok {
		return ErrConnectionMissing
	}
	at = at.UTC()
	conn.LastSyncAt = &at
	conn.UpdatedAt = s.now()
	return nil
}

// UpsertRepository implements Store
func (s *MemoryStore) UpsertRepository(_ context.Context, repo *Repository) (*Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *repo
	s.repositories[repoKey{repo.UserID, repo.GitHubID}] = &cp

	out := cp
	return &out, nil
}

// ListRepositories implements Store
func (s *MemoryStore) ListRepositories(_ context.Context, userID string) ([]Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Repository
	for k, repo := range s.repositories {
		if k.userID == userID {
			out = append(out, *repo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// CreateActivityIfNotExists implements Store
func (s *MemoryStore) CreateActivityIfNotExists(_ context.Context, activity *Activity) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if activity.CommitSHA != "" {
		key := commitKey{activity.UserID, activity.CommitSHA}
		if _, exists := s.commits[key]; exists {
			return false, nil
		}
		s.commits[key] = struct{}{}
	}

	cp := *activity
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	s.activities = append(s.activities, &cp)
	return true, nil
}

// CountActivities implements Store
func (s *MemoryStore) CountActivities(_ context.Context, userID string) (map[ActivityType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[ActivityType]int)
	for _, a := range s.activities {
		if a.UserID == userID {
			counts[a.Type]++
		}
	}
	return counts, nil
}

// DeleteActivitiesBefore implements Store
func (s *MemoryStore) DeleteActivitiesBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	s.activities = slices.DeleteFunc(s.activities, func(a *Activity) bool {
		if a.Timestamp.Before(before) {
			delete(s.commits, commitKey{a.UserID, a.CommitSHA})
			removed++
			return true
		}
		return false
	})
	return removed, nil
}

// RecalculateDailyStats implements Store
func (s *MemoryStore) RecalculateDailyStats(_ context.Context, userID string, date time.Time) (*DailyStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := Day(date)
	next := day.AddDate(0, 0, 1)
	stats := &DailyStats{UserID: userID, Date: day}
	repos := make(map[string]struct{})

	for _, a := range s.activities {
		if a.UserID != userID || a.Type != ActivityCommit {
			continue
		}
		ts := a.Timestamp.UTC()
		if ts.Before(day) || !ts.Before(next) {
			continue
		}
		stats.Commits++
		stats.Additions += a.Additions
		stats.Deletions += a.Deletions
		repos[a.RepositoryName] = struct{}{}
	}
	stats.Repositories = len(repos)

	s.stats[statsKey{userID, day}] = stats
	out := *stats
	return &out, nil
}

// ListDailyStats implements Store
func (s *MemoryStore) ListDailyStats(_ context.Context, userID string, from, to time.Time) ([]DailyStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []DailyStats
	for k, st := range s.stats {
		if k.userID != userID || k.day.Before(from) || !k.day.Before(to) {
			continue
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// CountCommits implements Store
func (s *MemoryStore) CountCommits(_ context.Context, userID string, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.activities {
		if a.UserID == userID && a.Type == ActivityCommit &&
			!a.Timestamp.Before(from) && a.Timestamp.Before(to) {
			n++
		}
	}
	return n, nil
}

// Ping implements Store
func (*MemoryStore) Ping(context.Context) error { return nil }

// Close implements Store
func (*MemoryStore) Close() {}
