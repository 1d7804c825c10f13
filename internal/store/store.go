// Package store defines the persistence contract used by the sync engine and
// the dashboard, together with an in-memory implementation.
// A PostgreSQL implementation lives in the postgres subpackage.
package store

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

import (
	"context"
	"time"
)

// ActivityType classifies a recorded activity
type ActivityType string

// Activity types
const (
	ActivityCommit      ActivityType = "commit"
	ActivityPullRequest ActivityType = "pull_request"
	ActivityIssue       ActivityType = "issue"
	ActivityRelease     ActivityType = "release"
)

// Connection links a dashboard user to a GitHub account
type Connection struct {
	UserID         string     `json:"userId"`
	GitHubID       int64      `json:"githubId"`
	GitHubUsername string     `json:"githubUsername"`
	AccessToken    string     `json:"-"`
	RefreshToken   string     `json:"-"`
	Scope          string     `json:"scope,omitempty"`
	LastSyncAt     *time.Time `json:"lastSyncAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Repository is a GitHub repository owned or accessible by a user
type Repository struct {
	UserID      string    `json:"userId"`
	GitHubID    int64     `json:"githubId"`
	Name        string    `json:"name"`
	FullName    string    `json:"fullName"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Language    string    `json:"language,omitempty"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	IsPrivate   bool      `json:"isPrivate"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Activity is one recorded contribution
type Activity struct {
	ID             string       `json:"id"`
	UserID         string       `json:"userId"`
	Type           ActivityType `json:"type"`
	RepositoryName string       `json:"repositoryName"`
	RepositoryURL  string       `json:"repositoryUrl"`
	CommitSHA      string       `json:"commitSha,omitempty"`
	Message        string       `json:"message,omitempty"`
	Additions      int          `json:"additions"`
	Deletions      int          `json:"deletions"`
	Timestamp      time.Time    `json:"timestamp"`
}

// DailyStats aggregates one user's commits for a calendar day (UTC)
type DailyStats struct {
	UserID       string    `json:"userId"`
	Date         time.Time `json:"date"`
	Commits      int       `json:"commits"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	Repositories int       `json:"repositories"`
}

// Store is the persistence contract consumed by sync and dashboard code
type Store interface {
	// FindConnectionByUser returns ErrConnectionMissing when the user has no connection
	FindConnectionByUser(ctx context.Context, userID string) (*Connection, error)
	// FindConnectionByUsername looks a connection up by GitHub login, case-insensitively
	FindConnectionByUsername(ctx context.Context, username string) (*Connection, error)
	ListConnections(ctx context.Context) ([]Connection, error)
	UpsertConnection(ctx context.Context, conn *Connection) (*Connection, error)
	UpdateLastSync(ctx context.Context, userID string, at time.Time) error

	UpsertRepository(ctx context.Context, repo *Repository) (*Repository, error)
	ListRepositories(ctx context.Context, userID string) ([]Repository, error)

	// CreateActivityIfNotExists reports created=false when a commit with the
	// same SHA is already recorded for the user
	CreateActivityIfNotExists(ctx context.Context, activity *Activity) (created bool, err error)
	CountActivities(ctx context.Context, userID string) (map[ActivityType]int, error)
	DeleteActivitiesBefore(ctx context.Context, before time.Time) (int64, error)

	// RecalculateDailyStats rebuilds the stats row for the UTC day containing date
	RecalculateDailyStats(ctx context.Context, userID string, date time.Time) (*DailyStats, error)
	// ListDailyStats returns stats with from <= date < to, ordered by date
	ListDailyStats(ctx context.Context, userID string, from, to time.Time) ([]DailyStats, error)
	// CountCommits sums commits with from <= timestamp < to
	CountCommits(ctx context.Context, userID string, from, to time.Time) (int, error)

	Ping(ctx context.Context) error
	Close()
}

// Day truncates t to midnight UTC
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
