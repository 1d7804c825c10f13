// Package postgres implements store.Store on PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devpulse/devpulse-api/internal/store"
)

// Store is a store.Store backed by PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New wraps an existing pool. The store takes ownership and closes it on Close.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const connectionColumns = `user_id, github_id, github_username, access_token,
	coalesce(refresh_token, ''), coalesce(scope, ''), last_sync_at, created_at, updated_at`

func scanConnection(row pgx.Row) (*store.Connection, error) {
	var c store.Connection
	var lastSync pgtype.Timestamptz
	if err := row.Scan(&c.UserID, &c.GitHubID, &c.GitHubUsername, &c.AccessToken,
		&c.RefreshToken, &c.Scope, &lastSync, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if lastSync.Valid {
		t := lastSync.Time.UTC()
		c.LastSyncAt = &t
	}
	return &c, nil
}

func (s *Store) findConnection(ctx context.Context, op, query string, arg string) (*store.Connection, error) {
	conn, err := scanConnection(s.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrConnectionMissing
	}
	if err != nil {
		return nil, store.NewStorageError(op, err)
	}
	return conn, nil
}

// FindConnectionByUser implements store.Store
func (s *Store) FindConnectionByUser(ctx context.Context, userID string) (*store.Connection, error) {
	return s.findConnection(ctx, "find connection",
		`SELECT `+connectionColumns+` FROM github_connections WHERE user_id = $1`, userID)
}

// FindConnectionByUsername implements store.Store
func (s *Store) FindConnectionByUsername(ctx context.Context, username string) (*store.Connection, error) {
	return s.findConnection(ctx, "find connection by username",
		`SELECT `+connectionColumns+` FROM github_connections WHERE lower(github_username) = lower($1) LIMIT 1`, username)
}

// ListConnections implements store.Store
func (s *Store) ListConnections(ctx context.Context) ([]store.Connection, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+connectionColumns+` FROM github_connections ORDER BY user_id`)
	if err != nil {
		return nil, store.NewStorageError("list connections", err)
	}
	defer rows.Close()

	var out []store.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, store.NewStorageError("list connections", err)
		}
		out = append(out, *c)
	}
	return out, store.NewStorageError("list connections", rows.Err())
}

// UpsertConnection implements store.Store
func (s *Store) UpsertConnection(ctx context.Context, c *store.Connection) (*store.Connection, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO github_connections
			(user_id, github_id, github_username, access_token, refresh_token, scope, last_sync_at)
		VALUES ($1, $2, $3, $4, nullif($5, ''), nullif($6, ''), $7)
		ON CONFLICT (user_id) DO UPDATE SET
			github_id = EXCLUDED.github_id,
			github_username = EXCLUDED.github_username,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			scope = EXCLUDED.scope,
			last_sync_at = coalesce(EXCLUDED.last_sync_at, github_connections.last_sync_at),
			updated_at = now()
		RETURNING `+connectionColumns,
		c.UserID, c.GitHubID, c.GitHubUsername, c.AccessToken, c.RefreshToken, c.Scope, c.LastSyncAt)

	out, err := scanConnection(row)
	if err != nil {
		return nil, store.NewStorageError("upsert connection", err)
	}
	return out, nil
}

// UpdateLastSync implements store.Store
func (s *Store) UpdateLastSync(ctx context.Context, userID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE github_connections SET last_sync_at = $2, updated_at = now() WHERE user_id = $1`, userID, at)
	if err != nil {
		return store.NewStorageError("update last sync", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrConnectionMissing
	}
	return nil
}

const repositoryColumns = `user_id, github_id, name, full_name, coalesce(description, ''), url,
	coalesce(language, ''), stars, forks, is_private, updated_at`

func scanRepository(row pgx.Row) (*store.Repository, error) {
	var r store.Repository
	if err := row.Scan(&r.UserID, &r.GitHubID, &r.Name, &r.FullName, &r.Description, &r.URL,
		&r.Language, &r.Stars, &r.Forks, &r.IsPrivate, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertRepository implements store.Store
func (s *Store) UpsertRepository(ctx context.Context, r *store.Repository) (*store.Repository, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO repositories
			(user_id, github_id, name, full_name, description, url, language, stars, forks, is_private, updated_at)
		VALUES ($1, $2, $3, $4, nullif($5, ''), $6, nullif($7, ''), $8, $9, $10, $11)
		ON CONFLICT (user_id, github_id) DO UPDATE SET
			name = EXCLUDED.name,
			full_name = EXCLUDED.full_name,
			description = EXCLUDED.description,
			url = EXCLUDED.url,
			language = EXCLUDED.language,
			stars = EXCLUDED.stars,
			forks = EXCLUDED.forks,
			is_private = EXCLUDED.is_private,
			updated_at = EXCLUDED.updated_at
		RETURNING `+repositoryColumns,
		r.UserID, r.GitHubID, r.Name, r.FullName, r.Description, r.URL, r.Language,
		r.Stars, r.Forks, r.IsPrivate, r.UpdatedAt)

	out, err := scanRepository(row)
	if err != nil {
		return nil, store.NewStorageError("upsert repository", err)
	}
	return out, nil
}

// ListRepositories implements store.Store
func (s *Store) ListRepositories(ctx context.Context, userID string) ([]store.Repository, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+repositoryColumns+` FROM repositories WHERE user_id = $1 ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, store.NewStorageError("list repositories", err)
	}
	defer rows.Close()

	var out []store.Repository
	for rows.Next() {
		r, err := scanRepository(rows)
		if err != nil {
			return nil, store.NewStorageError("list repositories", err)
		}
		out = append(out, *r)
	}
	return out, store.NewStorageError("list repositories", rows.Err())
}

// CreateActivityIfNotExists implements store.Store
func (s *Store) CreateActivityIfNotExists(ctx context.Context, a *store.Activity) (bool, error) {
	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}

	var sha *string
	if a.CommitSHA != "" {
		sha = &a.CommitSHA
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO github_activities
			(id, user_id, type, repository_name, repository_url, commit_sha, message, additions, deletions, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, nullif($7, ''), $8, $9, $10)
		ON CONFLICT (user_id, commit_sha) WHERE commit_sha IS NOT NULL DO NOTHING`,
		id, a.UserID, string(a.Type), a.RepositoryName, a.RepositoryURL, sha, a.Message,
		a.Additions, a.Deletions, a.Timestamp)
	if err != nil {
		return false, store.NewStorageError("create activity", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountActivities implements store.Store
func (s *Store) CountActivities(ctx context.Context, userID string) (map[store.ActivityType]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT type, count(*) FROM github_activities WHERE user_id = $1 GROUP BY type`, userID)
	if err != nil {
		return nil, store.NewStorageError("count activities", err)
	}
	defer rows.Close()

	counts := make(map[store.ActivityType]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, store.NewStorageError("count activities", err)
		}
		counts[store.ActivityType(typ)] = n
	}
	return counts, store.NewStorageError("count activities", rows.Err())
}

// DeleteActivitiesBefore implements store.Store
func (s *Store) DeleteActivitiesBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM github_activities WHERE timestamp < $1`, before)
	if err != nil {
		return 0, store.NewStorageError("delete activities", err)
	}
	return tag.RowsAffected(), nil
}

// RecalculateDailyStats implements store.Store
func (s *Store) RecalculateDailyStats(ctx context.Context, userID string, date time.Time) (*store.DailyStats, error) {
	day := store.Day(date)
	row := s.pool.QueryRow(ctx, `
		INSERT INTO daily_stats (user_id, date, commits, additions, deletions, repositories)
		SELECT $1, $2::date,
			count(*),
			coalesce(sum(additions), 0),
			coalesce(sum(deletions), 0),
			count(DISTINCT repository_name)
		FROM github_activities
		WHERE user_id = $1 AND type = 'commit' AND timestamp >= $3 AND timestamp < $4
		ON CONFLICT (user_id, date) DO UPDATE SET
			commits = EXCLUDED.commits,
			additions = EXCLUDED.additions,
			deletions = EXCLUDED.deletions,
			repositories = EXCLUDED.repositories
		RETURNING commits, additions, deletions, repositories`,
		userID, day, day, day.AddDate(0, 0, 1))

	out := &store.DailyStats{UserID: userID, Date: day}
	if err := row.Scan(&out.Commits, &out.Additions, &out.Deletions, &out.Repositories); err != nil {
		return nil, store.NewStorageError("recalculate daily stats", err)
	}
	return out, nil
}

// ListDailyStats implements store.Store
func (s *Store) ListDailyStats(ctx context.Context, userID string, from, to time.Time) ([]store.DailyStats, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT date, commits, additions, deletions, repositories
		FROM daily_stats
		WHERE user_id = $1 AND date >= $2::date AND date < $3::date
		ORDER BY date`, userID, store.Day(from), store.Day(to))
	if err != nil {
		return nil, store.NewStorageError("list daily stats", err)
	}
	defer rows.Close()

	var out []store.DailyStats
	for rows.Next() {
		st := store.DailyStats{UserID: userID}
		var d pgtype.Date
		if err := rows.Scan(&d, &st.Commits, &st.Additions, &st.Deletions, &st.Repositories); err != nil {
			return nil, store.NewStorageError("list daily stats", err)
		}
		st.Date = store.Day(d.Time)
		out = append(out, st)
	}
	return out, store.NewStorageError("list daily stats", rows.Err())
}

// CountCommits implements store.Store
func (s *Store) CountCommits(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT count(*) FROM github_activities
		WHERE user_id = $1 AND type = 'commit' AND timestamp >= $2 AND timestamp < $3`,
		userID, from, to).Scan(&n)
	if err != nil {
		return 0, store.NewStorageError("count commits", err)
	}
	return n, nil
}

// Ping implements store.Store
func (s *Store) Ping(ctx context.Context) error {
	return store.NewStorageError("ping", s.pool.Ping(ctx))
}

// Close implements store.Store
func (s *Store) Close() {
	s.pool.Close()
}
