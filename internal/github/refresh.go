package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gh "github.com/google/go-github/v57/github"
	"k8s.io/utils/clock"

	"github.com/devpulse/devpulse-api/internal/store"
)

const pushEventType = "PushEvent"

// RefreshResult counts what one refresh persisted. On failure it reflects the
// items processed before the error.
type RefreshResult struct {
	Repositories int
	Activities   int
	SyncedAt     time.Time
}

// Refresher pulls a user's repositories and push activity from GitHub into the store
type Refresher struct {
	store     store.Store
	newClient ClientFactory
	clock     clock.PassiveClock
}

// RefresherOption configures a Refresher
type RefresherOption func(*Refresher)

// WithRefreshClock overrides the clock used for SyncedAt and LastSyncAt
func WithRefreshClock(clk clock.PassiveClock) RefresherOption {
	return func(r *Refresher) {
		r.clock = clk
	}
}

// NewRefresher creates a Refresher over the given store and client factory
func NewRefresher(s store.Store, factory ClientFactory, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		store:     s,
		newClient: factory,
		clock:     clock.RealClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SyncUserData performs one full refresh for userID. Nothing is rolled back on
// failure: upserted repositories and created activities stay, and the returned
// counts describe them. Daily stats of every day that received a new commit are
// recalculated even when a later commit fails. LastSyncAt is only advanced when
// every step succeeds.
func (r *Refresher) SyncUserData(ctx context.Context, userID string) (RefreshResult, error) {
	result := RefreshResult{SyncedAt: r.clock.Now().UTC()}

	conn, err := r.store.FindConnectionByUser(ctx, userID)
	if err != nil {
		return result, err
	}

	client, err := r.newClient(conn.AccessToken)
	if err != nil {
		return result, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	user, err := client.GetUser(ctx)
	if err != nil {
		return result, err
	}

	repos, err := client.GetRepositories(ctx, 1, MaxPerPage)
	if err != nil {
		return result, err
	}

	for _, repo := range repos {
		if _, err := r.store.UpsertRepository(ctx, repositoryFromGitHub(userID, repo)); err != nil {
			return result, store.NewStorageError("upsert repository", err)
		}
		result.Repositories++
	}

	// repositories stay upserted when the events call fails
	events, err := client.GetEvents(ctx, user.GetLogin(), 1)
	if err != nil {
		return result, err
	}

	dates := make(map[time.Time]struct{})
	for _, event := range events {
		if event.GetType() != pushEventType {
			continue
		}
		payload, err := event.ParsePayload()
		if err != nil {
			slog.Warn("Skipping unparseable push event", "user_id", userID, "event_id", event.GetID(), "error", err)
			continue
		}
		push, ok := payload.(*gh.PushEvent)
		if !ok {
			continue
		}

		repoName := event.GetRepo().GetName()
		created, err := r.recordCommits(ctx, userID, repoName, push.Commits, event.GetCreatedAt().Time, dates)
		result.Activities += created
		if err != nil {
			return result, err
		}
	}

	if err := r.recalculate(ctx, userID, dates); err != nil {
		return result, err
	}

	if err := r.store.UpdateLastSync(ctx, userID, result.SyncedAt); err != nil {
		return result, store.NewStorageError("update last sync", err)
	}

	slog.Info("User data synced",
		"user_id", userID,
		"repositories", result.Repositories,
		"activities", result.Activities)
	return result, nil
}

// RecordPushCommits stores commits delivered outside a refresh, such as by a
// push webhook, and recalculates daily stats for each day they touch.
// fallback stamps commits that carry no timestamp of their own.
func (r *Refresher) RecordPushCommits(
	ctx context.Context, userID, repoFullName string, commits []*gh.HeadCommit, fallback time.Time,
) (int, error) {
	dates := make(map[time.Time]struct{})
	created, err := r.recordCommits(ctx, userID, repoFullName, commits, fallback, dates)
	if err != nil {
		return created, err
	}
	return created, r.recalculate(ctx, userID, dates)
}

func (r *Refresher) recordCommits(
	ctx context.Context, userID, repoFullName string, commits []*gh.HeadCommit,
	fallback time.Time, dates map[time.Time]struct{},
) (int, error) {
	created := 0
	for _, c := range commits {
		sha := c.GetSHA()
		if sha == "" {
			sha = c.GetID()
		}
		if sha == "" {
			continue
		}

		ts := c.GetTimestamp().Time
		if ts.IsZero() {
			ts = fallback
		}

		ok, err := r.store.CreateActivityIfNotExists(ctx, &store.Activity{
			UserID:         userID,
			Type:           store.ActivityCommit,
			RepositoryName: repoFullName,
			RepositoryURL:  "https://github.com/" + repoFullName,
			CommitSHA:      sha,
			Message:        c.GetMessage(),
			Timestamp:      ts.UTC(),
		})
		if err != nil {
			// rebuild the days touched so far; a retry skips their commits as duplicates
			err = store.NewStorageError("create activity", err)
			if rerr := r.recalculate(ctx, userID, dates); rerr != nil {
				err = errors.Join(err, rerr)
			}
			return created, err
		}
		if ok {
			created++
			dates[store.Day(ts)] = struct{}{}
		}
	}
	return created, nil
}

func (r *Refresher) recalculate(ctx context.Context, userID string, dates map[time.Time]struct{}) error {
	for day := range dates {
		if _, err := r.store.RecalculateDailyStats(ctx, userID, day); err != nil {
			return store.NewStorageError("recalculate daily stats", err)
		}
	}
	return nil
}

func repositoryFromGitHub(userID string, repo *gh.Repository) *store.Repository {
	return &store.Repository{
		UserID:      userID,
		GitHubID:    repo.GetID(),
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		Description: repo.GetDescription(),
		URL:         repo.GetHTMLURL(),
		Language:    repo.GetLanguage(),
		Stars:       repo.GetStargazersCount(),
		Forks:       repo.GetForksCount(),
		IsPrivate:   repo.GetPrivate(),
		UpdatedAt:   repo.GetUpdatedAt().Time.UTC(),
	}
}
