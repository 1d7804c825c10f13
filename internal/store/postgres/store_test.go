package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpulse/devpulse-api/database"
	"github.com/devpulse/devpulse-api/internal/store"
)

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool, cleanup := database.SetupTestDBContainer(t, ctx)
	t.Cleanup(cleanup)

	s := New(pool)
	require.NoError(t, s.Ping(ctx))

	day := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	t.Run("connections", func(t *testing.T) {
		_, err := s.FindConnectionByUser(ctx, "u1")
		require.ErrorIs(t, err, store.ErrConnectionMissing)

		_, err = s.UpsertConnection(ctx, &store.Connection{
			UserID: "u1", GitHubID: 7, GitHubUsername: "Octocat", AccessToken: "tok",
		})
		require.NoError(t, err)

		conn, err := s.FindConnectionByUsername(ctx, "octocat")
		require.NoError(t, err)
		assert.Equal(t, "u1", conn.UserID)
		assert.Equal(t, "tok", conn.AccessToken)
		assert.Nil(t, conn.LastSyncAt)

		require.NoError(t, s.UpdateLastSync(ctx, "u1", day))
		conn, err = s.FindConnectionByUser(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, conn.LastSyncAt)
		assert.True(t, day.Equal(*conn.LastSyncAt))

		assert.ErrorIs(t, s.UpdateLastSync(ctx, "ghost", day), store.ErrConnectionMissing)

		conns, err := s.ListConnections(ctx)
		require.NoError(t, err)
		assert.Len(t, conns, 1)
	})

	t.Run("repositories", func(t *testing.T) {
		repo := &store.Repository{UserID: "u1", GitHubID: 1, Name: "r", FullName: "o/r", URL: "https://x", Stars: 1, UpdatedAt: day}
		_, err := s.UpsertRepository(ctx, repo)
		require.NoError(t, err)

		repo.Stars = 9
		got, err := s.UpsertRepository(ctx, repo)
		require.NoError(t, err)
		assert.Equal(t, 9, got.Stars)

		repos, err := s.ListRepositories(ctx, "u1")
		require.NoError(t, err)
		assert.Len(t, repos, 1)
	})

	t.Run("activities and stats", func(t *testing.T) {
		a := &store.Activity{
			UserID: "u1", Type: store.ActivityCommit, RepositoryName: "o/r", RepositoryURL: "https://x",
			CommitSHA: "abc", Message: "m", Additions: 3, Deletions: 1, Timestamp: day,
		}
		created, err := s.CreateActivityIfNotExists(ctx, a)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = s.CreateActivityIfNotExists(ctx, a)
		require.NoError(t, err)
		assert.False(t, created)

		b := *a
		b.CommitSHA = "def"
		b.Timestamp = day.Add(time.Hour)
		_, err = s.CreateActivityIfNotExists(ctx, &b)
		require.NoError(t, err)

		stats, err := s.RecalculateDailyStats(ctx, "u1", day)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.Commits)
		assert.Equal(t, 6, stats.Additions)
		assert.Equal(t, 1, stats.Repositories)

		list, err := s.ListDailyStats(ctx, "u1", day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, store.Day(day), list[0].Date)

		n, err := s.CountCommits(ctx, "u1", store.Day(day), store.Day(day).AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		counts, err := s.CountActivities(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, counts[store.ActivityCommit])

		removed, err := s.DeleteActivitiesBefore(ctx, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, int64(2), removed)
	})
}
