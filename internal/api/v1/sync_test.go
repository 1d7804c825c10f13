package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/devpulse/devpulse-api/internal/store"
	pkgsync "github.com/devpulse/devpulse-api/internal/sync"
	"github.com/devpulse/devpulse-api/internal/sync/mocks"
)

var syncedAt = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func serveSync(t *testing.T, svc pkgsync.Service, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	SyncRouter(svc).ServeHTTP(rec, req)
	return rec
}

func TestTriggerSync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		result      pkgsync.Result
		wantStatus  int
		wantSuccess bool
		wantMessage string
	}{
		{
			name: "synced",
			result: pkgsync.Result{
				Success: true, SyncedActivities: 12, SyncedRepos: 3, SyncedAt: syncedAt, Attempt: 1,
			},
			wantStatus:  http.StatusOK,
			wantSuccess: true,
			wantMessage: "Synced 12 activities and 3 repositories",
		},
		{
			name:        "no connection",
			result:      pkgsync.Result{Error: store.ErrConnectionMissing.Error(), SyncedAt: syncedAt, Attempt: 1},
			wantStatus:  http.StatusNotFound,
			wantMessage: store.ErrConnectionMissing.Error(),
		},
		{
			name:        "upstream failure after retries",
			result:      pkgsync.Result{Error: "rate limit exceeded", SyncedAt: syncedAt, Attempt: 3},
			wantStatus:  http.StatusBadGateway,
			wantMessage: "rate limit exceeded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockService(ctrl)
			svc.EXPECT().SyncUserData(gomock.Any(), "u1", 0).Return(tt.result)

			rec := serveSync(t, svc, http.MethodPost, "/u1", "")
			require.Equal(t, tt.wantStatus, rec.Code)

			var resp TriggerSyncResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, "u1", resp.UserID)
			assert.Equal(t, tt.result.SyncedActivities, resp.SyncedActivities)
			assert.True(t, syncedAt.Equal(resp.SyncedAt))
		})
	}
}

func TestStartPeriodicSync(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		body         string
		wantInterval time.Duration
		wantStatus   int
		wantMessage  string
	}{
		{
			name:         "default interval",
			wantInterval: 15 * time.Minute,
			wantStatus:   http.StatusOK,
			wantMessage:  "Periodic sync started (every 15 minutes)",
		},
		{
			name:         "custom interval",
			body:         `{"intervalMinutes": 60}`,
			wantInterval: time.Hour,
			wantStatus:   http.StatusOK,
			wantMessage:  "Periodic sync started (every 60 minutes)",
		},
		{
			name:        "interval too short",
			body:        `{"intervalMinutes": 1}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "intervalMinutes must be between 5 and 1440",
		},
		{
			name:        "interval too long",
			body:        `{"intervalMinutes": 1441}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "intervalMinutes must be between 5 and 1440",
		},
		{
			name:        "unknown field",
			body:        `{"interval": 10}`,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid request body",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockService(ctrl)
			if tt.wantStatus == http.StatusOK {
				svc.EXPECT().StartPeriodicSync(gomock.Any(), "u1", tt.wantInterval).Return(nil)
			}

			rec := serveSync(t, svc, http.MethodPost, "/u1/periodic", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMessage)
		})
	}
}

func TestStartPeriodicSyncFailure(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().StartPeriodicSync(gomock.Any(), "u1", 15*time.Minute).Return(errors.New("scheduler stopped"))

	rec := serveSync(t, svc, http.MethodPost, "/u1/periodic", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStopPeriodicSync(t *testing.T) {
	t.Parallel()

	for running, want := range map[bool]string{
		true:  "Periodic sync stopped",
		false: "No periodic sync was running",
	} {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockService(ctrl)
		svc.EXPECT().StopPeriodicSync("u1").Return(running)

		rec := serveSync(t, svc, http.MethodDelete, "/u1/periodic", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp PeriodicSyncResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, want, resp.Message)
		assert.True(t, resp.Success)
	}
}

func TestUserStatusAndStats(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().UserStatus(gomock.Any(), "u1").Return(pkgsync.UserStatus{
		UserID: "u1", Connected: true, GitHubUsername: "octo", LastSyncAt: &syncedAt, PeriodicSyncActive: true,
	}, nil)
	svc.EXPECT().UserStats(gomock.Any(), "u1").Return(pkgsync.UserStats{
		UserID: "u1", TotalActivities: 7, ByType: map[store.ActivityType]int{store.ActivityCommit: 7}, Repositories: 2,
	}, nil)
	svc.EXPECT().UserStatus(gomock.Any(), "u2").Return(pkgsync.UserStatus{}, errors.New("boom"))

	rec := serveSync(t, svc, http.MethodGet, "/u1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status pkgsync.UserStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.True(t, status.Connected)
	assert.Equal(t, "octo", status.GitHubUsername)
	assert.True(t, status.PeriodicSyncActive)

	rec = serveSync(t, svc, http.MethodGet, "/u1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats pkgsync.UserStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 7, stats.TotalActivities)
	assert.Equal(t, 2, stats.Repositories)

	rec = serveSync(t, svc, http.MethodGet, "/u2/status", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSyncAll(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	svc.EXPECT().SyncAllUsers(gomock.Any()).Return(pkgsync.Summary{
		TotalUsers:      3,
		SuccessfulSyncs: 2,
		FailedSyncs:     1,
		Errors:          []pkgsync.UserError{{UserID: "u3", Error: "rate limit exceeded"}},
	}, nil)
	svc.EXPECT().SyncAllUsers(gomock.Any()).Return(pkgsync.Summary{}, errors.New("store down"))

	rec := serveSync(t, svc, http.MethodPost, "/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp SyncAllResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Synced 2/3 users", resp.Message)
	require.Len(t, resp.Summary.Errors, 1)
	assert.Equal(t, "u3", resp.Summary.Errors[0].UserID)

	rec = serveSync(t, svc, http.MethodPost, "/all", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
