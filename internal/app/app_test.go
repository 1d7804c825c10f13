package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/devpulse/devpulse-api/internal/scheduler"
)

// createTestApp builds an app on memory storage served from a fresh listener
func createTestApp(t *testing.T, ctrl *gomock.Controller) (*DashboardApp, string) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	app, err := NewDashboardApp(context.Background(),
		WithConfig(createValidTestConfig()),
		WithListener(listener),
		WithStorageFactory(newMemoryFactory(t, ctrl)),
	)
	require.NoError(t, err)

	return app, "http://" + listener.Addr().String()
}

func waitForServer(t *testing.T, baseURL string) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get(baseURL + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond, "server did not become healthy")
}

func startApp(t *testing.T, app *DashboardApp) <-chan error {
	t.Helper()
	errChan := make(chan error, 1)
	go func() {
		errChan <- app.Start()
	}()
	return errChan
}

func waitForStart(t *testing.T, errChan <-chan error) {
	t.Helper()
	select {
	case startErr := <-errChan:
		require.NoError(t, startErr)
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
}

func TestDashboardApp_StartWithListener(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, baseURL := createTestApp(t, ctrl)

	errChan := startApp(t, app)
	waitForServer(t, baseURL)

	// Scheduler jobs are registered on start
	resp, err := http.Get(baseURL + "/api/v1/scheduler/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		System        scheduler.Status `json:"system"`
		PeriodicSyncs []string         `json:"periodicSyncs"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.System.IsRunning)
	assert.Equal(t, 3, body.System.JobCount)
	assert.Empty(t, body.PeriodicSyncs)

	require.NoError(t, app.Stop(5*time.Second))
	waitForStart(t, errChan)

	assert.False(t, app.Components().Scheduler.Status().IsRunning)
}

func TestDashboardApp_StartOnAddress(t *testing.T) {
	t.Parallel()

	// Reserve a port, then release it for the server to bind
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctrl := gomock.NewController(t)
	app, err := NewDashboardApp(context.Background(),
		WithConfig(createValidTestConfig()),
		WithAddress(addr),
		WithStorageFactory(newMemoryFactory(t, ctrl)),
	)
	require.NoError(t, err)

	errChan := startApp(t, app)
	waitForServer(t, "http://"+addr)

	require.NoError(t, app.Stop(5*time.Second))
	waitForStart(t, errChan)
}

func TestDashboardApp_Stop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		timeout time.Duration
		start   bool
	}{
		{name: "stop running app", timeout: 5 * time.Second, start: true},
		{name: "stop with short timeout", timeout: 100 * time.Millisecond, start: true},
		{name: "stop app that never started", timeout: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctrl := gomock.NewController(t)
			app, baseURL := createTestApp(t, ctrl)

			var errChan <-chan error
			if tt.start {
				errChan = startApp(t, app)
				waitForServer(t, baseURL)
			}

			require.NoError(t, app.Stop(tt.timeout))
			if tt.start {
				waitForStart(t, errChan)
			}

			select {
			case <-app.ctx.Done():
			default:
				t.Fatal("app context should be cancelled after Stop()")
			}
		})
	}
}

func TestDashboardApp_StopIdempotent(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, baseURL := createTestApp(t, ctrl)

	errChan := startApp(t, app)
	waitForServer(t, baseURL)

	require.NoError(t, app.Stop(5*time.Second))
	waitForStart(t, errChan)
	require.NoError(t, app.Stop(5*time.Second))
}

func TestDashboardApp_StopWithNilCancelFunc(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, _ := createTestApp(t, ctrl)
	app.cancelFunc = nil

	assert.NotPanics(t, func() {
		require.NoError(t, app.Stop(time.Second))
	})
}

func TestDashboardApp_GetConfig(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, _ := createTestApp(t, ctrl)
	t.Cleanup(func() { _ = app.Stop(time.Second) })

	cfg := app.GetConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, createValidTestConfig().Sync.MaxRetries, cfg.Sync.MaxRetries)
}

func TestDashboardApp_GetHTTPServer(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	app, baseURL := createTestApp(t, ctrl)
	t.Cleanup(func() { _ = app.Stop(time.Second) })

	server := app.GetHTTPServer()
	require.NotNil(t, server)
	assert.Equal(t, baseURL, fmt.Sprintf("http://%s", server.Addr))
}

func TestDashboardApp_StartError_AddressInUse(t *testing.T) {
	t.Parallel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	ctrl := gomock.NewController(t)
	app, err := NewDashboardApp(context.Background(),
		WithConfig(createValidTestConfig()),
		WithAddress(listener.Addr().String()),
		WithStorageFactory(newMemoryFactory(t, ctrl)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Stop(time.Second) })

	err = app.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server failed")
}
