package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"

	"github.com/devpulse/devpulse-api/internal/app/storage/mocks"
	"github.com/devpulse/devpulse-api/internal/config"
	"github.com/devpulse/devpulse-api/internal/store"
)

// createValidTestConfig creates a minimal valid config for testing
func createValidTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Storage.Type = config.StorageTypeMemory
	return cfg
}

func newMemoryFactory(t *testing.T, ctrl *gomock.Controller) *mocks.MockFactory {
	t.Helper()
	factory := mocks.NewMockFactory(ctrl)
	factory.EXPECT().CreateStore(gomock.Any()).Return(store.NewMemoryStore(), nil)
	factory.EXPECT().Cleanup().AnyTimes()
	return factory
}

func TestBaseConfig_Defaults(t *testing.T) {
	t.Parallel()

	built, err := baseConfig()
	require.NoError(t, err)
	require.NotNil(t, built)
	assert.Equal(t, config.DefaultAddress, built.address)
	assert.Equal(t, defaultRequestTimeout, built.requestTimeout)
	assert.Equal(t, defaultReadTimeout, built.readTimeout)
	assert.Equal(t, defaultWriteTimeout, built.writeTimeout)
	assert.Equal(t, defaultIdleTimeout, built.idleTimeout)
	assert.NotNil(t, built.config)
	assert.NotNil(t, built.clock)
}

func TestBaseConfig_AddressFromConfig(t *testing.T) {
	t.Parallel()
	cfg := createValidTestConfig()
	cfg.Server.Address = "127.0.0.1:7070"

	built, err := baseConfig(WithConfig(cfg))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7070", built.address)

	built, err = baseConfig(WithConfig(cfg), WithAddress(":9090"))
	require.NoError(t, err)
	assert.Equal(t, ":9090", built.address, "option overrides the configured address")
}

func TestBaseConfig_OptionError(t *testing.T) {
	t.Parallel()
	built, err := baseConfig(
		WithConfig(createValidTestConfig()),
		WithAddress(":"),
	)
	require.Error(t, err)
	require.Nil(t, built)
}

func TestWithAddress(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		address string
		want    string
		wantErr bool
	}{
		{name: "valid address", address: ":9999", want: ":9999"},
		{name: "valid address with host", address: "127.0.0.1:9999", want: "127.0.0.1:9999"},
		{name: "valid address with localhost", address: "localhost:9999", want: "localhost:9999"},
		{name: "invalid empty address", address: "", wantErr: true},
		{name: "invalid empty port", address: ":", wantErr: true},
		{name: "invalid missing port", address: "localhost", wantErr: true},
		{name: "invalid port out of range", address: "localhost:999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &dashboardAppConfig{}
			err := WithAddress(tt.address)(cfg)

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.address)
		})
	}
}

func TestWithListener(t *testing.T) {
	t.Parallel()

	cfg := &dashboardAppConfig{}
	require.Error(t, WithListener(nil)(cfg))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	require.NoError(t, WithListener(listener)(cfg))
	assert.Equal(t, listener, cfg.listener)
	assert.Equal(t, listener.Addr().String(), cfg.address)
}

func TestWithRequestTimeout(t *testing.T) {
	t.Parallel()

	cfg := &dashboardAppConfig{}
	require.Error(t, WithRequestTimeout(0)(cfg))
	require.NoError(t, WithRequestTimeout(3*time.Second)(cfg))
	assert.Equal(t, 3*time.Second, cfg.requestTimeout)
}

func TestWithMiddlewares(t *testing.T) {
	t.Parallel()
	cfg := &dashboardAppConfig{}
	middleware1 := func(next http.Handler) http.Handler { return next }
	middleware2 := func(next http.Handler) http.Handler { return next }

	err := WithMiddlewares(middleware1, middleware2)(cfg)

	require.NoError(t, err)
	assert.Len(t, cfg.middlewares, 2)
}

func TestBuildHTTPServer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		middlewares     []func(http.Handler) http.Handler
		withTelemetry   bool
		wantMiddlewares int
	}{
		{
			name:            "with default middlewares",
			wantMiddlewares: 5,
		},
		{
			name: "with custom middlewares",
			middlewares: []func(http.Handler) http.Handler{
				func(next http.Handler) http.Handler { return next },
			},
			wantMiddlewares: 1,
		},
		{
			name:            "telemetry middlewares are prepended",
			withTelemetry:   true,
			wantMiddlewares: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			ctrl := gomock.NewController(t)

			opts := []DashboardAppOptions{
				WithConfig(createValidTestConfig()),
				WithAddress("127.0.0.1:3000"),
				WithStorageFactory(newMemoryFactory(t, ctrl)),
			}
			if tt.middlewares != nil {
				opts = append(opts, WithMiddlewares(tt.middlewares...))
			}
			if tt.withTelemetry {
				opts = append(opts,
					WithMeterProvider(metricnoop.NewMeterProvider()),
					WithTracerProvider(tracenoop.NewTracerProvider()),
				)
			}

			b, err := baseConfig(opts...)
			require.NoError(t, err)
			components, err := buildComponents(ctx, b)
			require.NoError(t, err)

			server, err := buildHTTPServer(ctx, b, components)
			require.NoError(t, err)
			require.NotNil(t, server)
			assert.Equal(t, "127.0.0.1:3000", server.Addr)
			assert.Equal(t, defaultReadTimeout, server.ReadTimeout)
			assert.Equal(t, defaultWriteTimeout, server.WriteTimeout)
			assert.Equal(t, defaultIdleTimeout, server.IdleTimeout)
			assert.Len(t, b.middlewares, tt.wantMiddlewares)

			rec := httptest.NewRecorder()
			server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestBuildHTTPServer_WebhookSecretFileMissing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	cfg := createValidTestConfig()
	cfg.GitHub.WebhookSecretFile = filepath.Join(t.TempDir(), "missing")

	b, err := baseConfig(WithConfig(cfg), WithStorageFactory(newMemoryFactory(t, ctrl)))
	require.NoError(t, err)
	components, err := buildComponents(ctx, b)
	require.NoError(t, err)

	_, err = buildHTTPServer(ctx, b, components)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook secret")
}

func TestBuildComponents(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	cfg := createValidTestConfig()
	b, err := baseConfig(
		WithConfig(cfg),
		WithStorageFactory(newMemoryFactory(t, ctrl)),
		WithTracerProvider(tracenoop.NewTracerProvider()),
	)
	require.NoError(t, err)

	components, err := buildComponents(ctx, b)
	require.NoError(t, err)
	require.NotNil(t, components)
	assert.NotNil(t, components.Store)
	assert.NotNil(t, components.Cache)
	assert.NotNil(t, components.SyncEngine)
	assert.NotNil(t, components.Scheduler)
	assert.NotNil(t, components.Dashboard)
	assert.NotNil(t, b.clientFactory, "default GitHub client factory should be built")
	assert.False(t, components.Scheduler.Status().IsRunning)
	assert.Empty(t, components.SyncEngine.PeriodicSyncs())
}

func TestNewDashboardApp(t *testing.T) {
	t.Parallel()

	t.Run("builds with memory storage", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		app, err := NewDashboardApp(context.Background(),
			WithConfig(createValidTestConfig()),
			WithAddress(":0"),
			WithStorageFactory(newMemoryFactory(t, ctrl)),
		)
		require.NoError(t, err)
		require.NotNil(t, app)
		assert.Equal(t, ":0", app.GetHTTPServer().Addr)
		assert.NotNil(t, app.Components().Store)
		require.NoError(t, app.Stop(time.Second))
	})

	t.Run("store creation failure cleans up the factory", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		factory := mocks.NewMockFactory(ctrl)
		factory.EXPECT().CreateStore(gomock.Any()).Return(nil, errors.New("connection refused"))
		factory.EXPECT().Cleanup().Times(1)

		app, err := NewDashboardApp(context.Background(),
			WithConfig(createValidTestConfig()),
			WithStorageFactory(factory),
		)
		require.Error(t, err)
		assert.Nil(t, app)
		assert.Contains(t, err.Error(), "failed to create store")
	})

	t.Run("invalid option is reported", func(t *testing.T) {
		t.Parallel()

		app, err := NewDashboardApp(context.Background(), WithAddress(""))
		require.Error(t, err)
		assert.Nil(t, app)
		assert.Contains(t, err.Error(), "failed to build base configuration")
	})

	t.Run("webhook secret is read from file", func(t *testing.T) {
		t.Parallel()
		ctrl := gomock.NewController(t)

		secretFile := filepath.Join(t.TempDir(), "webhook-secret")
		require.NoError(t, os.WriteFile(secretFile, []byte("s3cret\n"), 0o600))

		cfg := createValidTestConfig()
		cfg.GitHub.WebhookSecretFile = secretFile

		app, err := NewDashboardApp(context.Background(),
			WithConfig(cfg),
			WithStorageFactory(newMemoryFactory(t, ctrl)),
		)
		require.NoError(t, err)
		require.NoError(t, app.Stop(time.Second))
	})
}
