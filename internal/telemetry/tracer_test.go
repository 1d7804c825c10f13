package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNewTracerProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       []TracerProviderOption
		expectNoOp bool
	}{
		{
			name:       "no config",
			expectNoOp: true,
		},
		{
			name:       "tracing disabled",
			opts:       []TracerProviderOption{WithTracingConfig(&TracingConfig{Enabled: false})},
			expectNoOp: true,
		},
		{
			name: "tracing enabled",
			opts: []TracerProviderOption{
				WithTracingConfig(&TracingConfig{Enabled: true, Sampling: 0.5}),
				WithTracerInsecure(true),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			tp, err := NewTracerProvider(ctx, tt.opts...)
			require.NoError(t, err)

			if tt.expectNoOp {
				assert.IsType(t, noop.TracerProvider{}, tp)
				return
			}
			sdkTP, ok := tp.(*sdktrace.TracerProvider)
			require.True(t, ok, "expected SDK tracer provider")
			require.NoError(t, sdkTP.Shutdown(ctx))
		})
	}
}

func TestTracerProviderOptions(t *testing.T) {
	t.Parallel()

	tracing := &TracingConfig{Enabled: true}
	cfg := &tracerProviderConfig{}
	for _, opt := range []TracerProviderOption{
		WithTracerServiceName("devpulse-worker"),
		WithTracerServiceVersion("2.0.0"),
		WithTracerEnvironment("staging"),
		WithTracerResourceAttributes(AttrStorageType.String("postgres")),
		WithTracingConfig(tracing),
		WithTracerEndpoint("collector.example.com:4318"),
		WithTracerInsecure(true),
	} {
		opt(cfg)
	}

	assert.Equal(t, "devpulse-worker", cfg.serviceName)
	assert.Equal(t, "2.0.0", cfg.serviceVersion)
	assert.Equal(t, "staging", cfg.environment)
	assert.Equal(t, []attribute.KeyValue{AttrStorageType.String("postgres")}, cfg.attributes)
	assert.Same(t, tracing, cfg.tracingConfig)
	assert.Equal(t, "collector.example.com:4318", cfg.endpoint)
	assert.True(t, cfg.insecure)
}
