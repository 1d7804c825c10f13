package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestNewMeterProvider(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       []MeterProviderOption
		expectNoOp bool
		wantErr    string
	}{
		{
			name:       "no config",
			expectNoOp: true,
		},
		{
			name:       "metrics disabled",
			opts:       []MeterProviderOption{WithMetricsConfig(&MetricsConfig{Enabled: false})},
			expectNoOp: true,
		},
		{
			name: "otlp exporter",
			opts: []MeterProviderOption{
				WithMetricsConfig(&MetricsConfig{Enabled: true}),
				WithMeterInsecure(true),
			},
		},
		{
			name: "prometheus exporter",
			opts: []MeterProviderOption{
				WithMetricsConfig(&MetricsConfig{Enabled: true, Exporter: ExporterPrometheus}),
				WithPrometheusRegisterer(prometheus.NewRegistry()),
			},
		},
		{
			name: "prometheus exporter without registerer",
			opts: []MeterProviderOption{
				WithMetricsConfig(&MetricsConfig{Enabled: true, Exporter: ExporterBoth}),
			},
			wantErr: "requires a registerer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			mp, err := NewMeterProvider(ctx, tt.opts...)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			if tt.expectNoOp {
				assert.IsType(t, noop.MeterProvider{}, mp)
				return
			}
			sdkMP, ok := mp.(*sdkmetric.MeterProvider)
			require.True(t, ok, "expected SDK meter provider")
			// flushing to an absent collector fails
			_ = sdkMP.Shutdown(ctx)
		})
	}
}

func TestNewMeterProvider_PrometheusGather(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	registry := prometheus.NewRegistry()
	mp, err := NewMeterProvider(ctx,
		WithMetricsConfig(&MetricsConfig{Enabled: true, Exporter: ExporterPrometheus}),
		WithPrometheusRegisterer(registry),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.(*sdkmetric.MeterProvider).Shutdown(ctx) })

	counter, err := mp.Meter("test").Int64Counter("devpulse_test_events")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	families, err := registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "devpulse_test_events") {
			found = true
			require.NotEmpty(t, f.GetMetric())
			assert.InDelta(t, 3.0, f.GetMetric()[0].GetCounter().GetValue(), 1e-9)
		}
	}
	assert.True(t, found, "counter not exposed to prometheus")
}

func TestMeterProviderOptions(t *testing.T) {
	t.Parallel()

	metrics := &MetricsConfig{Enabled: true}
	registry := prometheus.NewRegistry()
	cfg := &meterProviderConfig{}
	for _, opt := range []MeterProviderOption{
		WithMeterServiceName("devpulse-worker"),
		WithMeterServiceVersion("2.0.0"),
		WithMetricsConfig(metrics),
		WithMeterEndpoint("collector.example.com:4318"),
		WithMeterInsecure(true),
		WithPrometheusRegisterer(registry),
	} {
		opt(cfg)
	}

	assert.Equal(t, "devpulse-worker", cfg.serviceName)
	assert.Equal(t, "2.0.0", cfg.serviceVersion)
	assert.Same(t, metrics, cfg.metricsConfig)
	assert.Equal(t, "collector.example.com:4318", cfg.endpoint)
	assert.True(t, cfg.insecure)
	assert.Equal(t, registry, cfg.registerer)
}
