package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Parallel()

	empty := &Config{}
	assert.Equal(t, DefaultServiceName, empty.GetServiceName())
	assert.Equal(t, "unknown", empty.GetServiceVersion())
	assert.Equal(t, DefaultEndpoint, empty.GetEndpoint())

	set := &Config{ServiceName: "devpulse-worker", ServiceVersion: "1.2.3", Endpoint: "otel:4318"}
	assert.Equal(t, "devpulse-worker", set.GetServiceName())
	assert.Equal(t, "1.2.3", set.GetServiceVersion())
	assert.Equal(t, "otel:4318", set.GetEndpoint())
}

func TestTracingConfig_GetSampling(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultSampling, (&TracingConfig{}).GetSampling())
	assert.Equal(t, 0.5, (&TracingConfig{Sampling: 0.5}).GetSampling())
	assert.Equal(t, 1.0, (&TracingConfig{Sampling: 1}).GetSampling())
}

func TestMetricsConfig_Exporter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		config     *MetricsConfig
		exporter   string
		otlp, prom bool
	}{
		{name: "nil defaults to otlp", config: nil, exporter: ExporterOTLP, otlp: true},
		{name: "empty defaults to otlp", config: &MetricsConfig{}, exporter: ExporterOTLP, otlp: true},
		{name: "prometheus", config: &MetricsConfig{Exporter: ExporterPrometheus}, exporter: ExporterPrometheus, prom: true},
		{name: "both", config: &MetricsConfig{Exporter: ExporterBoth}, exporter: ExporterBoth, otlp: true, prom: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.exporter, tt.config.GetExporter())
			assert.Equal(t, tt.otlp, tt.config.UsesOTLP())
			assert.Equal(t, tt.prom, tt.config.UsesPrometheus())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr []string
	}{
		{name: "nil config", config: nil},
		{name: "disabled config is not checked", config: &Config{
			Tracing: &TracingConfig{Enabled: true, Sampling: 7},
		}},
		{name: "valid", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: 1},
			Metrics: &MetricsConfig{Enabled: true, Exporter: ExporterBoth},
		}},
		{name: "disabled sections are not checked", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Sampling: -1},
			Metrics: &MetricsConfig{Exporter: "statsd"},
		}},
		{name: "sampling above one", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: 1.1},
		}, wantErr: []string{"tracing: sampling must be between 0.0 and 1.0"}},
		{name: "negative sampling", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: -0.1},
		}, wantErr: []string{"tracing: sampling"}},
		{name: "unknown exporter", config: &Config{
			Enabled: true,
			Metrics: &MetricsConfig{Enabled: true, Exporter: "statsd"},
		}, wantErr: []string{`metrics: exporter must be one of`, `"statsd"`}},
		{name: "errors are joined", config: &Config{
			Enabled: true,
			Tracing: &TracingConfig{Enabled: true, Sampling: 2},
			Metrics: &MetricsConfig{Enabled: true, Exporter: "statsd"},
		}, wantErr: []string{"tracing:", "metrics:"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.config.Validate()
			if len(tt.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}
