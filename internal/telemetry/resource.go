package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Resource attribute keys describing a dashboard deployment
const (
	AttrDeploymentEnvironment = attribute.Key("deployment.environment")
	AttrStorageType           = attribute.Key("devpulse.storage.type")
	AttrGitHubHost            = attribute.Key("devpulse.github.host")
)

// resourceConfig is shared by the tracer and meter providers so both export
// under the same resource
type resourceConfig struct {
	serviceName    string
	serviceVersion string
	environment    string
	attributes     []attribute.KeyValue
}

func (c resourceConfig) build(ctx context.Context) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(c.serviceName),
		semconv.ServiceVersion(c.serviceVersion),
	}
	if c.environment != "" {
		attrs = append(attrs, AttrDeploymentEnvironment.String(c.environment))
	}
	attrs = append(attrs, c.attributes...)

	res, err := resource.New(ctx,
		resource.WithAttributes(attrs...),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
