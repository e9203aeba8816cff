// Package telemetry wires OpenTelemetry traces, metrics and logs for the service
// and exports the ledger's business metrics.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const (
	// ServiceVersion is reported on every exported resource
	ServiceVersion = "1.0.0"

	shutdownTimeout = 10 * time.Second
)

// Config holds the settings shared by the trace, metric and log pipelines
type Config struct {
	ServiceName       string
	CollectorEndpoint string
	Insecure          bool

	TracesEnabled bool
	SamplingRatio float64

	MetricsEnabled        bool
	MetricsExportInterval time.Duration

	LogsEnabled bool
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// shutdownWithTimeout bounds a provider shutdown so a dead collector cannot
// block process exit
func shutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return shutdown(ctx)
}
