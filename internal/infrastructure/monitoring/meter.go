package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

// MeterProvider exports OpenTelemetry instruments, including the otelhttp
// client and server metrics, through the collector's registry so a single
// /metrics scrape serves both.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
}

// NewMeterProvider installs the global meter provider
func NewMeterProvider(collector *MetricsCollector, serviceName, serviceVersion string, logger *zap.Logger) (*MeterProvider, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(collector.registry))
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(mp)

	logger.Named("metrics").Info("OpenTelemetry metrics exported to Prometheus registry")
	return &MeterProvider{provider: mp}, nil
}

// Meter returns a named meter
func (p *MeterProvider) Meter(name string) metric.Meter {
	return p.provider.Meter(name)
}

// Shutdown stops the reader
func (p *MeterProvider) Shutdown(ctx context.Context) error {
	return p.provider.Shutdown(ctx)
}
