package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/dikit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ResolutionMetrics holds instruments for container activity.
type ResolutionMetrics struct {
	resolutionTotal    metric.Int64Counter
	resolutionDuration metric.Float64Histogram
	scopeActive        metric.Int64UpDownCounter
	disposalTotal      metric.Int64Counter
}

// NewResolutionMetrics creates the container instruments on the given
// meter.
func NewResolutionMetrics(meter metric.Meter) (*ResolutionMetrics, error) {
	resolutionTotal, err := meter.Int64Counter("di.resolution.total",
		metric.WithDescription("Total number of service resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolution.total counter: %w", err)
	}

	resolutionDuration, err := meter.Float64Histogram("di.resolution.duration",
		metric.WithDescription("Duration of service resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolution.duration histogram: %w", err)
	}

	scopeActive, err := meter.Int64UpDownCounter("di.scope.active",
		metric.WithDescription("Number of open scopes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.scope.active gauge: %w", err)
	}

	disposalTotal, err := meter.Int64Counter("di.disposal.total",
		metric.WithDescription("Total number of provider disposals"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.disposal.total counter: %w", err)
	}

	return &ResolutionMetrics{
		resolutionTotal:    resolutionTotal,
		resolutionDuration: resolutionDuration,
		scopeActive:        scopeActive,
		disposalTotal:      disposalTotal,
	}, nil
}

// RecordResolution records one resolution with its outcome.
func (m *ResolutionMetrics) RecordResolution(ctx context.Context, serviceType, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("service_type", serviceType),
		attribute.String("status", status),
	)
	m.resolutionTotal.Add(ctx, 1, attrs)
	m.resolutionDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service_type", serviceType),
	))
}

// RecordScopeOpened increments the open scope count.
func (m *ResolutionMetrics) RecordScopeOpened(ctx context.Context) {
	m.scopeActive.Add(ctx, 1)
}

// RecordScopeClosed decrements open scopes and counts the disposal.
func (m *ResolutionMetrics) RecordScopeClosed(ctx context.Context, status string) {
	m.scopeActive.Add(ctx, -1)
	m.disposalTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}
