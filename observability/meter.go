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

	"github.com/skillsenselab/injectkit/logger"
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

// EngineMetrics holds the metric instruments for the resolution engine.
type EngineMetrics struct {
	resolveTotal      metric.Int64Counter
	resolveDuration   metric.Float64Histogram
	constructorErrors metric.Int64Counter
	scopesActive      metric.Int64UpDownCounter
	scopesTotal       metric.Int64Counter
	scopeDuration     metric.Float64Histogram
}

// NewEngineMetrics creates the engine instruments on the given meter.
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	resolveTotal, err := meter.Int64Counter("di.resolve.total",
		metric.WithDescription("Total number of service resolutions"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.total counter: %w", err)
	}

	resolveDuration, err := meter.Float64Histogram("di.resolve.duration",
		metric.WithDescription("Duration of service resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.resolve.duration histogram: %w", err)
	}

	constructorErrors, err := meter.Int64Counter("di.constructor.errors",
		metric.WithDescription("Total constructor failures by service"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.constructor.errors counter: %w", err)
	}

	scopesActive, err := meter.Int64UpDownCounter("di.scopes.active",
		metric.WithDescription("Number of currently open scopes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.scopes.active gauge: %w", err)
	}

	scopesTotal, err := meter.Int64Counter("di.scopes.total",
		metric.WithDescription("Total number of scopes opened"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.scopes.total counter: %w", err)
	}

	scopeDuration, err := meter.Float64Histogram("di.scope.duration",
		metric.WithDescription("Scope lifetime in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating di.scope.duration histogram: %w", err)
	}

	return &EngineMetrics{
		resolveTotal:      resolveTotal,
		resolveDuration:   resolveDuration,
		constructorErrors: constructorErrors,
		scopesActive:      scopesActive,
		scopesTotal:       scopesTotal,
		scopeDuration:     scopeDuration,
	}, nil
}

// RecordResolve records one completed resolution.
func (m *EngineMetrics) RecordResolve(ctx context.Context, service, lifecycle, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("lifecycle", lifecycle),
		attribute.String("status", status),
	)
	m.resolveTotal.Add(ctx, 1, attrs)
	m.resolveDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("lifecycle", lifecycle),
	))
}

// RecordConstructorError records one constructor failure.
func (m *EngineMetrics) RecordConstructorError(ctx context.Context, service string) {
	m.constructorErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
	))
}

// RecordScopeOpened bumps the open-scope gauges.
func (m *EngineMetrics) RecordScopeOpened(ctx context.Context) {
	m.scopesActive.Add(ctx, 1)
	m.scopesTotal.Add(ctx, 1)
}

// RecordScopeClosed drops the active gauge and records the lifetime.
func (m *EngineMetrics) RecordScopeClosed(ctx context.Context, lifetime time.Duration) {
	m.scopesActive.Add(ctx, -1)
	m.scopeDuration.Record(ctx, lifetime.Seconds())
}
