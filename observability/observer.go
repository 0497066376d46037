package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillsenselab/injectkit/di"
	apperr "github.com/skillsenselab/injectkit/errors"
)

// ObserverConfig configures engine instrumentation.
type ObserverConfig struct {
	// ServiceName tags every span and metric.
	ServiceName string
	// Tracing enables a span per resolution.
	Tracing bool
	// Metrics enables the engine counters and histograms.
	Metrics bool
	// Meter overrides the global meter; used by tests with a noop meter.
	Meter metric.Meter
}

// ResolveObserver implements di.Observer with OpenTelemetry spans and
// metrics. Install it on a container with di.WithObserver.
type ResolveObserver struct {
	tracer  trace.Tracer
	metrics *EngineMetrics
}

// NewResolveObserver builds an observer per cfg. With both Tracing and
// Metrics disabled it still satisfies di.Observer and does nothing.
func NewResolveObserver(cfg ObserverConfig) (*ResolveObserver, error) {
	o := &ResolveObserver{}
	if cfg.Tracing {
		o.tracer = Tracer(defaultTracerName)
	}
	if cfg.Metrics {
		meter := cfg.Meter
		if meter == nil {
			meter = Meter(cfg.ServiceName)
		}
		m, err := NewEngineMetrics(meter)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// ResolveStart opens a resolution span carrying the service key.
func (o *ResolveObserver) ResolveStart(ctx context.Context, key di.Key) context.Context {
	if o.tracer == nil {
		return ctx
	}
	ctx, _ = o.tracer.Start(ctx, SpanResolve, trace.WithAttributes(
		attribute.String(AttrServiceKey, key.String()),
	))
	return ctx
}

// ResolveEnd closes the resolution span and records the outcome metrics.
func (o *ResolveObserver) ResolveEnd(ctx context.Context, key di.Key, lifecycle di.Lifecycle, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = string(apperr.CodeOf(err))
		if status == "" {
			status = "error"
		}
	}

	if o.tracer != nil {
		span := trace.SpanFromContext(ctx)
		span.SetAttributes(
			attribute.String(AttrLifecycle, lifecycle.String()),
			attribute.String(AttrStatus, status),
			attribute.Int64(AttrDurationMs, elapsed.Milliseconds()),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}

	if o.metrics != nil {
		o.metrics.RecordResolve(ctx, key.String(), lifecycle.String(), status, elapsed)
		if apperr.HasCode(err, apperr.CodeConstructorFailure) {
			o.metrics.RecordConstructorError(ctx, key.String())
		}
	}
}

// ScopeOpened records a new scope.
func (o *ResolveObserver) ScopeOpened(id string) {
	if o.metrics != nil {
		o.metrics.RecordScopeOpened(context.Background())
	}
}

// ScopeClosed records a scope teardown and its lifetime.
func (o *ResolveObserver) ScopeClosed(id string, elapsed time.Duration) {
	if o.metrics != nil {
		o.metrics.RecordScopeClosed(context.Background(), elapsed)
	}
}
