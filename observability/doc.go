// Package observability provides OpenTelemetry tracing and metrics for
// the injectkit engine.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-service"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-service"))
//	defer mp.Shutdown(ctx)
//
// Engine instrumentation: NewResolveObserver builds a di.Observer that
// emits a span per resolution plus counters and histograms for
// resolutions, constructor failures, and scope lifetimes:
//
//	obs, err := observability.NewResolveObserver(observability.ObserverConfig{
//	    ServiceName: "my-service", Tracing: true, Metrics: true,
//	})
//	c := di.New(di.WithObserver(obs))
package observability
