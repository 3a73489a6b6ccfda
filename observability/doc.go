// Package observability provides OpenTelemetry tracing and metrics for
// container activity.
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
// Instrumented container:
//
//	metrics, _ := observability.NewResolutionMetrics(observability.Meter("my-service"))
//	container := observability.Instrument(provider, nil, metrics)
//	v, err := container.GetService(ctx, reflect.TypeFor[*Store]())
package observability
