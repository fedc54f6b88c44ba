// Package observability wires OpenTelemetry tracing and metrics into rex
// runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("rex"), log)
//	defer tp.Shutdown(ctx)
//
//	p := tasks.NewPipeline().Use(
//		observability.Trace[*tasks.Context](observability.Tracer()),
//		tasks.ApplyContext{},
//		tasks.Execute{},
//	)
//
// Metrics:
//
//	metrics, err := observability.NewMetrics(observability.Meter())
//	p := jobs.NewPipeline().Use(observability.Measure[*jobs.Context](metrics), jobs.ApplyContext{}, jobs.Execute{})
//
// Both middlewares only cover the middlewares registered after them.
package observability
