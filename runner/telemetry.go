package runner

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/rex/deployments"
	"github.com/kbukum/rex/di"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/jobs"
	"github.com/kbukum/rex/observability"
	"github.com/kbukum/rex/pipeline"
	"github.com/kbukum/rex/tasks"
	"github.com/kbukum/rex/version"
)

// shutdownTimeout bounds flushing telemetry when the run ends.
const shutdownTimeout = 5 * time.Second

// setupTelemetry starts the OTLP exporters enabled in the config and
// replaces the unit pipelines with instrumented ones.
func (r *Runner) setupTelemetry(ctx context.Context) error {
	t := r.Cfg.Telemetry
	if !t.Enabled && !t.Metrics {
		return nil
	}
	log := r.Writer.Logger().WithComponent("telemetry")

	var tracer trace.Tracer
	if t.Enabled {
		tc := observability.DefaultTracerConfig("rex")
		tc.ServiceVersion = version.GetShortVersion()
		tc.Endpoint = t.Endpoint
		tc.Insecure = t.Insecure
		tc.SampleRate = t.SampleRate

		tp, err := observability.InitTracer(ctx, tc, log)
		if err != nil {
			return err
		}
		r.shutdown = append(r.shutdown, tp.Shutdown)
		tracer = observability.Tracer()
		r.tracer = tracer
	}

	var metrics *observability.Metrics
	if t.Metrics {
		mc := observability.DefaultMeterConfig("rex")
		mc.ServiceVersion = version.GetShortVersion()
		mc.Endpoint = t.Endpoint
		mc.Insecure = t.Insecure

		mp, err := observability.InitMeter(ctx, mc, log)
		if err != nil {
			return err
		}
		r.shutdown = append(r.shutdown, mp.Shutdown)
		if metrics, err = observability.NewMetrics(observability.Meter()); err != nil {
			return err
		}
	}

	services := r.Context.Services
	if err := services.RegisterSingleton(di.TaskPipeline,
		tasks.NewPipeline().Use(instrument[*tasks.Context](tracer, metrics)...).Use(tasks.ApplyContext{}, tasks.Execute{})); err != nil {
		return err
	}
	if err := services.RegisterSingleton(di.JobPipeline,
		jobs.NewPipeline().Use(instrument[*jobs.Context](tracer, metrics)...).Use(jobs.ApplyContext{}, jobs.Execute{})); err != nil {
		return err
	}
	return services.RegisterSingleton(di.DeploymentPipeline,
		deployments.NewPipeline().Use(instrument[*deployments.Context](tracer, metrics)...).Use(deployments.ApplyContext{}, deployments.Execute{}))
}

// instrument returns the observability middlewares for a unit pipeline.
// They must run before the unit's own middlewares to wrap its execution.
func instrument[C execution.Unit](tracer trace.Tracer, metrics *observability.Metrics) []pipeline.Middleware[C] {
	var m []pipeline.Middleware[C]
	if tracer != nil {
		m = append(m, observability.Trace[C](tracer))
	}
	if metrics != nil {
		m = append(m, observability.Measure[C](metrics))
	}
	return m
}

// shutdownTelemetry flushes and stops the exporters.
func (r *Runner) shutdownTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, fn := range r.shutdown {
		if err := fn(ctx); err != nil {
			r.Writer.Warn("telemetry shutdown: %v", err)
		}
	}
	r.shutdown = nil
}
