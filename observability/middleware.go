package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/pipeline"
)

// Trace returns a unit pipeline middleware that wraps each unit run in a
// span named "<kind> <id>". The span carries the unit's final status and
// records its error.
func Trace[C execution.Unit](tracer trace.Tracer) pipeline.Middleware[C] {
	return pipeline.MiddlewareFunc[C](func(ctx context.Context, c C, next pipeline.Next) error {
		state := c.UnitState()
		ctx, span := tracer.Start(ctx, c.UnitKind()+" "+state.ID, trace.WithAttributes(
			attribute.String(AttrUnitKind, c.UnitKind()),
			attribute.String(AttrUnitID, state.ID),
		))
		defer span.End()

		err := next(ctx)

		result := c.UnitResult()
		if state.Uses != "" {
			span.SetAttributes(attribute.String(AttrUnitUses, state.Uses))
		}
		span.SetAttributes(attribute.String(AttrStatus, string(result.Status)))
		failure := err
		if failure == nil {
			failure = result.Err
		}
		if failure != nil {
			span.RecordError(failure)
			span.SetStatus(codes.Error, failure.Error())
		}
		return err
	})
}

// Measure returns a unit pipeline middleware recording unit counts and
// durations on m.
func Measure[C execution.Unit](m *Metrics) pipeline.Middleware[C] {
	return pipeline.MiddlewareFunc[C](func(ctx context.Context, c C, next pipeline.Next) error {
		kind := c.UnitKind()
		start := time.Now()
		m.RecordStart(ctx, kind)

		err := next(ctx)

		status := c.UnitResult().Status
		if err != nil {
			status = execution.StatusFailure
		}
		m.RecordEnd(ctx, kind, c.UnitState().ID, string(status), time.Since(start))
		return err
	})
}
