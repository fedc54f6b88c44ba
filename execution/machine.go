package execution

import (
	"context"
	"time"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/di"
	"github.com/kbukum/rex/errors"
)

// DefaultTimeout applies when neither the unit nor the services set one.
const DefaultTimeout = 3 * time.Minute

// ResolveTimeout converts a unit timeout in seconds to a duration. Zero or
// negative falls back to the services "timeout" entry (a time.Duration or
// whole seconds as int) and then to DefaultTimeout.
func ResolveTimeout(seconds int, services di.Container) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if services != nil && services.Has(di.Timeout) {
		if d, ok := di.TryResolve[time.Duration](services, di.Timeout); ok && d > 0 {
			return d
		}
		if s, ok := di.TryResolve[int](services, di.Timeout); ok && s > 0 {
			return time.Duration(s) * time.Second
		}
	}
	return DefaultTimeout
}

// Decision is the outcome of pre-run gating.
type Decision int

const (
	Proceed Decision = iota
	Cancel
	Skip
)

// Gate decides whether a unit runs. The first matching rule wins: an
// aborted signal cancels; a halted aggregate skips unless forced; a false
// condition skips.
func Gate(ctx context.Context, aggregate Status, force, cond bool) Decision {
	switch {
	case ctx.Err() != nil:
		return Cancel
	case aggregate.Halted() && !force:
		return Skip
	case !cond:
		return Skip
	default:
		return Proceed
	}
}

// Guard runs body and returns its result, or the cause of ctx as soon as ctx
// is done, whichever comes first. A body that ignores ctx keeps running in
// the background after Guard returns, so it must only touch state the caller
// no longer reads once ctx is done. Panics in body become errors.
func Guard[T any](ctx context.Context, body func(ctx context.Context) (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		var o outcome
		defer func() {
			if r := recover(); r != nil {
				o.err = errors.FromPanic(r)
			}
			done <- o
		}()
		o.val, o.err = body(ctx)
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, context.Cause(ctx)
	}
}

// Lifecycle receives the transitions of one unit, typically to send the
// kind's messages on the bus.
type Lifecycle interface {
	Started()
	Completed(result *Result)
	Failed(err error)
	Skipped()
	Cancelled()
}

// Step is one unit execution handed to Execute.
type Step struct {
	State *State
	// Aggregate is the run status when the unit was scheduled.
	Aggregate Status
	Result    *Result
	Services  di.Container
	Events    Lifecycle
}

// Execute runs the unit state machine for a resolved unit: gating, timeout,
// the race between body and cancellation, and result recording. The body
// receives a context that is cancelled when the parent is cancelled or the
// timeout elapses.
func Execute(ctx context.Context, s Step, body func(ctx context.Context) (*collections.Outputs, error)) {
	switch Gate(ctx, s.Aggregate, s.State.Force, s.State.If) {
	case Cancel:
		s.Result.Cancel(context.Cause(ctx))
		s.Events.Cancelled()
		return
	case Skip:
		s.Result.Skip()
		s.Events.Skipped()
		return
	}

	timeout := ResolveTimeout(s.State.Timeout, s.Services)
	child, cancel := context.WithTimeoutCause(ctx, timeout, errors.Timeout(s.State.ID))
	defer cancel()

	s.Result.Start()
	if child.Err() != nil {
		s.Result.Cancel(context.Cause(child))
		s.Events.Cancelled()
		return
	}
	s.Events.Started()

	outputs, err := Guard(child, body)
	if child.Err() != nil {
		s.Result.Cancel(context.Cause(child))
		s.Events.Cancelled()
		return
	}
	if err != nil {
		s.Result.Fail(err)
		s.Events.Failed(err)
		return
	}
	s.Result.Succeed(outputs)
	s.Events.Completed(s.Result)
}
