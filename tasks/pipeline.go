package tasks

import (
	"context"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/pipeline"
)

// Middleware is a step of the task pipeline.
type Middleware = pipeline.Middleware[*Context]

// Pipeline runs a single task through its middlewares.
type Pipeline struct {
	chain *pipeline.Pipeline[*Context]
}

// NewPipeline creates a pipeline with no middlewares.
func NewPipeline() *Pipeline {
	return &Pipeline{chain: pipeline.New[*Context]()}
}

// DefaultPipeline creates the standard task pipeline: apply context, then
// execute.
func DefaultPipeline() *Pipeline {
	return NewPipeline().Use(ApplyContext{}, Execute{})
}

// Use appends middlewares to the pipeline.
func (p *Pipeline) Use(m ...Middleware) *Pipeline {
	p.chain.Use(m...)
	return p
}

// UseFunc appends a function middleware.
func (p *Pipeline) UseFunc(fn func(ctx context.Context, c *Context, next pipeline.Next) error) *Pipeline {
	p.chain.UseFunc(fn)
	return p
}

// Len returns the number of middlewares.
func (p *Pipeline) Len() int { return p.chain.Len() }

// Run drives c through the pipeline and returns its result. An error that
// escapes the middlewares fails the task and is reported on the bus.
func (p *Pipeline) Run(ctx context.Context, c *Context) *execution.Result {
	if err := p.chain.Run(ctx, c); err != nil {
		c.Status = execution.StatusFailure
		c.Result.Fail(err)
		c.Bus.Error(err, "task %s failed", c.Task.ID)
	}
	return c.Result
}

// ApplyContext resolves the task's properties into its state, looks up the
// descriptor and applies its inputs. Any failure fails the task without
// running it.
type ApplyContext struct{}

func (ApplyContext) Run(ctx context.Context, c *Context, next pipeline.Next) error {
	state := c.State
	state.Env.Merge(c.Env)

	fail := func(err error) error {
		c.Result.Fail(err)
		c.Bus.Send(Failed{State: state, Err: err})
		return nil
	}

	if err := c.Task.Resolve(ctx, c, state); err != nil {
		return fail(err)
	}
	descriptor, err := c.Registry.Lookup(state.Uses)
	if err != nil {
		return fail(err)
	}
	if err := execution.ApplyInputs(Kind, state.ID, descriptor.Inputs, state.Inputs, state.Env); err != nil {
		return fail(err)
	}
	return next(ctx)
}

// Execute gates the task, runs its descriptor under the task timeout and
// records the result. The descriptor runs against a detached copy of the
// context; a cancelled task leaves env, secrets and outputs untouched.
type Execute struct{}

func (Execute) Run(ctx context.Context, c *Context, next pipeline.Next) error {
	descriptor, err := c.Registry.Lookup(c.State.Uses)
	if err != nil {
		c.Result.Fail(err)
		c.Bus.Send(Failed{State: c.State, Err: err})
		return nil
	}

	run := c.detach()
	execution.Execute(ctx, execution.Step{
		State:     c.State,
		Aggregate: c.Status,
		Result:    c.Result,
		Services:  c.Services,
		Events:    events{bus: c.Bus, state: c.State},
	}, func(ctx context.Context) (*collections.Outputs, error) {
		return descriptor.Run(ctx, run)
	})
	if c.Result.Settled() {
		c.adopt(run)
	}
	return next(ctx)
}
