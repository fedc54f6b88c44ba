package deployments

import (
	"context"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/pipeline"
)

// Pipeline runs a single deployment through its middlewares.
type Pipeline struct {
	chain *pipeline.Pipeline[*Context]
}

// NewPipeline creates a pipeline with no middlewares.
func NewPipeline() *Pipeline {
	return &Pipeline{chain: pipeline.New[*Context]()}
}

// DefaultPipeline creates the standard deployment pipeline.
func DefaultPipeline() *Pipeline {
	return NewPipeline().Use(ApplyContext{}, Execute{})
}

// Use appends middlewares to the pipeline.
func (p *Pipeline) Use(m ...pipeline.Middleware[*Context]) *Pipeline {
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

// Run drives c through the pipeline and returns its result.
func (p *Pipeline) Run(ctx context.Context, c *Context) *execution.Result {
	if err := p.chain.Run(ctx, c); err != nil {
		c.Status = execution.StatusFailure
		c.Result.Fail(err)
		c.Bus.Error(err, "deployment %s failed", c.Deployment.ID)
	}
	return c.Result
}

// ApplyContext resolves the deployment's properties, looks up its
// descriptor and applies its inputs.
type ApplyContext struct{}

func (ApplyContext) Run(ctx context.Context, c *Context, next pipeline.Next) error {
	state := c.State
	state.Env.Merge(c.Env)

	fail := func(err error) error {
		c.Result.Fail(err)
		c.Bus.Send(Failed{State: state, Err: err})
		return nil
	}

	if err := c.Deployment.Resolve(ctx, c, state); err != nil {
		return fail(err)
	}
	descriptor, err := c.Registry.Lookup(state.Uses)
	if err != nil {
		return fail(err)
	}
	if err := execution.ApplyInputs(Kind, state.ID, descriptor.Inputs, state.Inputs, state.Env); err != nil {
		return fail(err)
	}
	c.Descriptor = descriptor
	return next(ctx)
}

// Execute gates the deployment and runs its descriptor, hooks included,
// under the deployment timeout. A cancelled deployment contributes no env,
// secrets or outputs.
type Execute struct{}

func (Execute) Run(ctx context.Context, c *Context, next pipeline.Next) error {
	if c.Descriptor == nil {
		descriptor, err := c.Registry.Lookup(c.State.Uses)
		if err != nil {
			c.Result.Fail(err)
			c.Bus.Send(Failed{State: c.State, Err: err})
			return nil
		}
		c.Descriptor = descriptor
	}

	run := c.detach()
	execution.Execute(ctx, execution.Step{
		State:     c.State,
		Aggregate: c.Status,
		Result:    c.Result,
		Services:  c.Services,
		Events:    events{bus: c.Bus, state: c.State},
	}, func(ctx context.Context) (*collections.Outputs, error) {
		return run.Descriptor.Run(ctx, run)
	})
	if c.Result.Settled() {
		c.adopt(run)
	}
	return next(ctx)
}
