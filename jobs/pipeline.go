package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/pipeline"
	"github.com/kbukum/rex/tasks"
)

// Pipeline runs a single job through its middlewares.
type Pipeline struct {
	chain *pipeline.Pipeline[*Context]
}

// NewPipeline creates a pipeline with no middlewares.
func NewPipeline() *Pipeline {
	return &Pipeline{chain: pipeline.New[*Context]()}
}

// DefaultPipeline creates the standard job pipeline: apply context, then
// execute.
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

// Run drives c through the pipeline and returns its result. An error that
// escapes the middlewares fails the job and is reported on the bus.
func (p *Pipeline) Run(ctx context.Context, c *Context) *execution.Result {
	if err := p.chain.Run(ctx, c); err != nil {
		c.Status = execution.StatusFailure
		c.Result.Fail(err)
		c.Bus.Error(err, "job %s failed", c.Job.ID)
	}
	return c.Result
}

// ApplyContext resolves the job's properties into its state and projects
// its inputs into the env its tasks inherit.
type ApplyContext struct{}

func (ApplyContext) Run(ctx context.Context, c *Context, next pipeline.Next) error {
	state := c.State
	state.Env.Merge(c.Env)

	err := c.Job.Resolve(ctx, c, state)
	if err == nil {
		err = execution.ApplyInputs(Kind, state.ID, nil, state.Inputs, state.Env)
	}
	if err != nil {
		c.Result.Fail(err)
		c.Bus.Send(Failed{State: state, Err: err})
		return nil
	}
	return next(ctx)
}

// Execute gates the job and runs its tasks as a nested task graph under the
// job timeout. A cancelled job contributes no env, secrets or outputs.
type Execute struct{}

func (Execute) Run(ctx context.Context, c *Context, next pipeline.Next) error {
	run := c.detach()
	execution.Execute(ctx, execution.Step{
		State:     c.State,
		Aggregate: c.Status,
		Result:    c.Result,
		Services:  c.Services,
		Events:    events{bus: c.Bus, state: c.State},
	}, func(ctx context.Context) (*collections.Outputs, error) {
		return runTasks(ctx, run)
	})
	if c.Result.Settled() {
		c.adopt(run)
	}
	return next(ctx)
}

// runTasks runs the job's tasks with the job's resolved env and cwd. Task
// outputs task.<id> are exposed as jobs.<job>.<id>.
func runTasks(ctx context.Context, c *Context) (*collections.Outputs, error) {
	summary, nested, err := tasks.RunGroup(ctx, c.Context, c.State, c.Job.Tasks)
	if err != nil {
		return nil, err
	}
	c.Tasks = summary

	outputs := collections.NewObjectMap()
	prefix := "jobs." + execution.OutputKey(c.Job.ID) + "."
	for k, v := range nested.Outputs.All() {
		if id, ok := strings.CutPrefix(k, "task."); ok {
			c.Outputs.Set(prefix+id, v)
			outputs.Set(prefix+id, v)
		}
	}

	if !summary.Succeeded() {
		cause := summary.Err
		if cause == nil {
			cause = fmt.Errorf("tasks finished with status %s", summary.Status)
		}
		return outputs, errors.Execution(c.Job.ID, cause)
	}
	return outputs, nil
}
