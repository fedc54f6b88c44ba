package tasks

import (
	"context"

	"github.com/kbukum/rex/di"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/pipeline"
)

// RunContext is the aggregate context of a task graph run.
type RunContext struct {
	*execution.Context

	Tasks    *Map
	Registry *Registry
	Targets  []string
	Summary  *execution.Summary
}

// NewRunContext creates the context for running targets from tasks.
func NewRunContext(parent *execution.Context, tasks *Map, registry *Registry, targets []string) *RunContext {
	return &RunContext{
		Context:  parent,
		Tasks:    tasks,
		Registry: registry,
		Targets:  targets,
		Summary:  execution.NewSummary(),
	}
}

// SequentialPipeline runs a task graph one task at a time.
type SequentialPipeline struct {
	chain *pipeline.Pipeline[*RunContext]
}

// NewSequentialPipeline creates a sequential pipeline with no middlewares.
func NewSequentialPipeline() *SequentialPipeline {
	return &SequentialPipeline{chain: pipeline.New[*RunContext]()}
}

// DefaultSequentialPipeline creates the standard sequential task pipeline.
func DefaultSequentialPipeline() *SequentialPipeline {
	return NewSequentialPipeline().Use(SequentialExecution{})
}

// Use appends middlewares to the pipeline.
func (p *SequentialPipeline) Use(m ...pipeline.Middleware[*RunContext]) *SequentialPipeline {
	p.chain.Use(m...)
	return p
}

// Run executes the graph and returns its summary. An error that escapes the
// middlewares fails the run.
func (p *SequentialPipeline) Run(ctx context.Context, c *RunContext) *execution.Summary {
	if err := p.chain.Run(ctx, c); err != nil {
		c.Summary.Fail(err)
	}
	return c.Summary
}

// SequentialExecution plans the targets and runs each task through the
// TaskPipeline service, merging outputs, secrets and env back into the run
// context.
type SequentialExecution struct{}

func (SequentialExecution) Run(ctx context.Context, c *RunContext, next pipeline.Next) error {
	c.Writer.Debug("task targets: %v", c.Targets)

	order, err := c.Tasks.Plan(Kind, c.Targets, reporter{bus: c.Bus})
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			for _, id := range c.Targets {
				if !c.Tasks.Has(id) {
					c.Bus.Send(NotFound{ID: id})
				}
			}
		}
		c.Summary.Fail(err)
		return nil
	}

	unit, err := di.Resolve[*Pipeline](c.Services, di.TaskPipeline)
	if err != nil {
		c.Summary.Fail(errors.ServiceNotFound(di.TaskPipeline).WithCause(err))
		c.Bus.Error(err, "task pipeline unavailable")
		return nil
	}

	for _, task := range order {
		if c.Summary.Status.Halted() && !task.StaticForce() {
			result := execution.NewResult(task.ID)
			result.Skip()
			c.Summary.Record(result)
			c.Writer.Debug("skipping task %s", task.ID)
			continue
		}

		tc := newContext(c.Context, task, c.Registry, c.Summary.Status)
		result := unit.Run(ctx, tc)

		key := execution.OutputKey(task.ID)
		c.Outputs.Set("task."+key, result.Outputs)
		c.Outputs.Set(key, result.Outputs)

		secrets, env := execution.Propagate(c.Context, tc.Context)
		for _, k := range secrets {
			c.Writer.Debug("secret %s changed in task %s", k, task.ID)
		}
		for _, k := range env {
			c.Writer.Debug("env %s changed in task %s", k, task.ID)
		}

		c.Summary.Record(result)
	}

	return next(ctx)
}

// Run executes targets from tasks with the services' sequential task
// pipeline. It is the entry point used by the runner, jobs and deployment
// hooks. A nil registry uses the services' TaskRegistry.
func Run(ctx context.Context, parent *execution.Context, tasks *Map, registry *Registry, targets []string) (*execution.Summary, error) {
	seq, err := di.Resolve[*SequentialPipeline](parent.Services, di.SequentialTasksPipeline)
	if err != nil {
		return nil, errors.ServiceNotFound(di.SequentialTasksPipeline).WithCause(err)
	}
	if registry == nil {
		if registry, err = di.Resolve[*Registry](parent.Services, di.TaskRegistry); err != nil {
			return nil, errors.ServiceNotFound(di.TaskRegistry).WithCause(err)
		}
	}
	return seq.Run(ctx, NewRunContext(parent, tasks, registry, targets)), nil
}

// RunGroup runs ts as a nested task graph for the unit described by state.
// The tasks inherit the unit's resolved env and cwd. Env and secrets they
// change are copied back to parent, and env to state as well. The nested
// context is returned so the caller can pick up task outputs.
func RunGroup(ctx context.Context, parent *execution.Context, state *execution.State, ts []*Task) (*execution.Summary, *execution.Context, error) {
	nested := parent.Clone()
	nested.Env = state.Env.Clone()
	nested.Cwd = state.Cwd

	m := NewMap(ts...)
	summary, err := Run(ctx, nested, m, nil, m.Keys())
	if err != nil {
		return nil, nested, err
	}

	for k, v := range nested.Env.All() {
		if old, ok := state.Env.Get(k); !ok || old != v {
			parent.Env.Set(k, v)
			state.Env.Set(k, v)
		}
	}
	parent.Secrets.Merge(nested.Secrets)
	return summary, nested, nil
}

// Register adds the default task pipelines and registry to services.
func Register(services di.Container, registry *Registry) error {
	if registry == nil {
		registry = NewRegistry()
	}
	if err := services.RegisterSingleton(di.TaskRegistry, registry); err != nil {
		return err
	}
	if err := services.RegisterSingleton(di.TaskPipeline, DefaultPipeline()); err != nil {
		return err
	}
	return services.RegisterSingleton(di.SequentialTasksPipeline, DefaultSequentialPipeline())
}
