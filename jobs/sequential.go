package jobs

import (
	"context"
	"strings"

	"github.com/kbukum/rex/di"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/pipeline"
)

// RunContext is the aggregate context of a job graph run.
type RunContext struct {
	*execution.Context

	Jobs    *Map
	Targets []string
	Summary *execution.Summary
}

// NewRunContext creates the context for one sequential job run over targets.
func NewRunContext(parent *execution.Context, jobs *Map, targets []string) *RunContext {
	return &RunContext{
		Context: parent,
		Jobs:    jobs,
		Targets: targets,
		Summary: execution.NewSummary(),
	}
}

// SequentialPipeline runs a job graph one job at a time.
type SequentialPipeline struct {
	chain *pipeline.Pipeline[*RunContext]
}

// NewSequentialPipeline creates a sequential pipeline with no middlewares.
func NewSequentialPipeline() *SequentialPipeline {
	return &SequentialPipeline{chain: pipeline.New[*RunContext]()}
}

// DefaultSequentialPipeline creates the standard sequential pipeline.
func DefaultSequentialPipeline() *SequentialPipeline {
	return NewSequentialPipeline().Use(SequentialExecution{})
}

// Use appends middlewares to the pipeline.
func (p *SequentialPipeline) Use(m ...pipeline.Middleware[*RunContext]) *SequentialPipeline {
	p.chain.Use(m...)
	return p
}

// Run drives c through the pipeline and returns the run summary.
func (p *SequentialPipeline) Run(ctx context.Context, c *RunContext) *execution.Summary {
	if err := p.chain.Run(ctx, c); err != nil {
		c.Summary.Fail(err)
	}
	return c.Summary
}

// SequentialExecution plans the targets and runs each job through the
// JobPipeline service. Only outputs in the jobs. namespace reach the run
// context, and never overwrite an existing key.
type SequentialExecution struct{}

func (SequentialExecution) Run(ctx context.Context, c *RunContext, next pipeline.Next) error {
	c.Writer.Debug("job targets: %v", c.Targets)

	order, err := c.Jobs.Plan(Kind, c.Targets, reporter{bus: c.Bus})
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			for _, id := range c.Targets {
				if !c.Jobs.Has(id) {
					c.Bus.Send(NotFound{ID: id})
				}
			}
		}
		c.Summary.Fail(err)
		return nil
	}

	unit, err := di.Resolve[*Pipeline](c.Services, di.JobPipeline)
	if err != nil {
		c.Summary.Fail(errors.ServiceNotFound(di.JobPipeline).WithCause(err))
		c.Bus.Error(err, "job pipeline unavailable")
		return nil
	}

	for _, job := range order {
		if c.Summary.Status.Halted() && !job.StaticForce() {
			result := execution.NewResult(job.ID)
			result.Skip()
			c.Summary.Record(result)
			c.Writer.Debug("skipping job %s", job.ID)
			continue
		}

		jc := newContext(c.Context, job, c.Summary.Status)
		result := unit.Run(ctx, jc)

		for k, v := range jc.Outputs.All() {
			if strings.HasPrefix(k, "jobs.") && !c.Outputs.Has(k) {
				c.Outputs.Set(k, v)
			}
		}

		secrets, env := execution.Propagate(c.Context, jc.Context)
		for _, k := range secrets {
			c.Writer.Debug("secret %s changed in job %s", k, job.ID)
		}
		for _, k := range env {
			c.Writer.Debug("env %s changed in job %s", k, job.ID)
		}

		c.Summary.Record(result)
	}

	return next(ctx)
}

// Run executes targets from jobs with the services' sequential job pipeline.
func Run(ctx context.Context, parent *execution.Context, jobs *Map, targets []string) (*execution.Summary, error) {
	seq, err := di.Resolve[*SequentialPipeline](parent.Services, di.SequentialJobsPipeline)
	if err != nil {
		return nil, errors.ServiceNotFound(di.SequentialJobsPipeline).WithCause(err)
	}
	return seq.Run(ctx, NewRunContext(parent, jobs, targets)), nil
}

// Register adds the default job pipelines to services. Jobs run their tasks
// through the task services, which must be registered as well.
func Register(services di.Container) error {
	if err := services.RegisterSingleton(di.JobPipeline, DefaultPipeline()); err != nil {
		return err
	}
	return services.RegisterSingleton(di.SequentialJobsPipeline, DefaultSequentialPipeline())
}
