package deployments

import (
	"context"

	"github.com/kbukum/rex/di"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/pipeline"
)

// RunContext is the aggregate context of a deployment graph run.
type RunContext struct {
	*execution.Context

	Deployments *Map
	Registry    *Registry
	Targets     []string
	Summary     *execution.Summary
}

// NewRunContext creates the context for one sequential deployment run over
// targets.
func NewRunContext(parent *execution.Context, deployments *Map, registry *Registry, targets []string) *RunContext {
	return &RunContext{
		Context:     parent,
		Deployments: deployments,
		Registry:    registry,
		Targets:     targets,
		Summary:     execution.NewSummary(),
	}
}

// SequentialPipeline runs a deployment graph one deployment at a time.
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

// SequentialExecution plans the targets and runs each deployment through the
// DeploymentPipeline service.
type SequentialExecution struct{}

func (SequentialExecution) Run(ctx context.Context, c *RunContext, next pipeline.Next) error {
	c.Writer.Debug("deployment targets: %v", c.Targets)

	order, err := c.Deployments.Plan(Kind, c.Targets, reporter{bus: c.Bus})
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			for _, id := range c.Targets {
				if !c.Deployments.Has(id) {
					c.Bus.Send(NotFound{ID: id})
				}
			}
		}
		c.Summary.Fail(err)
		return nil
	}

	unit, err := di.Resolve[*Pipeline](c.Services, di.DeploymentPipeline)
	if err != nil {
		c.Summary.Fail(errors.ServiceNotFound(di.DeploymentPipeline).WithCause(err))
		c.Bus.Error(err, "deployment pipeline unavailable")
		return nil
	}

	for _, d := range order {
		if c.Summary.Status.Halted() && !d.StaticForce() {
			result := execution.NewResult(d.ID)
			result.Skip()
			c.Summary.Record(result)
			c.Writer.Debug("skipping deployment %s", d.ID)
			continue
		}

		dc := newContext(c.Context, d, c.Registry, c.Summary.Status)
		result := unit.Run(ctx, dc)

		key := execution.OutputKey(d.ID)
		c.Outputs.Set("deployment."+key, result.Outputs)
		c.Outputs.Set(key, result.Outputs)

		secrets, env := execution.Propagate(c.Context, dc.Context)
		for _, k := range secrets {
			c.Writer.Debug("secret %s changed in deployment %s", k, d.ID)
		}
		for _, k := range env {
			c.Writer.Debug("env %s changed in deployment %s", k, d.ID)
		}

		c.Summary.Record(result)
	}

	return next(ctx)
}

// Run executes targets from deployments with the services' sequential
// deployment pipeline. A nil registry uses the services' DeploymentRegistry.
func Run(ctx context.Context, parent *execution.Context, deployments *Map, registry *Registry, targets []string) (*execution.Summary, error) {
	seq, err := di.Resolve[*SequentialPipeline](parent.Services, di.SequentialDeploymentsPipeline)
	if err != nil {
		return nil, errors.ServiceNotFound(di.SequentialDeploymentsPipeline).WithCause(err)
	}
	if registry == nil {
		if registry, err = di.Resolve[*Registry](parent.Services, di.DeploymentRegistry); err != nil {
			return nil, errors.ServiceNotFound(di.DeploymentRegistry).WithCause(err)
		}
	}
	return seq.Run(ctx, NewRunContext(parent, deployments, registry, targets)), nil
}

// Register adds the default deployment pipelines and registry to services.
// Hooks run through the task services, which must be registered as well.
func Register(services di.Container, registry *Registry) error {
	if registry == nil {
		registry = NewRegistry()
	}
	if err := services.RegisterSingleton(di.DeploymentRegistry, registry); err != nil {
		return err
	}
	if err := services.RegisterSingleton(di.DeploymentPipeline, DefaultPipeline()); err != nil {
		return err
	}
	return services.RegisterSingleton(di.SequentialDeploymentsPipeline, DefaultSequentialPipeline())
}
