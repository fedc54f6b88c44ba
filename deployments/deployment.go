package deployments

import (
	"context"
	"fmt"

	"github.com/kbukum/rex/dag"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/tasks"
)

// Kind is the unit kind name used in errors and messages.
const Kind = "deployment"

// Built-in descriptor ids.
const (
	DelegateKind = "delegate-deploy"
	ShellKind    = "shell-deploy"
)

// Hook events triggered by the built-in kinds.
const (
	BeforeDeploy = "before:deploy"
	AfterDeploy  = "after:deploy"
)

// RunFunc is an inline deployment body.
type RunFunc = execution.RunFunc[*Context]

// Deployment is a declared deployment. Hooks map an event name to the tasks
// run when the deployment's kind triggers it.
type Deployment struct {
	execution.Properties[*Context]

	ID          string
	Name        string
	Description string
	Uses        string
	Needs       []string
	Hooks       map[string][]*tasks.Task

	Run    RunFunc
	Shell  string
	Script string
}

// NodeID implements dag.Node.
func (d *Deployment) NodeID() string { return d.ID }

// NodeNeeds implements dag.Node.
func (d *Deployment) NodeNeeds() []string { return d.Needs }

// Map is an ordered set of deployments keyed by id.
type Map = dag.Map[*Deployment]

// NewMap creates an empty deployment map, optionally seeded with deployments.
func NewMap(deployments ...*Deployment) *Map {
	m := dag.NewMap[*Deployment]()
	for _, d := range deployments {
		m.Put(d)
	}
	return m
}

// Context is what a deployment descriptor receives.
type Context struct {
	*execution.Context

	Deployment *Deployment
	State      *execution.State
	Result     *execution.Result
	// Status is the aggregate run status when the deployment was scheduled.
	Status     execution.Status
	Registry   *Registry
	Descriptor *Descriptor
	// Hooks holds the summary of each triggered hook by event.
	Hooks map[string]*execution.Summary
}

func newContext(parent *execution.Context, d *Deployment, registry *Registry, status execution.Status) *Context {
	return &Context{
		Context:    parent.Clone(),
		Deployment: d,
		State:      execution.NewState(d.ID, d.Name, d.Description, d.Uses, d.Needs, parent.Cwd),
		Result:     execution.NewResult(d.ID),
		Status:     status,
		Registry:   registry,
		Hooks:      make(map[string]*execution.Summary),
	}
}

// Trigger runs the tasks hooked to event as a nested task graph. It is a
// no-op when the deployment's kind does not declare event or nothing is
// hooked to it. Env and secrets the hook tasks change flow back into the
// deployment.
func (c *Context) Trigger(ctx context.Context, event string) error {
	if c.Descriptor != nil && !c.Descriptor.HasEvent(event) {
		return nil
	}
	hooked := c.Deployment.Hooks[event]
	if len(hooked) == 0 {
		return nil
	}

	c.Bus.Send(HookTriggered{State: c.State, Event: event})
	summary, _, err := tasks.RunGroup(ctx, c.Context, c.State, hooked)
	if err != nil {
		return err
	}
	c.Hooks[event] = summary
	if !summary.Succeeded() {
		cause := summary.Err
		if cause == nil {
			cause = fmt.Errorf("%s hook finished with status %s", event, summary.Status)
		}
		return errors.Execution(c.Deployment.ID, cause)
	}
	return nil
}

// detach returns the copy of c that the descriptor and its hooks run
// against. Only a deployment that settles has its env, secrets, outputs and
// hook summaries adopted back.
func (c *Context) detach() *Context {
	run := *c
	run.Context = c.Context.Clone()
	run.State = c.State.Clone()
	run.Hooks = make(map[string]*execution.Summary)
	return &run
}

func (c *Context) adopt(run *Context) {
	*c.Context = *run.Context
	*c.State = *run.State
	c.Hooks = run.Hooks
}

func (c *Context) UnitKind() string              { return Kind }
func (c *Context) UnitState() *execution.State   { return c.State }
func (c *Context) UnitResult() *execution.Result { return c.Result }
