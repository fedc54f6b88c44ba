package tasks

import (
	"github.com/kbukum/rex/dag"
	"github.com/kbukum/rex/execution"
)

// Kind is the unit kind name used in errors and messages.
const Kind = "task"

// Built-in descriptor ids.
const (
	DelegateKind = "delegate-task"
	ShellKind    = "shell-task"
)

// RunFunc is an inline task body.
type RunFunc = execution.RunFunc[*Context]

// Task is a declared unit of work.
type Task struct {
	execution.Properties[*Context]

	ID          string
	Name        string
	Description string
	// Uses selects the descriptor that runs the task.
	Uses  string
	Needs []string

	// Run is the inline body used by delegate-task.
	Run RunFunc
	// Shell and Script are the body used by shell-task.
	Shell  string
	Script string
}

// NodeID implements dag.Node.
func (t *Task) NodeID() string { return t.ID }

// NodeNeeds implements dag.Node.
func (t *Task) NodeNeeds() []string { return t.Needs }

// Map is an ordered set of tasks keyed by id. Putting an existing id
// replaces the task in place.
type Map = dag.Map[*Task]

// NewMap creates an empty task map, optionally seeded with tasks.
func NewMap(tasks ...*Task) *Map {
	m := dag.NewMap[*Task]()
	for _, t := range tasks {
		m.Put(t)
	}
	return m
}

// Context is what a task descriptor receives. It embeds the execution
// context cloned for this task.
type Context struct {
	*execution.Context

	Task   *Task
	State  *execution.State
	Result *execution.Result
	// Status is the aggregate run status when the task was scheduled.
	Status   execution.Status
	Registry *Registry
}

// newContext builds the context for one task run from the aggregate context.
func newContext(parent *execution.Context, task *Task, registry *Registry, status execution.Status) *Context {
	return &Context{
		Context:  parent.Clone(),
		Task:     task,
		State:    execution.NewState(task.ID, task.Name, task.Description, task.Uses, task.Needs, parent.Cwd),
		Result:   execution.NewResult(task.ID),
		Status:   status,
		Registry: registry,
	}
}

func (c *Context) UnitKind() string              { return Kind }
func (c *Context) UnitState() *execution.State   { return c.State }
func (c *Context) UnitResult() *execution.Result { return c.Result }

// detach returns the copy of c that the task body runs against. Only a body
// that settles has its env, secrets, outputs and state adopted back.
func (c *Context) detach() *Context {
	run := *c
	run.Context = c.Context.Clone()
	run.State = c.State.Clone()
	return &run
}

func (c *Context) adopt(run *Context) {
	*c.Context = *run.Context
	*c.State = *run.State
}
