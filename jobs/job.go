package jobs

import (
	"github.com/kbukum/rex/dag"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/tasks"
)

// Kind is the unit kind name used in errors and messages.
const Kind = "job"

// Job is an ordered group of tasks run as one unit.
type Job struct {
	execution.Properties[*Context]

	ID          string
	Name        string
	Description string
	Needs       []string
	// Tasks run in dependency order, with declaration order breaking ties.
	Tasks []*tasks.Task
}

// NodeID implements dag.Node.
func (j *Job) NodeID() string { return j.ID }

// NodeNeeds implements dag.Node.
func (j *Job) NodeNeeds() []string { return j.Needs }

// TaskIDs returns the ids of the job's tasks.
func (j *Job) TaskIDs() []string {
	return dag.IDs(j.Tasks)
}

// Map is an ordered set of jobs keyed by id.
type Map = dag.Map[*Job]

// NewMap creates an empty job map, optionally seeded with jobs.
func NewMap(jobs ...*Job) *Map {
	m := dag.NewMap[*Job]()
	for _, j := range jobs {
		m.Put(j)
	}
	return m
}

// Context is the context of one job run.
type Context struct {
	*execution.Context

	Job    *Job
	State  *execution.State
	Result *execution.Result
	// Status is the aggregate run status when the job was scheduled.
	Status execution.Status
	// Tasks is the summary of the job's task run once it has executed.
	Tasks *execution.Summary
}

func newContext(parent *execution.Context, job *Job, status execution.Status) *Context {
	return &Context{
		Context: parent.Clone(),
		Job:     job,
		State:   execution.NewState(job.ID, job.Name, job.Description, "", job.Needs, parent.Cwd),
		Result:  execution.NewResult(job.ID),
		Status:  status,
	}
}

// detach returns the copy of c that the job's tasks run against. Only a job
// that settles has its env, secrets, outputs and task summary adopted back.
func (c *Context) detach() *Context {
	run := *c
	run.Context = c.Context.Clone()
	run.State = c.State.Clone()
	return &run
}

func (c *Context) adopt(run *Context) {
	*c.Context = *run.Context
	*c.State = *run.State
	c.Tasks = run.Tasks
}

func (c *Context) UnitKind() string              { return Kind }
func (c *Context) UnitState() *execution.State   { return c.State }
func (c *Context) UnitResult() *execution.Result { return c.Result }
