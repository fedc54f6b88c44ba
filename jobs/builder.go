package jobs

import (
	"context"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/tasks"
)

// Builder configures a Job fluently.
//
//	jobs.Define("ci",
//		tasks.DefineScript("test", "bash", "go test ./...").Build(),
//		tasks.DefineScript("lint", "bash", "golangci-lint run").Build(),
//	).AddTo(m)
type Builder struct {
	job *Job
}

// Define declares a job running ts.
func Define(id string, ts ...*tasks.Task) *Builder {
	return &Builder{job: &Job{ID: id, Tasks: ts}}
}

// DefineWithDeps declares a job running ts after the jobs in needs.
func DefineWithDeps(id string, needs []string, ts ...*tasks.Task) *Builder {
	return Define(id, ts...).Needs(needs...)
}

func (b *Builder) Name(name string) *Builder {
	b.job.Name = name
	return b
}

func (b *Builder) Description(description string) *Builder {
	b.job.Description = description
	return b
}

// Needs appends dependencies on other jobs.
func (b *Builder) Needs(ids ...string) *Builder {
	b.job.Needs = append(b.job.Needs, ids...)
	return b
}

// Task appends tasks to the job.
func (b *Builder) Task(ts ...*tasks.Task) *Builder {
	b.job.Tasks = append(b.job.Tasks, ts...)
	return b
}

func (b *Builder) Cwd(dir string) *Builder {
	b.job.Cwd = execution.Literal[*Context](dir)
	return b
}

func (b *Builder) Env(env map[string]string) *Builder {
	b.job.Env = execution.Literal[*Context](collections.StringMapFrom(env))
	return b
}

func (b *Builder) EnvFunc(fn func(context.Context, *Context) (*collections.StringMap, error)) *Builder {
	b.job.Env = execution.Computed(fn)
	return b
}

func (b *Builder) With(inputs map[string]any) *Builder {
	b.job.With = execution.Literal[*Context](collections.ObjectMapFrom(inputs))
	return b
}

// Timeout sets the timeout for the whole job in seconds.
func (b *Builder) Timeout(seconds int) *Builder {
	b.job.Timeout = execution.Literal[*Context](seconds)
	return b
}

func (b *Builder) If(cond bool) *Builder {
	b.job.If = execution.Literal[*Context](cond)
	return b
}

func (b *Builder) IfFunc(fn func(context.Context, *Context) (bool, error)) *Builder {
	b.job.If = execution.Computed(fn)
	return b
}

func (b *Builder) Force(force bool) *Builder {
	b.job.Force = execution.Literal[*Context](force)
	return b
}

func (b *Builder) Build() *Job { return b.job }

// AddTo puts the job into m, replacing any job with the same id.
func (b *Builder) AddTo(m *Map) *Builder {
	m.Put(b.job)
	return b
}
