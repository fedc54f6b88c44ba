package tasks

import (
	"context"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/execution"
)

// Builder configures a Task fluently.
//
//	tasks.Define("build", build).
//		Needs("restore").
//		Env(map[string]string{"CONFIGURATION": "Release"}).
//		AddTo(m)
type Builder struct {
	task *Task
}

// Define declares a delegate task running fn.
func Define(id string, fn RunFunc) *Builder {
	return &Builder{task: &Task{ID: id, Uses: DelegateKind, Run: fn}}
}

// DefineWithDeps declares a delegate task running fn after needs.
func DefineWithDeps(id string, needs []string, fn RunFunc) *Builder {
	return Define(id, fn).Needs(needs...)
}

// DefineScript declares a shell task. An empty shell picks the default.
func DefineScript(id, shell, script string) *Builder {
	return &Builder{task: &Task{ID: id, Uses: ShellKind, Shell: shell, Script: script}}
}

// DefineUses declares a task implemented by the registered kind uses.
func DefineUses(id, uses string) *Builder {
	return &Builder{task: &Task{ID: id, Uses: uses}}
}

func (b *Builder) Name(name string) *Builder {
	b.task.Name = name
	return b
}

func (b *Builder) Description(description string) *Builder {
	b.task.Description = description
	return b
}

// Needs appends dependencies.
func (b *Builder) Needs(ids ...string) *Builder {
	b.task.Needs = append(b.task.Needs, ids...)
	return b
}

func (b *Builder) Cwd(dir string) *Builder {
	b.task.Cwd = execution.Literal[*Context](dir)
	return b
}

func (b *Builder) CwdFunc(fn func(context.Context, *Context) (string, error)) *Builder {
	b.task.Cwd = execution.Computed(fn)
	return b
}

func (b *Builder) Env(env map[string]string) *Builder {
	b.task.Env = execution.Literal[*Context](collections.StringMapFrom(env))
	return b
}

func (b *Builder) EnvFunc(fn func(context.Context, *Context) (*collections.StringMap, error)) *Builder {
	b.task.Env = execution.Computed(fn)
	return b
}

// With sets the task inputs.
func (b *Builder) With(inputs map[string]any) *Builder {
	b.task.With = execution.Literal[*Context](collections.ObjectMapFrom(inputs))
	return b
}

func (b *Builder) WithFunc(fn func(context.Context, *Context) (*collections.Inputs, error)) *Builder {
	b.task.With = execution.Computed(fn)
	return b
}

// Timeout sets the timeout in seconds. Zero uses the run default.
func (b *Builder) Timeout(seconds int) *Builder {
	b.task.Timeout = execution.Literal[*Context](seconds)
	return b
}

func (b *Builder) TimeoutFunc(fn func(context.Context, *Context) (int, error)) *Builder {
	b.task.Timeout = execution.Computed(fn)
	return b
}

// If sets the run condition.
func (b *Builder) If(cond bool) *Builder {
	b.task.If = execution.Literal[*Context](cond)
	return b
}

func (b *Builder) IfFunc(fn func(context.Context, *Context) (bool, error)) *Builder {
	b.task.If = execution.Computed(fn)
	return b
}

// Force lets the task run after an earlier failure or cancellation.
func (b *Builder) Force(force bool) *Builder {
	b.task.Force = execution.Literal[*Context](force)
	return b
}

func (b *Builder) ForceFunc(fn func(context.Context, *Context) (bool, error)) *Builder {
	b.task.Force = execution.Computed(fn)
	return b
}

// Build returns the task.
func (b *Builder) Build() *Task { return b.task }

// AddTo puts the task into m, replacing any task with the same id.
func (b *Builder) AddTo(m *Map) *Builder {
	m.Put(b.task)
	return b
}
