package deployments

import (
	"context"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/tasks"
)

// Builder configures a Deployment fluently.
//
//	deployments.DefineScript("api", "", "kubectl apply -f deploy/").
//		Needs("database").
//		Hook(deployments.BeforeDeploy, tasks.DefineScript("migrate", "", "make migrate").Build()).
//		AddTo(m)
type Builder struct {
	deployment *Deployment
}

// Define declares a delegate deployment running fn.
func Define(id string, fn RunFunc) *Builder {
	return &Builder{deployment: &Deployment{ID: id, Uses: DelegateKind, Run: fn}}
}

// DefineWithDeps declares a delegate deployment running fn after needs.
func DefineWithDeps(id string, needs []string, fn RunFunc) *Builder {
	return Define(id, fn).Needs(needs...)
}

// DefineScript declares a shell deployment.
func DefineScript(id, shell, script string) *Builder {
	return &Builder{deployment: &Deployment{ID: id, Uses: ShellKind, Shell: shell, Script: script}}
}

// DefineUses declares a deployment implemented by the registered kind uses.
func DefineUses(id, uses string) *Builder {
	return &Builder{deployment: &Deployment{ID: id, Uses: uses}}
}

func (b *Builder) Name(name string) *Builder {
	b.deployment.Name = name
	return b
}

func (b *Builder) Description(description string) *Builder {
	b.deployment.Description = description
	return b
}

func (b *Builder) Needs(ids ...string) *Builder {
	b.deployment.Needs = append(b.deployment.Needs, ids...)
	return b
}

// Hook appends tasks to the hook for event.
func (b *Builder) Hook(event string, ts ...*tasks.Task) *Builder {
	if b.deployment.Hooks == nil {
		b.deployment.Hooks = make(map[string][]*tasks.Task)
	}
	b.deployment.Hooks[event] = append(b.deployment.Hooks[event], ts...)
	return b
}

func (b *Builder) Cwd(dir string) *Builder {
	b.deployment.Cwd = execution.Literal[*Context](dir)
	return b
}

func (b *Builder) Env(env map[string]string) *Builder {
	b.deployment.Env = execution.Literal[*Context](collections.StringMapFrom(env))
	return b
}

func (b *Builder) EnvFunc(fn func(context.Context, *Context) (*collections.StringMap, error)) *Builder {
	b.deployment.Env = execution.Computed(fn)
	return b
}

func (b *Builder) With(inputs map[string]any) *Builder {
	b.deployment.With = execution.Literal[*Context](collections.ObjectMapFrom(inputs))
	return b
}

func (b *Builder) Timeout(seconds int) *Builder {
	b.deployment.Timeout = execution.Literal[*Context](seconds)
	return b
}

func (b *Builder) If(cond bool) *Builder {
	b.deployment.If = execution.Literal[*Context](cond)
	return b
}

func (b *Builder) IfFunc(fn func(context.Context, *Context) (bool, error)) *Builder {
	b.deployment.If = execution.Computed(fn)
	return b
}

func (b *Builder) Force(force bool) *Builder {
	b.deployment.Force = execution.Literal[*Context](force)
	return b
}

func (b *Builder) Build() *Deployment { return b.deployment }

func (b *Builder) AddTo(m *Map) *Builder {
	m.Put(b.deployment)
	return b
}
