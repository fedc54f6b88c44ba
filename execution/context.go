package execution

import (
	"github.com/kbukum/rex/bus"
	"github.com/kbukum/rex/ci"
	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/di"
	"github.com/kbukum/rex/writer"
)

// Context is the ambient state of a run. The cancellation signal is the
// context.Context passed next to it on every call.
//
// One root Context is created per run. Each nested unit receives a Clone
// whose env, secrets and outputs are independent copies; changes flow back
// only through MergeSecrets, MergeEnv and explicit output propagation.
type Context struct {
	Env       *collections.StringMap
	Secrets   *collections.StringMap
	Variables *collections.ObjectMap
	Outputs   *collections.Outputs

	Services di.Container
	Cwd      string
	Writer   writer.Writer
	Bus      bus.Bus
	// Vars publishes env and secret changes to the hosting CI system.
	Vars ci.VarSetter

	EnvironmentName string

	announced *announcements
}

// NewContext creates a root context with empty maps, a new bus and
// container, a discarding writer and no CI publishing.
func NewContext() *Context {
	return &Context{
		Env:       collections.NewStringMap(),
		Secrets:   collections.NewStringMap(),
		Variables: collections.NewObjectMap(),
		Outputs:   collections.NewObjectMap(),
		Services:  di.NewContainer(),
		Writer:    writer.Discard(),
		Bus:       bus.New(),
		Vars:      ci.Nop{},
		announced: newAnnouncements(),
	}
}

// Clone returns a shallow copy with env, secrets and outputs cloned.
// Variables, services and published variable tracking are shared.
func (c *Context) Clone() *Context {
	cp := *c
	cp.Env = c.Env.Clone()
	cp.Secrets = c.Secrets.Clone()
	cp.Outputs = c.Outputs.Clone()
	if cp.Variables == nil {
		cp.Variables = collections.NewObjectMap()
	}
	return &cp
}
