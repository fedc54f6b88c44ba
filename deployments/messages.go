package deployments

import (
	"github.com/kbukum/rex/bus"
	"github.com/kbukum/rex/dag"
	"github.com/kbukum/rex/execution"
)

// Message kinds.
const (
	KindStarted             = "deployment:started"
	KindCompleted           = "deployment:completed"
	KindFailed              = "deployment:failed"
	KindSkipped             = "deployment:skipped"
	KindCancelled           = "deployment:cancelled"
	KindHookTriggered       = "deployment:hook"
	KindMissingDependencies = "deployments:missing-dependencies"
	KindCyclicalReferences  = "deployments:cyclical-references"
	KindNotFound            = "deployment:not-found"
	KindList                = "deployments:list"
)

type Started struct{ State *execution.State }

type Completed struct {
	State  *execution.State
	Result *execution.Result
}

type Failed struct {
	State *execution.State
	Err   error
}

type Skipped struct{ State *execution.State }

type Cancelled struct{ State *execution.State }

// HookTriggered is sent before the tasks of a hook run.
type HookTriggered struct {
	State *execution.State
	Event string
}

type MissingDependencies struct{ Missing []dag.Missing[*Deployment] }

type CyclicalReferences struct{ Deployments []*Deployment }

type NotFound struct{ ID string }

type List struct{ Deployments *Map }

func (Started) Kind() string             { return KindStarted }
func (Completed) Kind() string           { return KindCompleted }
func (Failed) Kind() string              { return KindFailed }
func (Skipped) Kind() string             { return KindSkipped }
func (Cancelled) Kind() string           { return KindCancelled }
func (HookTriggered) Kind() string       { return KindHookTriggered }
func (MissingDependencies) Kind() string { return KindMissingDependencies }
func (CyclicalReferences) Kind() string  { return KindCyclicalReferences }
func (NotFound) Kind() string            { return KindNotFound }
func (List) Kind() string                { return KindList }

type events struct {
	bus   bus.Bus
	state *execution.State
}

func (e events) Started()                           { e.bus.Send(Started{State: e.state}) }
func (e events) Completed(result *execution.Result) { e.bus.Send(Completed{State: e.state, Result: result}) }
func (e events) Failed(err error)                   { e.bus.Send(Failed{State: e.state, Err: err}) }
func (e events) Skipped()                           { e.bus.Send(Skipped{State: e.state}) }
func (e events) Cancelled()                         { e.bus.Send(Cancelled{State: e.state}) }

type reporter struct{ bus bus.Bus }

func (r reporter) CyclicalReferences(deployments []*Deployment) {
	r.bus.Send(CyclicalReferences{Deployments: deployments})
}

func (r reporter) MissingDependencies(missing []dag.Missing[*Deployment]) {
	r.bus.Send(MissingDependencies{Missing: missing})
}
