package tasks

import (
	"github.com/kbukum/rex/bus"
	"github.com/kbukum/rex/dag"
	"github.com/kbukum/rex/execution"
)

// Message kinds.
const (
	KindStarted             = "task:started"
	KindCompleted           = "task:completed"
	KindFailed              = "task:failed"
	KindSkipped             = "task:skipped"
	KindCancelled           = "task:cancelled"
	KindMissingDependencies = "tasks:missing-dependencies"
	KindCyclicalReferences  = "tasks:cyclical-references"
	KindNotFound            = "task:not-found"
	KindList                = "tasks:list"
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

type MissingDependencies struct{ Missing []dag.Missing[*Task] }

type CyclicalReferences struct{ Tasks []*Task }

type NotFound struct{ ID string }

// List asks sinks to print the declared tasks.
type List struct{ Tasks *Map }

func (Started) Kind() string             { return KindStarted }
func (Completed) Kind() string           { return KindCompleted }
func (Failed) Kind() string              { return KindFailed }
func (Skipped) Kind() string             { return KindSkipped }
func (Cancelled) Kind() string           { return KindCancelled }
func (MissingDependencies) Kind() string { return KindMissingDependencies }
func (CyclicalReferences) Kind() string  { return KindCyclicalReferences }
func (NotFound) Kind() string            { return KindNotFound }
func (List) Kind() string                { return KindList }

// events sends the lifecycle of one task on the bus.
type events struct {
	bus   bus.Bus
	state *execution.State
}

func (e events) Started()                           { e.bus.Send(Started{State: e.state}) }
func (e events) Completed(result *execution.Result) { e.bus.Send(Completed{State: e.state, Result: result}) }
func (e events) Failed(err error)                   { e.bus.Send(Failed{State: e.state, Err: err}) }
func (e events) Skipped()                           { e.bus.Send(Skipped{State: e.state}) }
func (e events) Cancelled()                         { e.bus.Send(Cancelled{State: e.state}) }

// reporter sends graph diagnostics on the bus.
type reporter struct{ bus bus.Bus }

func (r reporter) CyclicalReferences(tasks []*Task) {
	r.bus.Send(CyclicalReferences{Tasks: tasks})
}

func (r reporter) MissingDependencies(missing []dag.Missing[*Task]) {
	r.bus.Send(MissingDependencies{Missing: missing})
}
