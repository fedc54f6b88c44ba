package jobs

import (
	"github.com/kbukum/rex/bus"
	"github.com/kbukum/rex/dag"
	"github.com/kbukum/rex/execution"
)

// Message kinds.
const (
	KindStarted             = "job:started"
	KindCompleted           = "job:completed"
	KindFailed              = "job:failed"
	KindSkipped             = "job:skipped"
	KindCancelled           = "job:cancelled"
	KindMissingDependencies = "jobs:missing-dependencies"
	KindCyclicalReferences  = "jobs:cyclical-references"
	KindNotFound            = "job:not-found"
	KindList                = "jobs:list"
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

type MissingDependencies struct{ Missing []dag.Missing[*Job] }

type CyclicalReferences struct{ Jobs []*Job }

type NotFound struct{ ID string }

// List asks sinks to print the declared jobs.
type List struct{ Jobs *Map }

func (Started) Kind() string             { return KindStarted }
func (Completed) Kind() string           { return KindCompleted }
func (Failed) Kind() string              { return KindFailed }
func (Skipped) Kind() string             { return KindSkipped }
func (Cancelled) Kind() string           { return KindCancelled }
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

func (r reporter) CyclicalReferences(jobs []*Job) {
	r.bus.Send(CyclicalReferences{Jobs: jobs})
}

func (r reporter) MissingDependencies(missing []dag.Missing[*Job]) {
	r.bus.Send(MissingDependencies{Missing: missing})
}
