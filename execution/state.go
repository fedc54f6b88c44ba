package execution

import (
	"context"
	"time"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/util"
)

// Status is the lifecycle state of a unit or a run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSuccess   Status = "success"
	StatusFailure   Status = "failure"
	StatusCancelled Status = "cancelled"
	StatusSkipped   Status = "skipped"
)

// Halted reports whether a run in this status skips units that are not forced.
func (s Status) Halted() bool {
	return s == StatusFailure || s == StatusCancelled
}

// Terminal reports whether s is a final unit status.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailure, StatusCancelled, StatusSkipped:
		return true
	}
	return false
}

// Properties are the resolvable properties every unit kind declares.
// C is the unit's context type passed to computed values.
type Properties[C any] struct {
	Cwd     Value[C, string]
	Env     Value[C, *collections.StringMap]
	With    Value[C, *collections.Inputs]
	Timeout Value[C, int]
	If      Value[C, bool]
	Force   Value[C, bool]
}

// StaticForce reports whether force is the literal true. Computed force is
// unknown before resolution and counts as false.
func (p Properties[C]) StaticForce() bool {
	f, ok := p.Force.Static()
	return ok && f
}

// Resolve evaluates the properties in order cwd, timeout, force, if, env,
// with and stores them on state. env is merged onto state.Env; with replaces
// state.Inputs. Resolution stops at the first error.
func (p Properties[C]) Resolve(ctx context.Context, c C, state *State) error {
	var err error
	if state.Cwd, err = p.Cwd.Resolve(ctx, c, state.Cwd); err != nil {
		return err
	}
	if state.Timeout, err = p.Timeout.Resolve(ctx, c, state.Timeout); err != nil {
		return err
	}
	if state.Force, err = p.Force.Resolve(ctx, c, state.Force); err != nil {
		return err
	}
	if state.If, err = p.If.Resolve(ctx, c, state.If); err != nil {
		return err
	}
	env, err := p.Env.Resolve(ctx, c, nil)
	if err != nil {
		return err
	}
	state.Env.Merge(env)
	inputs, err := p.With.Resolve(ctx, c, nil)
	if err != nil {
		return err
	}
	if inputs != nil {
		state.Inputs = inputs.Clone()
	}
	return nil
}

// State is the resolved snapshot of a unit for one execution.
type State struct {
	ID          string
	Name        string
	Description string
	Uses        string
	Needs       []string

	Cwd     string
	Env     *collections.StringMap
	Inputs  *collections.Inputs
	Timeout int
	If      bool
	Force   bool
}

// NewState creates the default state for a unit: it runs (if true), is not
// forced, inherits cwd and uses the default timeout.
func NewState(id, name, description, uses string, needs []string, cwd string) *State {
	if name == "" {
		name = id
	}
	return &State{
		ID:          id,
		Name:        name,
		Description: description,
		Uses:        uses,
		Needs:       needs,
		Cwd:         cwd,
		Env:         collections.NewStringMap(),
		Inputs:      collections.NewObjectMap(),
		If:          true,
	}
}

// Clone returns a copy of s with its own env and inputs.
func (s *State) Clone() *State {
	cp := *s
	cp.Env = s.Env.Clone()
	cp.Inputs = s.Inputs.Clone()
	return &cp
}

// Result records the outcome of one unit.
type Result struct {
	ID         string
	Status     Status
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
	Outputs    *collections.Outputs
}

// NewResult creates a pending result.
func NewResult(id string) *Result {
	return &Result{ID: id, Status: StatusPending, Outputs: collections.NewObjectMap()}
}

// Start marks the result running.
func (r *Result) Start() {
	r.StartedAt = time.Now()
	r.Status = StatusRunning
}

// Stop records the finish time.
func (r *Result) Stop() {
	r.FinishedAt = time.Now()
	if r.StartedAt.IsZero() {
		r.StartedAt = r.FinishedAt
	}
}

// Succeed records outputs and marks the result successful.
func (r *Result) Succeed(outputs *collections.Outputs) {
	r.Stop()
	r.Status = StatusSuccess
	if outputs != nil {
		r.Outputs = outputs
	}
}

// Fail records err and marks the result failed.
func (r *Result) Fail(err error) {
	r.Stop()
	r.Status = StatusFailure
	r.Err = err
}

// Cancel marks the result cancelled. reason may be nil.
func (r *Result) Cancel(reason error) {
	r.Stop()
	r.Status = StatusCancelled
	r.Err = reason
}

// Skip marks the result skipped.
func (r *Result) Skip() {
	r.Stop()
	r.Status = StatusSkipped
}

// Duration is the time between start and finish.
func (r *Result) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Settled reports whether the body ran to completion, successfully or not.
// A cancelled body may still be running.
func (r *Result) Settled() bool {
	return r.Status == StatusSuccess || r.Status == StatusFailure
}

// Summary is the outcome of a graph run. The zero value is not usable; call
// NewSummary.
type Summary struct {
	Results []*Result
	Status  Status
	Err     error
}

// NewSummary creates a successful, empty summary.
func NewSummary() *Summary {
	return &Summary{Status: StatusSuccess}
}

// Fail marks the run failed. The first error is kept.
func (s *Summary) Fail(err error) {
	s.Status = StatusFailure
	if s.Err == nil {
		s.Err = err
	}
}

// Record appends r and folds its status into the run status. A failure
// after a cancellation marks the run failed; a run that already failed
// stays failed with its first error.
func (s *Summary) Record(r *Result) {
	s.Results = append(s.Results, r)
	switch r.Status {
	case StatusFailure:
		s.Fail(r.Err)
	case StatusCancelled:
		if s.Status != StatusFailure {
			s.Status = StatusCancelled
			if s.Err == nil {
				s.Err = r.Err
			}
		}
	}
}

// Succeeded reports whether the run finished successfully.
func (s *Summary) Succeeded() bool {
	return s.Status == StatusSuccess
}

// OutputKey normalizes a unit id for use in output keys: colons and dashes
// become underscores and camel case becomes snake case.
func OutputKey(id string) string {
	return util.Underscore(id)
}

// Unit is implemented by the per-kind unit contexts so middlewares can be
// shared across kinds.
type Unit interface {
	UnitKind() string
	UnitState() *State
	UnitResult() *Result
}
