package console

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/kbukum/rex/bus"
	"github.com/kbukum/rex/dag"
	"github.com/kbukum/rex/deployments"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/jobs"
	"github.com/kbukum/rex/tasks"
	"github.com/kbukum/rex/writer"
)

// Sink renders bus messages on a writer. Tasks are shown as groups, jobs
// and deployments as headed lines.
type Sink struct {
	w writer.Writer

	mu   sync.Mutex
	open map[string]bool

	success *color.Color
	failure *color.Color
	skipped *color.Color
	heading *color.Color
}

// NewSink creates a sink writing to w.
func NewSink(w writer.Writer, noColor bool) *Sink {
	s := &Sink{
		w:       w,
		open:    make(map[string]bool),
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed, color.Bold),
		skipped: color.New(color.FgYellow),
		heading: color.New(color.FgCyan, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{s.success, s.failure, s.skipped, s.heading} {
			c.DisableColor()
		}
	}
	return s
}

// Receive implements bus.Sink.
func (s *Sink) Receive(msg bus.Message) {
	switch m := msg.(type) {
	case bus.LogMessage:
		s.log(m)

	case tasks.Started:
		s.startGroup(m.State)
	case tasks.Completed:
		s.completed(m.State, m.Result)
		s.endGroup(m.State)
	case tasks.Failed:
		s.failed(m.State, m.Err)
		s.endGroup(m.State)
	case tasks.Cancelled:
		s.w.WriteLine(s.skipped.Sprintf("%s cancelled", displayName(m.State)))
		s.endGroup(m.State)
	case tasks.Skipped:
		s.w.WriteLine(s.skipped.Sprintf("%s (skipped)", displayName(m.State)))
	case tasks.MissingDependencies:
		s.missing("task", dag.IDs(missingUnits(m.Missing)), flattenMissing(m.Missing))
	case tasks.CyclicalReferences:
		s.w.Error(nil, "found task cyclical references %s", strings.Join(dag.IDs(m.Tasks), ","))
	case tasks.NotFound:
		s.w.Error(nil, "task %s not found", m.ID)
	case tasks.List:
		s.list("Tasks", m.Tasks.Len(), func(yield func(id, name string, needs []string)) {
			for _, t := range m.Tasks.Values() {
				yield(t.ID, t.Description, t.Needs)
			}
		})

	case jobs.Started:
		s.heading1(m.State, "")
	case jobs.Completed:
		s.completed(m.State, m.Result)
	case jobs.Failed:
		s.failed(m.State, m.Err)
	case jobs.Cancelled:
		s.w.WriteLine(s.skipped.Sprintf("%s cancelled", displayName(m.State)))
	case jobs.Skipped:
		s.heading1(m.State, " (skipped)")
	case jobs.MissingDependencies:
		s.missing("job", dag.IDs(missingUnits(m.Missing)), flattenMissing(m.Missing))
	case jobs.CyclicalReferences:
		s.w.Error(nil, "found job cyclical references %s", strings.Join(dag.IDs(m.Jobs), ","))
	case jobs.NotFound:
		s.w.Error(nil, "job %s not found", m.ID)
	case jobs.List:
		s.list("Jobs", m.Jobs.Len(), func(yield func(id, name string, needs []string)) {
			for _, j := range m.Jobs.Values() {
				yield(j.ID, j.Description, j.Needs)
			}
		})

	case deployments.Started:
		s.heading1(m.State, "")
	case deployments.Completed:
		s.completed(m.State, m.Result)
	case deployments.Failed:
		s.failed(m.State, m.Err)
	case deployments.Cancelled:
		s.w.WriteLine(s.skipped.Sprintf("%s cancelled", displayName(m.State)))
	case deployments.Skipped:
		s.heading1(m.State, " (skipped)")
	case deployments.HookTriggered:
		s.w.Debug("running %s hook for %s", m.Event, m.State.ID)
	case deployments.MissingDependencies:
		s.missing("deployment", dag.IDs(missingUnits(m.Missing)), flattenMissing(m.Missing))
	case deployments.CyclicalReferences:
		s.w.Error(nil, "found deployment cyclical references %s", strings.Join(dag.IDs(m.Deployments), ","))
	case deployments.NotFound:
		s.w.Error(nil, "deployment %s not found", m.ID)
	case deployments.List:
		s.list("Deployments", m.Deployments.Len(), func(yield func(id, name string, needs []string)) {
			for _, d := range m.Deployments.Values() {
				yield(d.ID, d.Description, d.Needs)
			}
		})
	}
}

func (s *Sink) log(m bus.LogMessage) {
	if m.Err == nil && m.Message == "" {
		return
	}
	switch m.Level {
	case bus.LevelTrace:
		s.w.Trace("%s", m.Message)
	case bus.LevelDebug:
		s.w.Debug("%s", m.Message)
	case bus.LevelInfo:
		s.w.Info("%s", m.Message)
	case bus.LevelWarn:
		s.w.Warn("%s", m.Message)
	default:
		s.w.Error(m.Err, "%s", m.Message)
	}
}

func (s *Sink) startGroup(state *execution.State) {
	s.mu.Lock()
	s.open[state.ID] = true
	s.mu.Unlock()
	s.w.StartGroup(displayName(state))
}

func (s *Sink) endGroup(state *execution.State) {
	s.mu.Lock()
	open := s.open[state.ID]
	delete(s.open, state.ID)
	s.mu.Unlock()
	if open {
		s.w.EndGroup()
	}
}

func (s *Sink) heading1(state *execution.State, suffix string) {
	s.w.WriteLine(s.heading.Sprintf("❯❯❯❯❯ %s%s", displayName(state), suffix))
}

func (s *Sink) completed(state *execution.State, result *execution.Result) {
	s.w.WriteLine(fmt.Sprintf("%s completed in %s",
		displayName(state), s.success.Sprint(FormatDuration(result.Duration()))))
}

func (s *Sink) failed(state *execution.State, err error) {
	if err != nil {
		s.w.Error(err, "")
	}
	s.w.WriteLine(s.failure.Sprintf("❯❯❯❯❯ %s failed", displayName(state)))
}

func (s *Sink) missing(kind string, units, deps []string) {
	s.w.Error(nil, "%s %s reference missing dependencies %s",
		kind+"s", strings.Join(units, ","), strings.Join(deps, ","))
}

func (s *Sink) list(title string, n int, each func(yield func(id, description string, needs []string))) {
	s.w.WriteLine(s.heading.Sprintf("%s (%d)", title, n))
	each(func(id, description string, needs []string) {
		line := "  " + id
		if description != "" {
			line += "  " + description
		}
		if len(needs) > 0 {
			line += "  (needs: " + strings.Join(needs, ", ") + ")"
		}
		s.w.WriteLine(line)
	})
}

func displayName(state *execution.State) string {
	if state.Name != "" {
		return state.Name
	}
	return state.ID
}

func missingUnits[T dag.Node](missing []dag.Missing[T]) []T {
	units := make([]T, 0, len(missing))
	for _, m := range missing {
		units = append(units, m.Node)
	}
	return units
}

func flattenMissing[T dag.Node](missing []dag.Missing[T]) []string {
	var deps []string
	for _, m := range missing {
		deps = append(deps, m.Missing...)
	}
	return deps
}

// FormatDuration renders d as "1m 2s 345ms".
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	return fmt.Sprintf("%dm %ds %dms", ms/60000, (ms/1000)%60, ms%1000)
}
