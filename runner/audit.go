package runner

import (
	"github.com/kbukum/rex/bus"
	"github.com/kbukum/rex/deployments"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/jobs"
	"github.com/kbukum/rex/logger"
	"github.com/kbukum/rex/tasks"
)

// audit writes one structured debug record per finished unit.
type audit struct {
	log *logger.Logger
}

func (a audit) Receive(msg bus.Message) {
	switch m := msg.(type) {
	case tasks.Completed:
		a.completed(tasks.Kind, m.State, m.Result)
	case jobs.Completed:
		a.completed(jobs.Kind, m.State, m.Result)
	case deployments.Completed:
		a.completed(deployments.Kind, m.State, m.Result)
	case tasks.Failed:
		a.failed(tasks.Kind, m.State, m.Err)
	case jobs.Failed:
		a.failed(jobs.Kind, m.State, m.Err)
	case deployments.Failed:
		a.failed(deployments.Kind, m.State, m.Err)
	}
}

func (a audit) completed(kind string, state *execution.State, res *execution.Result) {
	fields := logger.DurationFields(state.ID, res.Duration())
	a.log.Debug("Unit completed", fields, logger.Fields(logger.FieldKind, kind))
}

func (a audit) failed(kind string, state *execution.State, err error) {
	if err == nil {
		return
	}
	a.log.Debug("Unit failed", logger.ErrorFields(state.ID, err), logger.UnitFields(kind, state.ID))
}
