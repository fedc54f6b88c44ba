package runner

import (
	"strings"
	"time"

	"github.com/kbukum/rex/console"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/logger"
	"github.com/kbukum/rex/util"
)

// logStart records what the run is about to do.
func (r *Runner) logStart(command Command, targets []string) {
	file := util.Coalesce(r.Cfg.File, "(search)")
	r.Logger.Debug("Starting rex run", logger.Fields(
		"run_id", r.RunID,
		"command", string(command),
		"targets", strings.Join(targets, ","),
		"context", r.Cfg.Context,
		"cwd", r.Context.Cwd,
		"file", file,
	))
}

// logFinish records the outcome and duration of the run.
func (r *Runner) logFinish(s *execution.Summary, elapsed time.Duration) {
	counts := make(map[execution.Status]int)
	for _, res := range s.Results {
		counts[res.Status]++
	}
	fields := logger.Fields(
		"run_id", r.RunID,
		"status", string(s.Status),
		"duration", console.FormatDuration(elapsed),
		"succeeded", counts[execution.StatusSuccess],
		"failed", counts[execution.StatusFailure],
		"cancelled", counts[execution.StatusCancelled],
		"skipped", counts[execution.StatusSkipped],
	)
	if s.Succeeded() {
		r.Logger.Debug("Run finished", fields)
		return
	}
	r.Logger.Info("Run finished", fields)
}
