package runner

import (
	"context"
	"fmt"
)

// Hook is a callback run around every command, after the rexfile is
// discovered. Stop hooks run even when the command failed.
type Hook func(ctx context.Context, r *Runner) error

// OnStart registers hooks that run before the setup tasks.
func (r *Runner) OnStart(hooks ...Hook) {
	r.onStart = append(r.onStart, hooks...)
}

// OnStop registers hooks that run after the teardown tasks.
func (r *Runner) OnStop(hooks ...Hook) {
	r.onStop = append(r.onStop, hooks...)
}

// runHooks executes hooks sequentially, returning the first error.
func (r *Runner) runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx, r); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
