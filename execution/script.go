package execution

import (
	"context"
	"fmt"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/process"
	"github.com/kbukum/rex/writer"
)

// RunScript runs script with the resolved cwd and env of state, streaming
// its output to the context writer. A `shell` input on state overrides
// shell. The outputs are code, shell, cwd and stdout.
func RunScript(ctx context.Context, c *Context, state *State, shell, script string) (*collections.Outputs, error) {
	if s, ok := state.Inputs.Get("shell"); ok {
		if str, ok := s.(string); ok && str != "" {
			shell = str
		}
	}

	out := writer.Lines(c.Writer)
	defer out.Flush()
	c.Writer.Debug("running script for %s in %s", state.ID, state.Cwd)

	res, err := process.RunScript(ctx, process.Script{
		Shell:  shell,
		Source: script,
		Dir:    state.Cwd,
		Env:    collections.Environ(state.Env),
		Stdout: out,
		Stderr: out,
	})
	if res == nil {
		return nil, errors.Execution(state.ID, err)
	}
	if err != nil {
		return nil, errors.Execution(state.ID,
			fmt.Errorf("the shell script for %s failed with code %d: %w", state.ID, res.ExitCode, err))
	}

	return collections.NewObjectMap().
		Set("code", res.ExitCode).
		Set("shell", shell).
		Set("cwd", state.Cwd).
		Set("stdout", res.Output()), nil
}
