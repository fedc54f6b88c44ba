package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Run starts cmd in its own process group and waits for it. When ctx is done
// the whole group gets SIGTERM and, after the grace period, SIGKILL.
//
// A start failure returns a nil Result. A non-zero exit returns the Result
// with an *ExitError, and cancellation returns the Result with an error
// wrapping the context's cause.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Path == "" {
		return nil, errors.New("process: path is required")
	}
	if cmd.Dir != "" {
		if fi, err := os.Stat(cmd.Dir); err != nil || !fi.IsDir() {
			return nil, fmt.Errorf("process: working directory %s does not exist", cmd.Dir)
		}
	}

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...) //nolint:gosec // running user-defined programs is the point
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stdin = cmd.Stdin

	stdout := &tail{limit: cmd.capture()}
	stderr := &tail{limit: cmd.capture()}
	out, errOut := cmd.Stdout, cmd.Stderr
	if out != nil && out == errOut {
		out = &lockedWriter{w: out}
		errOut = out
	}
	c.Stdout = tee(stdout, out)
	c.Stderr = tee(stderr, errOut)

	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
	c.WaitDelay = cmd.grace()

	started := time.Now()
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("process: start %s: %w", cmd.Path, err)
	}
	err := c.Wait()

	res := &Result{
		Path:      cmd.Path,
		Stdout:    stdout.buf,
		Stderr:    stderr.buf,
		Truncated: stdout.truncated || stderr.truncated,
		ExitCode:  c.ProcessState.ExitCode(),
		Started:   started,
		Duration:  time.Since(started),
	}

	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("process: %s stopped: %w", cmd.Path, context.Cause(ctx))
	default:
		return res, &ExitError{Path: cmd.Path, Code: res.ExitCode, Err: err}
	}
}

func tee(t *tail, w io.Writer) io.Writer {
	if w == nil {
		return t
	}
	return io.MultiWriter(t, w)
}

// lockedWriter serializes the stdout and stderr copies of a process that
// share one destination.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
