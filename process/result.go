package process

import (
	"fmt"
	"strings"
	"time"
)

// Result is what is known about a process once it has exited.
type Result struct {
	Path string
	// Stdout and Stderr hold the tail of each stream, bounded by
	// Command.Capture.
	Stdout []byte
	Stderr []byte
	// Truncated is set when either stream outgrew the capture limit.
	Truncated bool
	// ExitCode is -1 when the process was ended by a signal.
	ExitCode int
	Started  time.Time
	Duration time.Duration
}

// Output returns the captured stdout with surrounding whitespace trimmed.
func (r *Result) Output() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(string(r.Stdout))
}

// ExitError reports a process that ran to completion with a non-zero code.
type ExitError struct {
	Path string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Code < 0 {
		return fmt.Sprintf("%s was terminated: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s exited with code %d", e.Path, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// tail keeps the last limit bytes written to it.
type tail struct {
	limit     int
	buf       []byte
	truncated bool
}

func (t *tail) Write(p []byte) (int, error) {
	if t.limit < 0 {
		return len(p), nil
	}
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
		t.truncated = true
	}
	return len(p), nil
}
