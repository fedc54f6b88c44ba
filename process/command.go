package process

import (
	"io"
	"time"
)

const (
	// DefaultGrace is how long a cancelled process group is given to exit
	// after SIGTERM before it is killed.
	DefaultGrace = 5 * time.Second
	// DefaultCapture is how many trailing bytes of each stream a Result keeps.
	DefaultCapture = 1 << 20
)

// Command is one program invocation.
type Command struct {
	// Path is the program, looked up in PATH when it has no separator.
	Path string
	Args []string
	Dir  string
	// Env is the complete environment of the process. Nil inherits the
	// environment of rex itself.
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Grace overrides DefaultGrace.
	Grace time.Duration
	// Capture overrides DefaultCapture. A negative value captures nothing.
	Capture int
}

func (c Command) grace() time.Duration {
	if c.Grace > 0 {
		return c.Grace
	}
	return DefaultGrace
}

func (c Command) capture() int {
	if c.Capture == 0 {
		return DefaultCapture
	}
	return c.Capture
}
