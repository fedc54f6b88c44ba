package tasks

import (
	"context"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
)

// Descriptor implements a task kind.
type Descriptor = execution.Descriptor[*Context]

// Registry holds the task kinds available to a run.
type Registry = execution.Registry[*Context]

// NewRegistry creates a registry holding the built-in task kinds.
func NewRegistry() *Registry {
	return execution.NewRegistry[*Context](Kind).
		MustRegister(DelegateDescriptor()).
		MustRegister(ShellDescriptor())
}

// DelegateDescriptor runs the task's inline Run function.
func DelegateDescriptor() *Descriptor {
	return &Descriptor{
		ID:          DelegateKind,
		Description: "runs an inline function",
		Inputs: []execution.InputDescriptor{
			{Name: "shell", Description: "shell used by scripts inside the function", Type: "string"},
		},
		Run: func(ctx context.Context, c *Context) (*collections.Outputs, error) {
			if c.Task.Run == nil {
				return nil, errors.InvalidConfig("task "+c.Task.ID, "task has no run function")
			}
			return c.Task.Run(ctx, c)
		},
	}
}

// ShellDescriptor runs the task's script. The `shell` input overrides the
// task's shell.
func ShellDescriptor() *Descriptor {
	return &Descriptor{
		ID:          ShellKind,
		Description: "runs an inline script",
		Inputs: []execution.InputDescriptor{
			{Name: "shell", Description: "interpreter for the script", Type: "string"},
		},
		Outputs: []execution.OutputDescriptor{
			{Name: "code", Type: "number"},
			{Name: "shell", Type: "string"},
			{Name: "cwd", Type: "string"},
			{Name: "stdout", Type: "string"},
		},
		Run: func(ctx context.Context, c *Context) (*collections.Outputs, error) {
			return execution.RunScript(ctx, c.Context, c.State, c.Task.Shell, c.Task.Script)
		},
	}
}
