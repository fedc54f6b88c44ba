package deployments

import (
	"context"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
)

// Descriptor implements a deployment kind.
type Descriptor = execution.Descriptor[*Context]

// Registry holds the deployment kinds available to a run.
type Registry = execution.Registry[*Context]

// NewRegistry creates a registry holding the built-in deployment kinds.
func NewRegistry() *Registry {
	return execution.NewRegistry[*Context](Kind).
		MustRegister(DelegateDescriptor()).
		MustRegister(ShellDescriptor())
}

// WithHooks wraps body so the before:deploy hook runs first and the
// after:deploy hook runs once body succeeds.
func WithHooks(body RunFunc) RunFunc {
	return func(ctx context.Context, c *Context) (*collections.Outputs, error) {
		if err := c.Trigger(ctx, BeforeDeploy); err != nil {
			return nil, err
		}
		outputs, err := body(ctx, c)
		if err != nil {
			return outputs, err
		}
		if err := c.Trigger(ctx, AfterDeploy); err != nil {
			return outputs, err
		}
		return outputs, nil
	}
}

// DelegateDescriptor runs the deployment's inline Run function between its
// deploy hooks.
func DelegateDescriptor() *Descriptor {
	return &Descriptor{
		ID:          DelegateKind,
		Description: "runs an inline function between the deploy hooks",
		Events:      []string{BeforeDeploy, AfterDeploy},
		Run: WithHooks(func(ctx context.Context, c *Context) (*collections.Outputs, error) {
			if c.Deployment.Run == nil {
				return nil, errors.InvalidConfig("deployment "+c.Deployment.ID, "deployment has no run function")
			}
			return c.Deployment.Run(ctx, c)
		}),
	}
}

// ShellDescriptor runs the deployment's script between its deploy hooks.
func ShellDescriptor() *Descriptor {
	return &Descriptor{
		ID:          ShellKind,
		Description: "runs an inline script between the deploy hooks",
		Events:      []string{BeforeDeploy, AfterDeploy},
		Inputs: []execution.InputDescriptor{
			{Name: "shell", Description: "interpreter for the script", Type: "string"},
		},
		Outputs: []execution.OutputDescriptor{
			{Name: "code", Type: "number"},
			{Name: "shell", Type: "string"},
			{Name: "cwd", Type: "string"},
			{Name: "stdout", Type: "string"},
		},
		Run: WithHooks(func(ctx context.Context, c *Context) (*collections.Outputs, error) {
			return execution.RunScript(ctx, c.Context, c.State, c.Deployment.Shell, c.Deployment.Script)
		}),
	}
}
