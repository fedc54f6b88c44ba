package runner

import (
	"io"

	"github.com/kbukum/rex/ci"
	"github.com/kbukum/rex/deployments"
	"github.com/kbukum/rex/di"
	"github.com/kbukum/rex/tasks"
)

// Option configures the Runner during creation.
type Option func(*runnerOptions)

// runnerOptions collects all option values before applying to Runner.
type runnerOptions struct {
	out         io.Writer
	environ     []string
	vars        ci.VarSetter
	services    di.Container
	tasks       *tasks.Registry
	deployments *deployments.Registry
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *runnerOptions {
	o := &runnerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithOutput sets where log lines and summaries are written. The default is
// taken from the logging config's output.
func WithOutput(w io.Writer) Option {
	return func(o *runnerOptions) {
		o.out = w
	}
}

// WithEnviron sets the base environment of the run instead of os.Environ().
func WithEnviron(environ []string) Option {
	return func(o *runnerOptions) {
		o.environ = environ
	}
}

// WithVarSetter sets how env and secret changes are published. If not set,
// the CI system is detected from the process environment.
func WithVarSetter(v ci.VarSetter) Option {
	return func(o *runnerOptions) {
		o.vars = v
	}
}

// WithContainer sets a custom DI container for the run.
func WithContainer(c di.Container) Option {
	return func(o *runnerOptions) {
		o.services = c
	}
}

// WithTaskRegistry sets the task kinds available to the run.
func WithTaskRegistry(r *tasks.Registry) Option {
	return func(o *runnerOptions) {
		o.tasks = r
	}
}

// WithDeploymentRegistry sets the deployment kinds available to the run.
func WithDeploymentRegistry(r *deployments.Registry) Option {
	return func(o *runnerOptions) {
		o.deployments = r
	}
}
