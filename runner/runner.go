package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/rex/ci"
	"github.com/kbukum/rex/config"
	"github.com/kbukum/rex/console"
	"github.com/kbukum/rex/deployments"
	"github.com/kbukum/rex/di"
	"github.com/kbukum/rex/discovery"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/jobs"
	"github.com/kbukum/rex/logger"
	"github.com/kbukum/rex/observability"
	"github.com/kbukum/rex/tasks"
	"github.com/kbukum/rex/util"
	"github.com/kbukum/rex/writer"
)

// Command selects what a run executes.
type Command string

const (
	CommandTask   Command = "task"
	CommandJob    Command = "job"
	CommandDeploy Command = "deploy"
	CommandList   Command = "list"
)

// DefaultTarget is run when no targets are given.
const DefaultTarget = "default"

// Runner drives one rex invocation: it discovers the rexfile, runs setup,
// the command's units and teardown, and reports the outcome.
//
// Example:
//
//	cfg, _ := config.Load(config.WithFlags(cmd.Flags()))
//	r, err := runner.New(cfg)
//	summary, err := r.Run(ctx, runner.CommandTask, args)
//	os.Exit(runner.ExitCode(summary, err))
type Runner struct {
	Cfg     *config.RunnerConfig
	RunID   string
	Context *execution.Context
	Writer  *writer.Console
	Logger  *logger.Logger
	// Units is set once the rexfile has been discovered.
	Units *discovery.Result

	tracer   trace.Tracer
	shutdown []func(context.Context) error
	onStart  []Hook
	onStop   []Hook
}

// New creates a runner from a loaded config. It builds the root execution
// context, its writer and console sink, and registers the unit services.
func New(cfg *config.RunnerConfig, opts ...Option) (*Runner, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	o := resolveOptions(opts)

	cwd := cfg.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		cwd = wd
	}
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	environ := o.environ
	if environ == nil {
		environ = os.Environ()
	}
	env, err := cfg.Environment(environ)
	if err != nil {
		return nil, err
	}

	out := o.out
	if out == nil {
		out = outputFor(cfg.Logging.Output)
	}
	w := writer.New(writer.Options{Log: cfg.Logging, Out: out, NoColor: cfg.Logging.NoColor})

	vars := o.vars
	if vars == nil {
		osEnv := ci.OSEnvironment{}
		if vars, err = ci.New(ci.Detect(osEnv), osEnv, os.Stdout); err != nil {
			return nil, err
		}
	}

	ctx := execution.NewContext()
	if o.services != nil {
		ctx.Services = o.services
	}
	ctx.Env = env
	ctx.Cwd = cwd
	ctx.Writer = w
	ctx.Vars = vars
	ctx.EnvironmentName = cfg.Context
	ctx.Bus.AddListener(console.NewSink(w, cfg.Logging.NoColor))
	ctx.Bus.AddListener(audit{log: w.Logger()})

	r := &Runner{
		Cfg:     cfg,
		RunID:   uuid.NewString(),
		Context: ctx,
		Writer:  w,
		Logger:  w.Logger(),
	}
	ctx.Variables.Set("run_id", r.RunID)

	if err := r.register(o); err != nil {
		return nil, err
	}
	return r, nil
}

// register adds the unit pipelines, registries and shared settings to the
// run's container.
func (r *Runner) register(o *runnerOptions) error {
	services := r.Context.Services
	if err := tasks.Register(services, o.tasks); err != nil {
		return err
	}
	if err := jobs.Register(services); err != nil {
		return err
	}
	if err := deployments.Register(services, o.deployments); err != nil {
		return err
	}
	if err := discovery.Register(services); err != nil {
		return err
	}
	if err := services.RegisterSingleton(di.Timeout, time.Duration(r.Cfg.UnitTimeout)*time.Second); err != nil {
		return err
	}
	if err := services.RegisterSingleton(di.Config, r.Cfg); err != nil {
		return err
	}
	return services.RegisterSingleton(di.Logger, r.Logger)
}

// Run executes command for targets. SIGINT and SIGTERM cancel the run, as
// does the configured run timeout. The returned summary is that of the
// command's units; setup or teardown failures fail it too. An error is
// returned only when the rexfile could not be loaded.
func (r *Runner) Run(ctx context.Context, command Command, targets []string) (*execution.Summary, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if r.Cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.Cfg.Timeout)*time.Second)
		defer cancel()
	}

	if err := r.setupTelemetry(ctx); err != nil {
		r.Writer.Warn("telemetry disabled: %v", err)
	}
	defer r.shutdownTelemetry()

	if len(targets) == 0 {
		targets = []string{DefaultTarget}
	}
	targets = util.Unique(targets)
	ctx, span := observability.StartRun(ctx, r.runTracer(), r.RunID, string(command), targets)
	defer span.End()

	r.logStart(command, targets)
	start := time.Now()

	units, err := discovery.Discover(ctx, r.Context, r.Cfg.File)
	if err != nil {
		r.Writer.Error(err, "unable to load rexfile")
		return nil, err
	}
	r.Units = units

	if command == CommandList {
		r.list()
		return execution.NewSummary(), nil
	}

	summary := execution.NewSummary()
	if err := r.runHooks(ctx, r.onStart); err != nil {
		summary.Fail(err)
		r.Writer.Error(err, "start hooks failed")
	} else if setup := r.runGroup(ctx, "setup", units.Setup); setup != nil && !setup.Succeeded() {
		summary.Fail(groupError("setup", setup))
	} else {
		summary = r.execute(ctx, command, targets)
	}

	// Teardown runs even when the run was cancelled.
	cleanup := context.WithoutCancel(ctx)
	if teardown := r.runGroup(cleanup, "teardown", units.Teardown); teardown != nil && !teardown.Succeeded() {
		summary.Fail(groupError("teardown", teardown))
	}
	if err := r.runHooks(cleanup, r.onStop); err != nil {
		summary.Fail(err)
		r.Writer.Error(err, "stop hooks failed")
	}

	console.PrintSummary(r.Writer, titleFor(command), summary)
	r.logFinish(summary, time.Since(start))
	return summary, nil
}

// execute runs the command's unit graph. Errors that keep the graph from
// running fail the returned summary.
func (r *Runner) execute(ctx context.Context, command Command, targets []string) *execution.Summary {
	var (
		s   *execution.Summary
		err error
	)
	switch command {
	case CommandTask:
		s, err = tasks.Run(ctx, r.Context, r.Units.Tasks, nil, targets)
	case CommandJob:
		s, err = jobs.Run(ctx, r.Context, r.Units.Jobs, targets)
	case CommandDeploy:
		s, err = deployments.Run(ctx, r.Context, r.Units.Deployments, nil, targets)
	default:
		err = errors.InvalidConfig("command", fmt.Sprintf("unknown command %q", command))
	}
	if err != nil {
		r.Writer.Error(err, "unable to run %s", command)
		s = execution.NewSummary()
		s.Fail(err)
	}
	return s
}

// runGroup runs setup or teardown tasks in order. It returns nil when there
// are none.
func (r *Runner) runGroup(ctx context.Context, name string, ts []*tasks.Task) *execution.Summary {
	if len(ts) == 0 {
		return nil
	}
	m := tasks.NewMap(ts...)
	r.Writer.Debug("running %s tasks: %v", name, m.Keys())
	s, err := tasks.Run(ctx, r.Context, m, nil, m.Keys())
	if err != nil {
		s = execution.NewSummary()
		s.Fail(err)
	}
	return s
}

func groupError(name string, s *execution.Summary) error {
	if s.Err != nil {
		return fmt.Errorf("%s failed: %w", name, s.Err)
	}
	return fmt.Errorf("%s finished with status %s", name, s.Status)
}

// list reports the discovered units on the bus.
func (r *Runner) list() {
	r.Context.Bus.Send(tasks.List{Tasks: r.Units.Tasks})
	r.Context.Bus.Send(jobs.List{Jobs: r.Units.Jobs})
	r.Context.Bus.Send(deployments.List{Deployments: r.Units.Deployments})
}

func (r *Runner) runTracer() trace.Tracer {
	if r.tracer != nil {
		return r.tracer
	}
	return observability.Tracer()
}

// ExitCode maps the outcome of Run to a process exit code.
func ExitCode(summary *execution.Summary, err error) int {
	if err != nil || summary == nil || !summary.Succeeded() {
		return 1
	}
	return 0
}

func titleFor(command Command) string {
	switch command {
	case CommandJob:
		return "Jobs"
	case CommandDeploy:
		return "Deployments"
	default:
		return "Tasks"
	}
}

func outputFor(name string) io.Writer {
	if name == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}
