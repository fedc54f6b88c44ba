package discovery

import (
	"context"
	"os"
	"path/filepath"

	"github.com/kbukum/rex/deployments"
	"github.com/kbukum/rex/di"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/jobs"
	"github.com/kbukum/rex/pipeline"
	"github.com/kbukum/rex/tasks"
)

// SearchPaths are tried in order, relative to the working directory, when no
// rexfile is given.
var SearchPaths = []string{
	"rexfile.yaml",
	"rexfile.yml",
	filepath.Join(".rex", "rexfile.yaml"),
}

// Result holds the units discovered in a rexfile.
type Result struct {
	// File is the rexfile read, empty when none was found.
	File        string
	Tasks       *tasks.Map
	Jobs        *jobs.Map
	Deployments *deployments.Map
	// Setup and Teardown run before and after every command.
	Setup    []*tasks.Task
	Teardown []*tasks.Task
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{
		Tasks:       tasks.NewMap(),
		Jobs:        jobs.NewMap(),
		Deployments: deployments.NewMap(),
	}
}

// Context is passed through the discovery pipeline.
type Context struct {
	*execution.Context

	// File is the rexfile to read. Empty searches SearchPaths under Cwd.
	File    string
	Rexfile *Rexfile
	Result  *Result
}

// NewContext creates a discovery context that reads file, or searches for
// one when file is empty.
func NewContext(parent *execution.Context, file string) *Context {
	return &Context{Context: parent, File: file, Result: NewResult()}
}

// Pipeline locates, parses, checks and builds a rexfile.
type Pipeline struct {
	chain *pipeline.Pipeline[*Context]
}

// NewPipeline creates a discovery pipeline with no middlewares.
func NewPipeline() *Pipeline {
	return &Pipeline{chain: pipeline.New[*Context]()}
}

// DefaultPipeline creates the standard discovery pipeline.
func DefaultPipeline() *Pipeline {
	return NewPipeline().Use(Locate{}, Load{}, Check{}, Build{})
}

// Use appends middlewares to the pipeline.
func (p *Pipeline) Use(m ...pipeline.Middleware[*Context]) *Pipeline {
	p.chain.Use(m...)
	return p
}

// Run returns the discovered units. A missing rexfile is not an error; the
// result is empty.
func (p *Pipeline) Run(ctx context.Context, c *Context) (*Result, error) {
	if err := p.chain.Run(ctx, c); err != nil {
		return c.Result, err
	}
	return c.Result, nil
}

// Locate resolves c.File against the working directory, or searches
// SearchPaths when it is empty.
type Locate struct{}

func (Locate) Run(ctx context.Context, c *Context, next pipeline.Next) error {
	if c.File != "" {
		file := c.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(c.Cwd, file)
		}
		if !exists(file) {
			return errors.NotFound("rexfile", file)
		}
		c.File = file
		return next(ctx)
	}

	for _, name := range SearchPaths {
		file := filepath.Join(c.Cwd, name)
		if exists(file) {
			c.File = file
			return next(ctx)
		}
	}
	c.Bus.Warn("no rexfile found in %s", c.Cwd)
	return nil
}

// Load reads and parses the rexfile.
type Load struct{}

func (Load) Run(ctx context.Context, c *Context, next pipeline.Next) error {
	switch filepath.Ext(c.File) {
	case ".yaml", ".yml":
	default:
		return errors.InvalidConfig(c.File, "rexfile must be a .yaml or .yml file")
	}

	data, err := os.ReadFile(c.File)
	if err != nil {
		return errors.InvalidConfig(c.File, "unable to read rexfile").WithCause(err)
	}
	f, err := Parse(data)
	if err != nil {
		return errors.InvalidConfig(c.File, err.Error()).WithCause(err)
	}
	c.Rexfile = f
	c.Bus.Debug("loaded rexfile %s", c.File)
	return next(ctx)
}

// Check validates the parsed rexfile.
type Check struct{}

func (Check) Run(ctx context.Context, c *Context, next pipeline.Next) error {
	if err := c.Rexfile.Check(); err != nil {
		if appErr, ok := errors.AsAppError(err); ok {
			return appErr.WithDetail("file", c.File)
		}
		return err
	}
	return next(ctx)
}

// Build turns the rexfile into units.
type Build struct{}

func (Build) Run(ctx context.Context, c *Context, next pipeline.Next) error {
	res, err := c.Rexfile.Build(filepath.Dir(c.File))
	if err != nil {
		return err
	}
	res.File = c.File
	c.Result = res
	c.Bus.Debug("discovered %d tasks, %d jobs and %d deployments in %s",
		res.Tasks.Len(), res.Jobs.Len(), res.Deployments.Len(), c.File)
	return next(ctx)
}

// Discover runs the services' discovery pipeline for file under parent.Cwd,
// or the default pipeline when none is registered.
func Discover(ctx context.Context, parent *execution.Context, file string) (*Result, error) {
	p, ok := di.TryResolve[*Pipeline](parent.Services, di.DiscoveryPipeline)
	if !ok {
		p = DefaultPipeline()
	}
	return p.Run(ctx, NewContext(parent, file))
}

// Register adds the default discovery pipeline to services.
func Register(services di.Container) error {
	return services.RegisterSingleton(di.DiscoveryPipeline, DefaultPipeline())
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
