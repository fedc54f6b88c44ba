package writer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/kbukum/rex/logger"
	"github.com/kbukum/rex/secrets"
)

// Writer is the structured log sink handed to every unit.
type Writer interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(err error, msg string, args ...any)
	Fatal(err error, msg string, args ...any)

	// StartGroup opens a collapsible section named name.
	StartGroup(name string)
	// EndGroup closes the innermost open section.
	EndGroup()
	// Progress reports percent completion of a named operation.
	Progress(name string, percent int)
	// Command echoes a command line before it runs.
	Command(name string, args []string)
	// WriteLine writes a raw line to the output.
	WriteLine(line string)

	// Enabled reports whether messages at level are written.
	Enabled(level zerolog.Level) bool
	// SecretMasker returns the masker applied to all output.
	SecretMasker() secrets.Masker
}

// Options configure a Console writer.
type Options struct {
	Log     logger.Config
	Out     io.Writer
	Masker  secrets.Masker
	NoColor bool
}

// Console is the default Writer. Log lines go through a zerolog logger and
// raw lines straight to the output; both are masked.
type Console struct {
	mu     sync.Mutex
	log    *logger.Logger
	out    io.Writer
	masker secrets.Masker
	depth  int

	group   *color.Color
	command *color.Color
	dim     *color.Color
}

// New creates a Console writer.
func New(opts Options) *Console {
	if opts.Out == nil {
		opts.Out = os.Stderr
	}
	if opts.Masker == nil {
		opts.Masker = secrets.NewDefaultMasker()
	}
	opts.Log.ApplyDefaults()
	if opts.NoColor {
		opts.Log.NoColor = true
	}

	out := secrets.NewWriter(opts.Out, opts.Masker)
	c := &Console{
		log:     logger.NewWithWriter(&opts.Log, "rex", out),
		out:     out,
		masker:  opts.Masker,
		group:   color.New(color.FgCyan, color.Bold),
		command: color.New(color.FgMagenta),
		dim:     color.New(color.Faint),
	}
	if opts.Log.NoColor {
		c.group.DisableColor()
		c.command.DisableColor()
		c.dim.DisableColor()
	}
	return c
}

// Discard returns a writer that drops everything. Secrets added to its
// masker are still tracked.
func Discard() *Console {
	return New(Options{
		Log: logger.Config{Level: "fatal", Format: "json"},
		Out: io.Discard,
	})
}

// Logger returns the underlying logger.
func (c *Console) Logger() *logger.Logger { return c.log }

func (c *Console) Trace(msg string, args ...any) {
	c.log.Trace(format(msg, args))
}

func (c *Console) Debug(msg string, args ...any) {
	c.log.Debug(format(msg, args))
}

func (c *Console) Info(msg string, args ...any) {
	c.log.Info(format(msg, args))
}

func (c *Console) Warn(msg string, args ...any) {
	c.log.Warn(format(msg, args))
}

func (c *Console) Error(err error, msg string, args ...any) {
	c.withErr(err).Error(messageOrErr(format(msg, args), err))
}

func (c *Console) Fatal(err error, msg string, args ...any) {
	c.withErr(err).Fatal(messageOrErr(format(msg, args), err))
}

func (c *Console) withErr(err error) *logger.Logger {
	if err == nil {
		return c.log
	}
	return c.log.WithError(err)
}

func (c *Console) StartGroup(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLocked(c.group.Sprintf("%s▶ %s", c.indentLocked(), name))
	c.depth++
}

func (c *Console) EndGroup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.depth > 0 {
		c.depth--
	}
}

func (c *Console) Progress(name string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent / 5
	bar := strings.Repeat("#", filled) + strings.Repeat(".", 20-filled)
	c.WriteLine(c.dim.Sprintf("%s [%s] %3d%%", name, bar, percent))
}

func (c *Console) Command(name string, args []string) {
	line := name
	if len(args) > 0 {
		line += " " + strings.Join(args, " ")
	}
	c.WriteLine(c.command.Sprintf("$ %s", line))
}

func (c *Console) WriteLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeLocked(c.indentLocked() + line)
}

func (c *Console) Enabled(level zerolog.Level) bool { return c.log.Enabled(level) }

func (c *Console) SecretMasker() secrets.Masker { return c.masker }

func (c *Console) indentLocked() string {
	return strings.Repeat("  ", c.depth)
}

func (c *Console) writeLocked(line string) {
	_, _ = io.WriteString(c.out, line+"\n")
}

func format(msg string, args []any) string {
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

func messageOrErr(msg string, err error) string {
	if msg == "" && err != nil {
		return err.Error()
	}
	return msg
}
