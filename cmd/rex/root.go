package main

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/rex/config"
	"github.com/kbukum/rex/runner"
	"github.com/kbukum/rex/version"
)

// exitStatus reports a finished run that did not succeed. The summary has
// already been printed.
type exitStatus int

func (e exitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		var status exitStatus
		if stderrors.As(err, &status) {
			return int(status)
		}
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rex",
		Short: "Run the tasks, jobs and deployments of a rexfile",
		Long: `rex runs the units declared in rexfile.yaml (or rexfile.yml, or
.rex/rexfile.yaml) in dependency order, one at a time.

Settings are read from .rex/config.yaml, REX_* environment variables and
flags, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringP("file", "f", "", "rexfile to load instead of searching the working directory")
	flags.String("cwd", "", "working directory of the run")
	flags.String("context", config.DefaultContext, "name of the environment the run targets")
	flags.IntP("timeout", "t", 0, "seconds the whole run may take, 0 for no limit")
	flags.Int("unit-timeout", 180, "default seconds a single unit may take")
	flags.StringArrayP("env", "e", nil, "KEY=VALUE added to the run environment (repeatable)")
	flags.StringArray("env-file", nil, "dotenv file added to the run environment (repeatable)")
	flags.StringP("log-level", "l", "info", "trace, debug, info, warn, error or fatal")
	flags.String("log-format", "console", "console, text or json")
	flags.Bool("no-color", false, "disable coloured output")
	flags.Bool("trace", false, "export OpenTelemetry traces")
	flags.Bool("metrics", false, "export OpenTelemetry metrics")
	flags.String("otlp-endpoint", "localhost:4318", "OTLP HTTP endpoint host:port")

	root.AddCommand(
		newRunCmd(runner.CommandTask, "task [targets...]", []string{"run"}, "Run tasks and the tasks they need"),
		newRunCmd(runner.CommandJob, "job [targets...]", nil, "Run jobs and the jobs they need"),
		newRunCmd(runner.CommandDeploy, "deploy [targets...]", nil, "Run deployments with their hooks"),
		newRunCmd(runner.CommandList, "list", []string{"ls"}, "List the tasks, jobs and deployments of the rexfile"),
		newVersionCmd(),
	)
	return root
}

func newRunCmd(command runner.Command, use string, aliases []string, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.WithFlags(cmd.Flags()))
			if err != nil {
				return err
			}

			out := cmd.ErrOrStderr()
			if cfg.Logging.Output == "stdout" {
				out = cmd.OutOrStdout()
			}
			r, err := runner.New(cfg, runner.WithOutput(out))
			if err != nil {
				return err
			}

			summary, err := r.Run(cmd.Context(), command, args)
			if err != nil {
				return exitStatus(runner.ExitCode(summary, err))
			}
			if code := runner.ExitCode(summary, nil); code != 0 {
				return exitStatus(code)
			}
			return nil
		},
	}
	if command == runner.CommandList {
		cmd.Args = cobra.NoArgs
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rex version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("rex " + version.GetFullVersion())
		},
	}
}
