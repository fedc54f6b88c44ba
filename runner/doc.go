// Package runner drives a rex invocation from a loaded config.
//
// A Runner owns the root execution context of one run: the environment
// built from the process env, env files and --env pairs, the masking
// writer and console sink, the CI variable setter and the unit services.
// Run discovers the rexfile, runs its setup tasks, the command's task, job
// or deployment graph, and its teardown tasks, then prints a summary.
//
//	r, err := runner.New(cfg)
//	if err != nil {
//	    return err
//	}
//	summary, err := r.Run(ctx, runner.CommandDeploy, []string{"api"})
//	os.Exit(runner.ExitCode(summary, err))
package runner
