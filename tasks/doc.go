// Package tasks declares tasks and runs task graphs.
//
// A Task names a kind (its Uses field) and optional properties that are
// either literals or computed from the task Context when the task runs.
// Tasks are collected in a Map and executed with Run, which plans the
// dependency order and drives each task through the TaskPipeline service:
//
//	m := tasks.NewMap()
//	tasks.DefineScript("restore", "bash", "go mod download").AddTo(m)
//	tasks.DefineWithDeps("build", []string{"restore"}, build).AddTo(m)
//
//	if err := tasks.Register(rc.Services, nil); err != nil {
//		return err
//	}
//	summary, err := tasks.Run(ctx, rc, m, tasks.NewRegistry(), []string{"build"})
//
// Built-in kinds are delegate-task, which runs the task's Run function, and
// shell-task, which runs its Script.
package tasks
