// Package jobs declares jobs, ordered groups of tasks, and runs job graphs.
//
// A job runs its tasks as a nested task graph through the
// SequentialTasksPipeline service, so both tasks.Register and Register must
// be called on the run's services. Each task output task.<id> is exposed on
// the run context as jobs.<job>.<id>.
package jobs
