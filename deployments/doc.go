// Package deployments declares deployments and runs deployment graphs.
//
// The built-in kinds run a deployment's before:deploy hook, its body, then
// its after:deploy hook. Hooks are task lists run as nested task graphs, so
// tasks.Register must be called on the run's services alongside Register.
// Env and secrets set by hook tasks are visible to the deployment body.
package deployments
