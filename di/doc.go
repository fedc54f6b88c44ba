// Package di holds the shared services of a rex run.
//
// The root execution context carries one Container. Nested executors resolve
// the pipelines they delegate to (for example a job resolving the sequential
// tasks pipeline) from it instead of constructing their own.
//
// Services are registered during setup and only read during execution.
package di
