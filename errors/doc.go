// Package errors provides the structured error type used across rex.
// Every failure the runner reports carries a machine-readable code so callers
// can tell configuration errors from execution errors.
package errors
