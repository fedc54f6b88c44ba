// Package execution holds the pieces shared by every unit kind: the
// execution context threaded through the pipelines, resolvable property
// values, unit state and results, descriptor registries, and the unit state
// machine (gating, timeout race and result recording).
package execution
