// Package dag resolves dependency graphs of rex units.
//
// Any node that exposes an id and the ids it needs can be placed in a Map.
// The same resolver serves tasks, jobs and deployments:
//   - MissingDependencies: needs ids that are not declared
//   - FindCyclicalReferences: units from which a cycle is reachable
//   - Flatten: dependency-first execution order for a set of targets
package dag
