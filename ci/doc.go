// Package ci publishes variables to the hosting CI system so later steps of
// the CI job can see env and secret changes made by rex.
//
// Supported drivers are GitHub Actions (GITHUB_ENV file and ::add-mask::),
// Azure DevOps (##vso logging commands), "local" which does nothing, and
// "default" which only sets the variable in the rex process.
package ci
