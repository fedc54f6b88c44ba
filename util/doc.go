// Package util provides small helpers shared by the rex packages: identifier
// case conversion for environment projection, KEY=VALUE parsing and a few
// generic slice functions.
package util
