// Package secrets masks secret values in text written by rex.
package secrets
