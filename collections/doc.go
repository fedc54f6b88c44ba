// Package collections provides the insertion-ordered map used for every
// registry, environment, secret, input and output map in rex.
package collections
