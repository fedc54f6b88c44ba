// Package console renders run progress for humans: a bus sink printing unit
// lifecycle messages and a summary printer for finished runs.
package console
