// Package writer is the output sink of a rex run: leveled logging through
// the zerolog logger, plus group, progress and command echo primitives.
// Everything written passes through the run's secret masker.
package writer
