package execution

import (
	"context"

	"github.com/kbukum/rex/errors"
)

type valueKind uint8

const (
	unset valueKind = iota
	literal
	computed
)

// Value is a unit property that is either a literal or computed from the
// unit's context C when the unit runs. The zero Value is unset.
type Value[C, T any] struct {
	kind    valueKind
	literal T
	compute func(ctx context.Context, c C) (T, error)
}

// Literal returns a Value holding v.
func Literal[C, T any](v T) Value[C, T] {
	return Value[C, T]{kind: literal, literal: v}
}

// Computed returns a Value produced by fn at resolution time.
func Computed[C, T any](fn func(ctx context.Context, c C) (T, error)) Value[C, T] {
	if fn == nil {
		return Value[C, T]{}
	}
	return Value[C, T]{kind: computed, compute: fn}
}

// IsSet reports whether the value was given.
func (v Value[C, T]) IsSet() bool { return v.kind != unset }

// IsComputed reports whether the value is computed.
func (v Value[C, T]) IsComputed() bool { return v.kind == computed }

// Static returns the literal value. ok is false for unset and computed values.
func (v Value[C, T]) Static() (T, bool) {
	if v.kind == literal {
		return v.literal, true
	}
	var zero T
	return zero, false
}

// Resolve returns the literal, the computed result, or fallback when unset.
// A panic in the compute function is returned as an error.
func (v Value[C, T]) Resolve(ctx context.Context, c C, fallback T) (out T, err error) {
	switch v.kind {
	case literal:
		return v.literal, nil
	case computed:
		defer func() {
			if r := recover(); r != nil {
				out, err = fallback, errors.FromPanic(r)
			}
		}()
		return v.compute(ctx, c)
	default:
		return fallback, nil
	}
}
