package pipeline

import (
	"context"

	"github.com/kbukum/rex/errors"
)

// Next runs the remainder of the chain.
type Next func(ctx context.Context) error

// Middleware is one handler in a Pipeline.
type Middleware[C any] interface {
	Run(ctx context.Context, c C, next Next) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc[C any] func(ctx context.Context, c C, next Next) error

// Run calls f.
func (f MiddlewareFunc[C]) Run(ctx context.Context, c C, next Next) error {
	return f(ctx, c, next)
}

// Pipeline is an ordered list of middlewares over a context type C.
// Register middlewares during setup; Run may then be called concurrently.
type Pipeline[C any] struct {
	middlewares []Middleware[C]
}

// New creates an empty pipeline.
func New[C any]() *Pipeline[C] {
	return &Pipeline[C]{}
}

// Use appends middlewares to the chain.
func (p *Pipeline[C]) Use(middlewares ...Middleware[C]) *Pipeline[C] {
	p.middlewares = append(p.middlewares, middlewares...)
	return p
}

// UseFunc appends a function middleware to the chain.
func (p *Pipeline[C]) UseFunc(fn func(ctx context.Context, c C, next Next) error) *Pipeline[C] {
	return p.Use(MiddlewareFunc[C](fn))
}

// Len returns the number of registered middlewares.
func (p *Pipeline[C]) Len() int { return len(p.middlewares) }

// Run drives c through the chain starting at the first middleware. A panic
// in any middleware is recovered and returned as an error.
func (p *Pipeline[C]) Run(ctx context.Context, c C) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.FromPanic(r)
		}
	}()
	return p.dispatch(ctx, c, 0)
}

func (p *Pipeline[C]) dispatch(ctx context.Context, c C, i int) error {
	if i >= len(p.middlewares) {
		return nil
	}
	called := false
	next := func(ctx context.Context) error {
		if called {
			return errors.NextCalledTwice(i)
		}
		called = true
		return p.dispatch(ctx, c, i+1)
	}
	return p.middlewares[i].Run(ctx, c, next)
}
