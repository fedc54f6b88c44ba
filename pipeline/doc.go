// Package pipeline provides the ordered middleware chain every rex executor
// is built on.
//
// Middlewares run in registration order: the first one registered is
// outermost (executes first on the way in, last on the way out). Each
// middleware receives a continuation that runs the rest of the chain; it may
// skip it to short-circuit, but calling it twice is an error.
//
// # Usage
//
//	p := pipeline.New[*TaskPipelineContext]()
//	p.UseFunc(func(ctx context.Context, c *TaskPipelineContext, next pipeline.Next) error {
//	    // before
//	    err := next(ctx)
//	    // after
//	    return err
//	})
//	err := p.Run(ctx, c)
package pipeline
