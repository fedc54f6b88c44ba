// Package testutil provides fakes and a harness for testing rex executors.
//
// The harness builds a root execution context whose bus, CI variable setter
// and secret masker record everything they receive:
//
//	func TestBuild(t *testing.T) {
//	    h := testutil.T(t)
//	    if err := tasks.Register(h.Ctx.Services, nil); err != nil {
//	        t.Fatal(err)
//	    }
//	    summary, err := tasks.Run(context.Background(), h.Ctx, m, nil, []string{"build"})
//	    ...
//	    h.Sink.Kinds() // ["task:started", "task:completed"]
//	}
//
// Services registered on the harness context are closed when the test ends.
package testutil
