package jobs_test

import (
	"context"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/jobs"
	"github.com/kbukum/rex/tasks"
	"github.com/kbukum/rex/testutil"
)

func setup(t *testing.T) *testutil.Harness {
	t.Helper()
	h := testutil.T(t)
	h.Must(tasks.Register(h.Ctx.Services, nil))
	h.Must(jobs.Register(h.Ctx.Services))
	return h
}

func run(t *testing.T, h *testutil.Harness, m *jobs.Map, targets ...string) *execution.Summary {
	t.Helper()
	s, err := jobs.Run(context.Background(), h.Ctx, m, targets)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return s
}

func output(key string, value any) tasks.RunFunc {
	return func(context.Context, *tasks.Context) (*collections.Outputs, error) {
		return collections.NewObjectMap().Set(key, value), nil
	}
}

func TestRun_NamespacesTaskOutputs(t *testing.T) {
	h := setup(t)
	m := jobs.NewMap()
	jobs.Define("build",
		tasks.Define("compile", output("artifact", "app.bin")).Build(),
		tasks.Define("package-image", output("image", "app:1")).Build(),
	).AddTo(m)

	s := run(t, h, m, "build")

	if s.Status != execution.StatusSuccess {
		t.Fatalf("status = %s err = %v", s.Status, s.Err)
	}
	for _, key := range []string{"jobs.build.compile", "jobs.build.package_image"} {
		if !h.Ctx.Outputs.Has(key) {
			t.Errorf("missing output %s in %v", key, h.Ctx.Outputs.Keys())
		}
	}
	for _, key := range h.Ctx.Outputs.Keys() {
		if key == "task.compile" || key == "compile" {
			t.Errorf("task level output %s leaked to the job run", key)
		}
	}
	if !s.Results[0].Outputs.Has("jobs.build.compile") {
		t.Errorf("job result outputs = %v", s.Results[0].Outputs.Keys())
	}
}

func TestRun_JobOrderAndTaskOrder(t *testing.T) {
	h := setup(t)
	var order []string
	record := func(id string) tasks.RunFunc {
		return func(context.Context, *tasks.Context) (*collections.Outputs, error) {
			order = append(order, id)
			return nil, nil
		}
	}
	m := jobs.NewMap()
	jobs.DefineWithDeps("deploy", []string{"build"},
		tasks.Define("push", record("push")).Build(),
	).AddTo(m)
	jobs.Define("build",
		tasks.DefineWithDeps("test", []string{"compile"}, record("test")).Build(),
		tasks.Define("compile", record("compile")).Build(),
	).AddTo(m)

	run(t, h, m, "deploy")

	if want := []string{"compile", "test", "push"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestRun_FailedTaskFailsJobAndSkipsDependents(t *testing.T) {
	h := setup(t)
	m := jobs.NewMap()
	jobs.Define("build", tasks.Define("compile", func(context.Context, *tasks.Context) (*collections.Outputs, error) {
		return nil, stderrors.New("compiler error")
	}).Build()).AddTo(m)
	jobs.DefineWithDeps("deploy", []string{"build"}, tasks.Define("push", output("ok", true)).Build()).AddTo(m)

	s := run(t, h, m, "deploy")

	if s.Status != execution.StatusFailure {
		t.Fatalf("status = %s", s.Status)
	}
	if !errors.HasCode(s.Err, errors.ErrCodeExecution) {
		t.Errorf("err = %v", s.Err)
	}
	if got := s.Results[1].Status; got != execution.StatusSkipped {
		t.Errorf("deploy = %s", got)
	}
	if h.Sink.Count(jobs.KindFailed) != 1 || h.Sink.Count(tasks.KindFailed) != 1 {
		t.Errorf("messages = %v", h.Sink.Kinds())
	}
}

func TestRun_JobEnvReachesTasks(t *testing.T) {
	h := setup(t)
	var seen string
	m := jobs.NewMap()
	jobs.Define("release", tasks.Define("notes", func(_ context.Context, c *tasks.Context) (*collections.Outputs, error) {
		seen = c.State.Env.Value("CHANNEL") + "/" + c.State.Env.Value("INPUT_VERSION")
		c.Secrets.Set("releaseKey", "k-123")
		return nil, nil
	}).Build()).
		Env(map[string]string{"CHANNEL": "stable"}).
		With(map[string]any{"version": "2.0"}).
		AddTo(m)

	run(t, h, m, "release")

	if seen != "stable/2.0" {
		t.Errorf("task saw %q", seen)
	}
	if h.Ctx.Env.Has("CHANNEL") {
		t.Error("job env leaked into the run context")
	}
	if h.Ctx.Secrets.Value("releaseKey") != "k-123" || h.Ctx.Env.Value("RELEASE_KEY") != "k-123" {
		t.Error("secret not propagated to the run context")
	}
	if h.Masker.Adds("k-123") != 1 {
		t.Errorf("secret masked %d times", h.Masker.Adds("k-123"))
	}
}

func TestRun_TimedOutJobContributesNothing(t *testing.T) {
	h := setup(t)
	m := jobs.NewMap()
	jobs.Define("deploy",
		tasks.Define("login", func(_ context.Context, c *tasks.Context) (*collections.Outputs, error) {
			c.Secrets.Set("sessionToken", "s-1")
			return collections.NewObjectMap().Set("session", "s-1"), nil
		}).Build(),
		tasks.DefineWithDeps("wait", []string{"login"}, func(ctx context.Context, _ *tasks.Context) (*collections.Outputs, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}).Build(),
	).Timeout(1).AddTo(m)

	s := run(t, h, m, "deploy")

	if s.Results[0].Status != execution.StatusCancelled {
		t.Fatalf("status = %s", s.Results[0].Status)
	}
	for _, key := range h.Ctx.Outputs.Keys() {
		if strings.HasPrefix(key, "jobs.deploy.") {
			t.Errorf("cancelled job exposed output %s", key)
		}
	}
	if h.Ctx.Secrets.Has("sessionToken") || h.Ctx.Env.Has("SESSION_TOKEN") {
		t.Error("cancelled job propagated its secret")
	}
}

func TestRun_ConditionalJobSkipped(t *testing.T) {
	h := setup(t)
	ran := false
	m := jobs.NewMap()
	jobs.Define("nightly", tasks.Define("t", func(context.Context, *tasks.Context) (*collections.Outputs, error) {
		ran = true
		return nil, nil
	}).Build()).If(false).AddTo(m)

	s := run(t, h, m, "nightly")

	if ran || s.Results[0].Status != execution.StatusSkipped {
		t.Errorf("ran = %v status = %s", ran, s.Results[0].Status)
	}
}

func TestRun_CyclicalJobs(t *testing.T) {
	h := setup(t)
	m := jobs.NewMap()
	jobs.DefineWithDeps("a", []string{"b"}).AddTo(m)
	jobs.DefineWithDeps("b", []string{"a"}).AddTo(m)

	s := run(t, h, m, "a")

	if !errors.HasCode(s.Err, errors.ErrCodeCyclicalReference) {
		t.Errorf("err = %v", s.Err)
	}
	if h.Sink.Count(jobs.KindCyclicalReferences) != 1 {
		t.Error("expected a cyclical references message")
	}
}

func TestRun_RequiresTaskServices(t *testing.T) {
	h := testutil.T(t)
	h.Must(jobs.Register(h.Ctx.Services))
	m := jobs.NewMap()
	jobs.Define("build", tasks.Define("compile", output("a", 1)).Build()).AddTo(m)

	s := run(t, h, m, "build")

	if s.Status != execution.StatusFailure || !errors.HasCode(s.Results[0].Err, errors.ErrCodeServiceNotFound) {
		t.Errorf("status = %s err = %v", s.Status, s.Results[0].Err)
	}
}
