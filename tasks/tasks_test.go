package tasks_test

import (
	"context"
	stderrors "errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/di"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/pipeline"
	"github.com/kbukum/rex/tasks"
	"github.com/kbukum/rex/testutil"
)

// --- test helpers ---

func setup(t *testing.T) *testutil.Harness {
	t.Helper()
	h := testutil.T(t)
	h.Must(tasks.Register(h.Ctx.Services, nil))
	return h
}

func run(t *testing.T, h *testutil.Harness, m *tasks.Map, targets ...string) *execution.Summary {
	t.Helper()
	summary, err := tasks.Run(context.Background(), h.Ctx, m, tasks.NewRegistry(), targets)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return summary
}

func statuses(s *execution.Summary) []execution.Status {
	out := make([]execution.Status, len(s.Results))
	for i, r := range s.Results {
		out[i] = r.Status
	}
	return out
}

func noop(context.Context, *tasks.Context) (*collections.Outputs, error) {
	return nil, nil
}

func failing(context.Context, *tasks.Context) (*collections.Outputs, error) {
	return nil, stderrors.New("boom")
}

// --- end to end ---

func TestRun_BuildOutputs(t *testing.T) {
	h := setup(t)
	m := tasks.NewMap()
	tasks.Define("build", func(context.Context, *tasks.Context) (*collections.Outputs, error) {
		return collections.NewObjectMap().Set("artifact", "x.bin"), nil
	}).AddTo(m)

	s := run(t, h, m, "build")

	if s.Status != execution.StatusSuccess || len(s.Results) != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Results[0].Outputs.Value("artifact") != "x.bin" {
		t.Errorf("outputs = %v", s.Results[0].Outputs.ToMap())
	}
	out, ok := h.Ctx.Outputs.Get("task.build")
	if !ok || out.(*collections.Outputs).Value("artifact") != "x.bin" {
		t.Errorf("aggregate outputs = %v", h.Ctx.Outputs.Keys())
	}
	if !h.Ctx.Outputs.Has("build") {
		t.Error("bare output key missing")
	}
	want := []string{tasks.KindStarted, tasks.KindCompleted}
	if got := h.Sink.Kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("messages = %v, want %v", got, want)
	}
}

func TestRun_DependencyOrder(t *testing.T) {
	h := setup(t)
	var order []string
	record := func(id string) tasks.RunFunc {
		return func(context.Context, *tasks.Context) (*collections.Outputs, error) {
			order = append(order, id)
			return nil, nil
		}
	}
	m := tasks.NewMap()
	tasks.DefineWithDeps("A", []string{"B", "C"}, record("A")).AddTo(m)
	tasks.DefineWithDeps("B", []string{"C"}, record("B")).AddTo(m)
	tasks.Define("C", record("C")).AddTo(m)

	run(t, h, m, "A")

	if !reflect.DeepEqual(order, []string{"C", "B", "A"}) {
		t.Errorf("order = %v", order)
	}
}

// --- failure handling ---

func TestRun_SkipAfterFailure(t *testing.T) {
	h := setup(t)
	m := tasks.NewMap()
	tasks.Define("A", failing).AddTo(m)
	tasks.Define("B", noop).AddTo(m)

	s := run(t, h, m, "A", "B")

	want := []execution.Status{execution.StatusFailure, execution.StatusSkipped}
	if got := statuses(s); !reflect.DeepEqual(got, want) {
		t.Fatalf("statuses = %v, want %v", got, want)
	}
	if s.Status != execution.StatusFailure || s.Err == nil {
		t.Errorf("aggregate = %s %v", s.Status, s.Err)
	}
}

func TestRun_ForceOverridesSkip(t *testing.T) {
	h := setup(t)
	ran := false
	m := tasks.NewMap()
	tasks.Define("A", failing).AddTo(m)
	tasks.Define("B", func(context.Context, *tasks.Context) (*collections.Outputs, error) {
		ran = true
		return nil, nil
	}).Force(true).AddTo(m)

	s := run(t, h, m, "A", "B")

	if !ran {
		t.Fatal("forced task did not run")
	}
	if got := s.Results[1].Status; got != execution.StatusSuccess {
		t.Errorf("B = %s", got)
	}
	if s.Status != execution.StatusFailure {
		t.Errorf("aggregate = %s, want failure", s.Status)
	}
}

func TestRun_ConditionalSkip(t *testing.T) {
	h := setup(t)
	calls := 0
	m := tasks.NewMap()
	tasks.Define("maybe", func(context.Context, *tasks.Context) (*collections.Outputs, error) {
		calls++
		return nil, nil
	}).IfFunc(func(_ context.Context, c *tasks.Context) (bool, error) {
		return c.Env.Value("CI") == "true", nil
	}).AddTo(m)

	s := run(t, h, m, "maybe")

	if calls != 0 {
		t.Errorf("body ran %d times", calls)
	}
	if s.Results[0].Status != execution.StatusSkipped || s.Status != execution.StatusSuccess {
		t.Errorf("result = %s aggregate = %s", s.Results[0].Status, s.Status)
	}
	if h.Sink.Count(tasks.KindSkipped) != 1 {
		t.Error("expected a skipped message")
	}
}

func TestRun_TimeoutCancels(t *testing.T) {
	h := setup(t)
	m := tasks.NewMap()
	tasks.Define("hang", func(ctx context.Context, _ *tasks.Context) (*collections.Outputs, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}).Timeout(1).AddTo(m)

	start := time.Now()
	s := run(t, h, m, "hang")

	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("took %s", elapsed)
	}
	if s.Results[0].Status != execution.StatusCancelled || s.Status != execution.StatusCancelled {
		t.Errorf("result = %s aggregate = %s", s.Results[0].Status, s.Status)
	}
}

func TestRun_TimedOutBodyChangesAreDropped(t *testing.T) {
	h := setup(t)
	done := make(chan struct{})
	m := tasks.NewMap()
	tasks.Define("stubborn", func(_ context.Context, c *tasks.Context) (*collections.Outputs, error) {
		defer close(done)
		time.Sleep(1500 * time.Millisecond)
		c.Secrets.Set("lateToken", "late")
		c.Env.Set("LATE", "1")
		c.State.Env.Set("LATE_STATE", "1")
		return collections.NewObjectMap().Set("k", "v"), nil
	}).Timeout(1).AddTo(m)

	s := run(t, h, m, "stubborn")
	<-done

	if s.Results[0].Status != execution.StatusCancelled {
		t.Fatalf("status = %s", s.Results[0].Status)
	}
	if h.Ctx.Secrets.Has("lateToken") || h.Ctx.Env.Has("LATE") || h.Ctx.Env.Has("LATE_TOKEN") {
		t.Errorf("late changes reached the run: env=%v secrets=%v", h.Ctx.Env.Keys(), h.Ctx.Secrets.Keys())
	}
	if h.Masker.Adds("late") != 0 {
		t.Error("late secret was masked")
	}
}

func TestRun_ResolutionErrorFails(t *testing.T) {
	h := setup(t)
	m := tasks.NewMap()
	tasks.Define("bad", noop).CwdFunc(func(context.Context, *tasks.Context) (string, error) {
		return "", stderrors.New("no cwd")
	}).AddTo(m)

	s := run(t, h, m, "bad")

	if s.Results[0].Status != execution.StatusFailure {
		t.Errorf("status = %s", s.Results[0].Status)
	}
	if h.Sink.Count(tasks.KindFailed) != 1 || h.Sink.Count(tasks.KindStarted) != 0 {
		t.Errorf("messages = %v", h.Sink.Kinds())
	}
}

// --- configuration errors ---

func TestRun_UnknownTarget(t *testing.T) {
	h := setup(t)
	s := run(t, h, tasks.NewMap(), "missing")

	if !errors.HasCode(s.Err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v", s.Err)
	}
	if h.Sink.Count(tasks.KindNotFound) != 1 {
		t.Error("expected a not found message")
	}
}

func TestRun_CyclicalReferences(t *testing.T) {
	h := setup(t)
	m := tasks.NewMap()
	tasks.DefineWithDeps("A", []string{"B"}, noop).AddTo(m)
	tasks.DefineWithDeps("B", []string{"A"}, noop).AddTo(m)

	s := run(t, h, m, "A")

	if s.Status != execution.StatusFailure || len(s.Results) != 0 {
		t.Fatalf("summary = %+v", s)
	}
	if h.Sink.Count(tasks.KindCyclicalReferences) != 1 {
		t.Error("expected a cyclical references message")
	}
}

func TestRun_MissingDependencies(t *testing.T) {
	h := setup(t)
	m := tasks.NewMap()
	tasks.DefineWithDeps("X", []string{"Y"}, noop).AddTo(m)

	s := run(t, h, m, "X")

	if !errors.HasCode(s.Err, errors.ErrCodeMissingDependency) {
		t.Errorf("err = %v", s.Err)
	}
	msgs := h.Sink.Messages()
	if len(msgs) == 0 {
		t.Fatal("no messages")
	}
	missing, ok := msgs[0].(tasks.MissingDependencies)
	if !ok || missing.Missing[0].Node.ID != "X" || !reflect.DeepEqual(missing.Missing[0].Missing, []string{"Y"}) {
		t.Errorf("message = %#v", msgs[0])
	}
}

func TestRun_UnknownKind(t *testing.T) {
	h := setup(t)
	m := tasks.NewMap()
	tasks.DefineUses("x", "does-not-exist").AddTo(m)

	s := run(t, h, m, "x")

	if !errors.HasCode(s.Results[0].Err, errors.ErrCodeUnknownKind) {
		t.Errorf("err = %v", s.Results[0].Err)
	}
}

func TestRun_MissingRequiredInputs(t *testing.T) {
	h := setup(t)
	registry := tasks.NewRegistry()
	h.Must(registry.Register(&tasks.Descriptor{
		ID:     "dotnet-build",
		Inputs: []execution.InputDescriptor{{Name: "project", Required: true}, {Name: "configuration", Default: "Release"}},
		Run: func(_ context.Context, c *tasks.Context) (*collections.Outputs, error) {
			return collections.NewObjectMap().
				Set("project", c.State.Env.Value("INPUT_PROJECT")).
				Set("configuration", c.State.Env.Value("INPUT_CONFIGURATION")), nil
		},
	}))
	m := tasks.NewMap()
	tasks.DefineUses("build", "dotnet-build").AddTo(m)
	tasks.DefineUses("build-app", "dotnet-build").With(map[string]any{"project": "app.csproj"}).AddTo(m)

	s, err := tasks.Run(context.Background(), h.Ctx, m, registry, []string{"build"})
	h.Must(err)
	if !errors.HasCode(s.Results[0].Err, errors.ErrCodeMissingInputs) {
		t.Fatalf("err = %v", s.Results[0].Err)
	}

	s, err = tasks.Run(context.Background(), h.Ctx, m, registry, []string{"build-app"})
	h.Must(err)
	out := s.Results[0].Outputs
	if out.Value("project") != "app.csproj" || out.Value("configuration") != "Release" {
		t.Errorf("outputs = %v", out.ToMap())
	}
}

// --- registries ---

func TestRegistry_DuplicateDescriptorFails(t *testing.T) {
	r := tasks.NewRegistry()
	err := r.Register(tasks.DelegateDescriptor())
	if !errors.HasCode(err, errors.ErrCodeAlreadyExists) {
		t.Errorf("err = %v", err)
	}
}

func TestMap_OverwriteKeepsPosition(t *testing.T) {
	m := tasks.NewMap()
	tasks.Define("t", noop).AddTo(m)
	tasks.Define("u", noop).AddTo(m)
	tasks.DefineWithDeps("t", []string{"u"}, noop).AddTo(m)

	if got := m.Keys(); !reflect.DeepEqual(got, []string{"t", "u"}) {
		t.Errorf("keys = %v", got)
	}
	if got := m.Value("t").Needs; !reflect.DeepEqual(got, []string{"u"}) {
		t.Errorf("needs = %v", got)
	}
}

// --- propagation ---

func TestRun_SecretPropagation(t *testing.T) {
	h := setup(t)
	var seen string
	m := tasks.NewMap()
	tasks.Define("login", func(_ context.Context, c *tasks.Context) (*collections.Outputs, error) {
		c.Secrets.Set("registryToken", "v1")
		return nil, nil
	}).AddTo(m)
	tasks.DefineWithDeps("rotate", []string{"login"}, func(_ context.Context, c *tasks.Context) (*collections.Outputs, error) {
		seen = c.Secrets.Value("registryToken")
		c.Secrets.Set("registryToken", "v2")
		return nil, nil
	}).AddTo(m)
	tasks.DefineWithDeps("use", []string{"rotate"}, noop).AddTo(m)

	s := run(t, h, m, "use")

	if s.Status != execution.StatusSuccess {
		t.Fatalf("status = %s", s.Status)
	}
	if seen != "v1" {
		t.Errorf("rotate saw %q", seen)
	}
	if got := h.Ctx.Secrets.Value("registryToken"); got != "v2" {
		t.Errorf("secret = %q", got)
	}
	if got := h.Ctx.Env.Value("REGISTRY_TOKEN"); got != "v2" {
		t.Errorf("env = %q", got)
	}
	if h.Masker.Adds("v1") != 1 || h.Masker.Adds("v2") != 1 {
		t.Errorf("mask adds = %v", h.Masker.Added)
	}
	if got := h.Vars.Secrets(); !reflect.DeepEqual(got, []string{"REGISTRY_TOKEN", "REGISTRY_TOKEN"}) {
		t.Errorf("published secrets = %v", got)
	}
}

func TestRun_EnvPropagation(t *testing.T) {
	h := setup(t)
	m := tasks.NewMap()
	tasks.Define("version", func(_ context.Context, c *tasks.Context) (*collections.Outputs, error) {
		c.Env.Set("VERSION", "1.2.3")
		return nil, nil
	}).AddTo(m)
	tasks.DefineWithDeps("tag", []string{"version"}, func(_ context.Context, c *tasks.Context) (*collections.Outputs, error) {
		return collections.NewObjectMap().Set("tag", "v"+c.State.Env.Value("VERSION")), nil
	}).Env(map[string]string{"LOCAL_ONLY": "1"}).AddTo(m)

	s := run(t, h, m, "tag")

	if s.Results[1].Outputs.Value("tag") != "v1.2.3" {
		t.Errorf("outputs = %v", s.Results[1].Outputs.ToMap())
	}
	if h.Ctx.Env.Value("VERSION") != "1.2.3" {
		t.Error("env not propagated")
	}
	if h.Ctx.Env.Has("LOCAL_ONLY") {
		t.Error("unit env leaked into the run context")
	}
}

// --- shell tasks ---

func TestRun_ShellTask(t *testing.T) {
	h := setup(t)
	m := tasks.NewMap()
	tasks.DefineScript("greet", "sh", "echo \"hello $INPUT_NAME\"").
		With(map[string]any{"name": "rex"}).
		AddTo(m)

	s := run(t, h, m, "greet")

	r := s.Results[0]
	if r.Status != execution.StatusSuccess {
		t.Fatalf("status = %s err = %v", r.Status, r.Err)
	}
	if r.Outputs.Value("stdout") != "hello rex" || r.Outputs.Value("code") != 0 {
		t.Errorf("outputs = %v", r.Outputs.ToMap())
	}
	if !strings.Contains(h.Output.String(), "hello rex") {
		t.Errorf("script output not written: %q", h.Output.String())
	}
}

func TestRun_ShellTaskFailure(t *testing.T) {
	h := setup(t)
	m := tasks.NewMap()
	tasks.DefineScript("fail", "sh", "exit 3").AddTo(m)

	s := run(t, h, m, "fail")

	if s.Results[0].Status != execution.StatusFailure {
		t.Fatalf("status = %s", s.Results[0].Status)
	}
	if !strings.Contains(s.Err.Error(), "code 3") {
		t.Errorf("err = %v", s.Err)
	}
}

// --- pipeline ---

func TestRun_CustomTaskPipeline(t *testing.T) {
	h := testutil.T(t)
	var trace []string
	p := tasks.NewPipeline().
		UseFunc(func(ctx context.Context, c *tasks.Context, next pipeline.Next) error {
			trace = append(trace, "before:"+c.Task.ID)
			err := next(ctx)
			trace = append(trace, "after:"+string(c.Result.Status))
			return err
		}).
		Use(tasks.ApplyContext{}, tasks.Execute{})
	h.Must(h.Ctx.Services.RegisterSingleton(di.TaskPipeline, p))
	h.Must(h.Ctx.Services.RegisterSingleton(di.SequentialTasksPipeline, tasks.DefaultSequentialPipeline()))

	m := tasks.NewMap()
	tasks.Define("a", noop).AddTo(m)
	run(t, h, m, "a")

	if want := []string{"before:a", "after:success"}; !reflect.DeepEqual(trace, want) {
		t.Errorf("trace = %v, want %v", trace, want)
	}
}

func TestRun_PipelineErrorFailsTask(t *testing.T) {
	h := testutil.T(t)
	p := tasks.NewPipeline().UseFunc(func(ctx context.Context, _ *tasks.Context, next pipeline.Next) error {
		_ = next(ctx)
		return next(ctx)
	})
	h.Must(h.Ctx.Services.RegisterSingleton(di.TaskPipeline, p))
	h.Must(h.Ctx.Services.RegisterSingleton(di.SequentialTasksPipeline, tasks.DefaultSequentialPipeline()))

	m := tasks.NewMap()
	tasks.Define("a", noop).AddTo(m)
	s := run(t, h, m, "a")

	if !errors.HasCode(s.Results[0].Err, errors.ErrCodeNextCalledTwice) {
		t.Errorf("err = %v", s.Results[0].Err)
	}
	if s.Status != execution.StatusFailure {
		t.Errorf("status = %s", s.Status)
	}
}

func TestRun_MissingServices(t *testing.T) {
	h := testutil.T(t)
	_, err := tasks.Run(context.Background(), h.Ctx, tasks.NewMap(), nil, nil)
	if !errors.HasCode(err, errors.ErrCodeServiceNotFound) {
		t.Errorf("err = %v", err)
	}
}
