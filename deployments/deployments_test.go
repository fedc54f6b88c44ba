package deployments_test

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/deployments"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/execution"
	"github.com/kbukum/rex/tasks"
	"github.com/kbukum/rex/testutil"
)

func setup(t *testing.T) *testutil.Harness {
	t.Helper()
	h := testutil.T(t)
	h.Must(tasks.Register(h.Ctx.Services, nil))
	h.Must(deployments.Register(h.Ctx.Services, nil))
	return h
}

func run(t *testing.T, h *testutil.Harness, m *deployments.Map, targets ...string) *execution.Summary {
	t.Helper()
	s, err := deployments.Run(context.Background(), h.Ctx, m, nil, targets)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return s
}

func recorder(order *[]string, id string) tasks.RunFunc {
	return func(context.Context, *tasks.Context) (*collections.Outputs, error) {
		*order = append(*order, id)
		return nil, nil
	}
}

func TestRun_HooksAroundBody(t *testing.T) {
	h := setup(t)
	var order []string
	m := deployments.NewMap()
	deployments.Define("api", func(context.Context, *deployments.Context) (*collections.Outputs, error) {
		order = append(order, "deploy")
		return collections.NewObjectMap().Set("url", "https://api.local"), nil
	}).
		Hook(deployments.BeforeDeploy, tasks.Define("migrate", recorder(&order, "migrate")).Build()).
		Hook(deployments.AfterDeploy, tasks.Define("smoke", recorder(&order, "smoke")).Build()).
		AddTo(m)

	s := run(t, h, m, "api")

	if s.Status != execution.StatusSuccess {
		t.Fatalf("status = %s err = %v", s.Status, s.Err)
	}
	if want := []string{"migrate", "deploy", "smoke"}; !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
	for _, key := range []string{"deployment.api", "api"} {
		out, ok := h.Ctx.Outputs.Get(key)
		if !ok {
			t.Fatalf("missing output %s", key)
		}
		if out.(*collections.Outputs).Value("url") != "https://api.local" {
			t.Errorf("%s = %v", key, out)
		}
	}
	if n := h.Sink.Count(deployments.KindHookTriggered); n != 2 {
		t.Errorf("hook messages = %d, want 2", n)
	}
}

func TestRun_FailedBeforeHookStopsDeployment(t *testing.T) {
	h := setup(t)
	ran := false
	m := deployments.NewMap()
	deployments.Define("api", func(context.Context, *deployments.Context) (*collections.Outputs, error) {
		ran = true
		return nil, nil
	}).
		Hook(deployments.BeforeDeploy, tasks.DefineScript("migrate", "sh", "exit 2").Build()).
		AddTo(m)

	s := run(t, h, m, "api")

	if ran {
		t.Error("body ran after a failed before:deploy hook")
	}
	if s.Status != execution.StatusFailure {
		t.Fatalf("status = %s", s.Status)
	}
	if !errors.HasCode(s.Err, errors.ErrCodeExecution) {
		t.Errorf("err = %v", s.Err)
	}
	if got := h.Sink.Kinds(); got[len(got)-1] != deployments.KindFailed {
		t.Errorf("kinds = %v", got)
	}
}

func TestRun_HookEnvAndSecretsReachBody(t *testing.T) {
	h := setup(t)
	var seenEnv, seenSecret string
	m := deployments.NewMap()
	deployments.Define("api", func(_ context.Context, c *deployments.Context) (*collections.Outputs, error) {
		seenEnv = c.State.Env.Value("IMAGE_TAG")
		seenSecret = c.Secrets.Value("dbPassword")
		return nil, nil
	}).
		Hook(deployments.BeforeDeploy, tasks.Define("prepare", func(_ context.Context, c *tasks.Context) (*collections.Outputs, error) {
			c.Env.Set("IMAGE_TAG", "1.2.3")
			c.Secrets.Set("dbPassword", "hunter2")
			return nil, nil
		}).Build()).
		AddTo(m)

	s := run(t, h, m, "api")

	if s.Status != execution.StatusSuccess {
		t.Fatalf("status = %s err = %v", s.Status, s.Err)
	}
	if seenEnv != "1.2.3" || seenSecret != "hunter2" {
		t.Errorf("body saw env %q secret %q", seenEnv, seenSecret)
	}
	if h.Ctx.Env.Value("DB_PASSWORD") != "hunter2" {
		t.Errorf("root env = %v", h.Ctx.Env.ToMap())
	}
	if h.Masker.Adds("hunter2") != 1 {
		t.Errorf("mask adds = %v", h.Masker.Added)
	}
}

func TestRun_UndeclaredEventIsIgnored(t *testing.T) {
	h := setup(t)
	registry, err := execution.NewRegistry[*deployments.Context](deployments.Kind).
		Register(&deployments.Descriptor{
			ID: "helm",
			Run: deployments.WithHooks(func(context.Context, *deployments.Context) (*collections.Outputs, error) {
				return nil, nil
			}),
		})
	h.Must(err)
	var order []string
	m := deployments.NewMap()
	deployments.DefineUses("chart", "helm").
		Hook(deployments.BeforeDeploy, tasks.Define("lint", recorder(&order, "lint")).Build()).
		AddTo(m)

	s, err := deployments.Run(context.Background(), h.Ctx, m, registry, []string{"chart"})
	h.Must(err)

	if s.Status != execution.StatusSuccess {
		t.Fatalf("status = %s err = %v", s.Status, s.Err)
	}
	if len(order) != 0 {
		t.Errorf("hook ran for an undeclared event: %v", order)
	}
}

func TestRun_ShellDeployment(t *testing.T) {
	h := setup(t)
	m := deployments.NewMap()
	deployments.DefineScript("site", "sh", "echo \"deploying $INPUT_ENVIRONMENT\"").
		With(map[string]any{"environment": "staging"}).
		AddTo(m)

	s := run(t, h, m, "site")

	r := s.Results[0]
	if r.Status != execution.StatusSuccess {
		t.Fatalf("status = %s err = %v", r.Status, r.Err)
	}
	if r.Outputs.Value("stdout") != "deploying staging" {
		t.Errorf("outputs = %v", r.Outputs.ToMap())
	}
	if !strings.Contains(h.Output.String(), "deploying staging") {
		t.Errorf("output = %q", h.Output.String())
	}
}

func TestRun_DependentSkippedAfterFailure(t *testing.T) {
	h := setup(t)
	m := deployments.NewMap()
	deployments.DefineScript("database", "sh", "exit 1").AddTo(m)
	deployments.DefineScript("api", "sh", "true").Needs("database").AddTo(m)

	s := run(t, h, m, "api")

	if s.Status != execution.StatusFailure {
		t.Fatalf("status = %s", s.Status)
	}
	if len(s.Results) != 2 || s.Results[1].Status != execution.StatusSkipped {
		t.Errorf("results = %+v", s.Results)
	}
}
