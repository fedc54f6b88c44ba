package discovery

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/deployments"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/jobs"
	"github.com/kbukum/rex/tasks"
	"github.com/kbukum/rex/validation"
)

// Check validates the rexfile's structure and its cross references: ids
// are unique per kind, needs and task references resolve, bodies are
// given and conditions compile. All problems are reported together.
func (f *Rexfile) Check() error {
	if err := validation.Validate(f); err != nil {
		return err
	}

	v := validation.New()

	taskIDs := make(map[string]bool, len(f.Tasks))
	for i, t := range f.Tasks {
		checkTask(v, fmt.Sprintf("tasks[%d]", i), t, taskIDs)
	}
	for i, t := range f.Tasks {
		checkNeeds(v, fmt.Sprintf("tasks[%d].needs", i), tasks.Kind, t.Needs, taskIDs)
	}

	jobIDs := make(map[string]bool, len(f.Jobs))
	for i, j := range f.Jobs {
		field := fmt.Sprintf("jobs[%d]", i)
		v.Unique(field+".id", j.ID, jobIDs)
		checkCondition(v, field+".if", j.If)

		members := make(map[string]bool, len(j.Tasks))
		for k, ref := range j.Tasks {
			checkRef(v, fmt.Sprintf("%s.tasks[%d]", field, k), ref, taskIDs, members)
		}
		for _, ref := range j.Tasks {
			for _, need := range f.refNeeds(ref) {
				v.Custom(members[need], field+".tasks",
					fmt.Sprintf("task %s needs %s, which is not in the job", ref.ID(), need))
			}
		}
	}
	for i, j := range f.Jobs {
		checkNeeds(v, fmt.Sprintf("jobs[%d].needs", i), jobs.Kind, j.Needs, jobIDs)
	}

	deploymentIDs := make(map[string]bool, len(f.Deployments))
	for i, d := range f.Deployments {
		field := fmt.Sprintf("deployments[%d]", i)
		v.Unique(field+".id", d.ID, deploymentIDs)
		v.Custom(d.Run != "" || d.Uses != "", field, "run or uses is required")
		checkCondition(v, field+".if", d.If)
		for _, event := range slices.Sorted(maps.Keys(d.Hooks)) {
			hooked := make(map[string]bool)
			for k, ref := range d.Hooks[event] {
				checkRef(v, fmt.Sprintf("%s.hooks.%s[%d]", field, event, k), ref, taskIDs, hooked)
			}
		}
	}
	for i, d := range f.Deployments {
		checkNeeds(v, fmt.Sprintf("deployments[%d].needs", i), deployments.Kind, d.Needs, deploymentIDs)
	}

	for i, id := range f.Setup {
		v.Custom(taskIDs[id], fmt.Sprintf("setup[%d]", i), "unknown task "+id)
	}
	for i, id := range f.Teardown {
		v.Custom(taskIDs[id], fmt.Sprintf("teardown[%d]", i), "unknown task "+id)
	}

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func checkTask(v *validation.Validator, field string, t TaskSpec, seen map[string]bool) {
	v.Unique(field+".id", t.ID, seen)
	v.Custom(t.Run != "" || t.Uses != "", field, "run or uses is required")
	checkCondition(v, field+".if", t.If)
}

func checkRef(v *validation.Validator, field string, ref TaskRef, taskIDs, members map[string]bool) {
	if ref.Inline != nil {
		checkTask(v, field, *ref.Inline, members)
		return
	}
	if !taskIDs[ref.Ref] {
		v.AddError(field, "unknown task "+ref.Ref)
		return
	}
	v.Unique(field, ref.Ref, members)
}

func checkNeeds(v *validation.Validator, field, kind string, needs []string, known map[string]bool) {
	for _, need := range needs {
		v.Custom(known[need], field, fmt.Sprintf("unknown %s %s", kind, need))
	}
}

func checkCondition(v *validation.Validator, field, expr string) {
	if expr == "" {
		return
	}
	if _, err := CompileCondition(expr); err != nil {
		v.AddError(field, err.Error())
	}
}

// refNeeds returns the needs of a referenced or inline task.
func (f *Rexfile) refNeeds(ref TaskRef) []string {
	if ref.Inline != nil {
		return ref.Inline.Needs
	}
	for _, t := range f.Tasks {
		if t.ID == ref.Ref {
			return t.Needs
		}
	}
	return nil
}

// Build turns a checked rexfile into units. Relative cwd values resolve
// against dir, the rexfile's directory.
func (f *Rexfile) Build(dir string) (*Result, error) {
	res := &Result{
		Tasks:       tasks.NewMap(),
		Jobs:        jobs.NewMap(),
		Deployments: deployments.NewMap(),
	}

	for _, spec := range f.Tasks {
		t, err := buildTask(spec, dir)
		if err != nil {
			return nil, err
		}
		res.Tasks.Put(t)
	}

	lookup := func(ref TaskRef) (*tasks.Task, error) {
		if ref.Inline != nil {
			return buildTask(*ref.Inline, dir)
		}
		t, ok := res.Tasks.Get(ref.Ref)
		if !ok {
			return nil, errors.NotFound(tasks.Kind, ref.Ref)
		}
		return t, nil
	}

	for _, spec := range f.Jobs {
		b := jobs.Define(spec.ID)
		for _, ref := range spec.Tasks {
			t, err := lookup(ref)
			if err != nil {
				return nil, err
			}
			b.Task(t)
		}
		b.Name(spec.Name).Description(spec.Description).Needs(spec.Needs...).Force(spec.Force)
		err := applyUnit[*jobs.Context, *jobs.Builder](b, jobs.Kind, spec.UnitSpec, dir, jobEnv)
		if err != nil {
			return nil, err
		}
		b.AddTo(res.Jobs)
	}

	for _, spec := range f.Deployments {
		b := deployments.DefineScript(spec.ID, spec.Shell, spec.Run)
		if spec.Uses != "" {
			b.Build().Uses = spec.Uses
		}
		for _, event := range slices.Sorted(maps.Keys(spec.Hooks)) {
			for _, ref := range spec.Hooks[event] {
				t, err := lookup(ref)
				if err != nil {
					return nil, err
				}
				b.Hook(event, t)
			}
		}
		b.Name(spec.Name).Description(spec.Description).Needs(spec.Needs...).Force(spec.Force)
		err := applyUnit[*deployments.Context, *deployments.Builder](b, deployments.Kind, spec.UnitSpec, dir, deploymentEnv)
		if err != nil {
			return nil, err
		}
		b.AddTo(res.Deployments)
	}

	for _, id := range f.Setup {
		t, err := lookup(TaskRef{Ref: id})
		if err != nil {
			return nil, err
		}
		res.Setup = append(res.Setup, t)
	}
	for _, id := range f.Teardown {
		t, err := lookup(TaskRef{Ref: id})
		if err != nil {
			return nil, err
		}
		res.Teardown = append(res.Teardown, t)
	}
	return res, nil
}

// buildTask builds a shell task, or a task of another registered kind that
// reads Shell and Script itself.
func buildTask(spec TaskSpec, dir string) (*tasks.Task, error) {
	b := tasks.DefineScript(spec.ID, spec.Shell, spec.Run)
	if spec.Uses != "" {
		b.Build().Uses = spec.Uses
	}
	b.Name(spec.Name).Description(spec.Description).Needs(spec.Needs...).Force(spec.Force)
	err := applyUnit[*tasks.Context, *tasks.Builder](b, tasks.Kind, spec.UnitSpec, dir, taskEnv)
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// unitBuilder is the property surface the task, job and deployment
// builders share.
type unitBuilder[C, B any] interface {
	Cwd(dir string) B
	Env(env map[string]string) B
	With(inputs map[string]any) B
	Timeout(seconds int) B
	IfFunc(fn func(context.Context, C) (bool, error)) B
}

// applyUnit sets the properties given in spec. Unset fields keep the
// inherited defaults. The `if` condition reads the env the unit inherits.
func applyUnit[C, B any](b unitBuilder[C, B], kind string, spec UnitSpec, dir string, env func(C) *collections.StringMap) error {
	if spec.Cwd != "" {
		b.Cwd(resolveDir(dir, spec.Cwd))
	}
	if len(spec.Env) > 0 {
		b.Env(spec.Env)
	}
	if spec.With != nil {
		b.With(spec.With)
	}
	if spec.Timeout > 0 {
		b.Timeout(spec.Timeout)
	}
	if spec.If != "" {
		cond, err := CompileCondition(spec.If)
		if err != nil {
			return errors.InvalidConfig(kind+" "+spec.ID, err.Error())
		}
		b.IfFunc(func(_ context.Context, c C) (bool, error) {
			return cond.Eval(env(c)), nil
		})
	}
	return nil
}

func taskEnv(c *tasks.Context) *collections.StringMap             { return c.Env }
func jobEnv(c *jobs.Context) *collections.StringMap               { return c.Env }
func deploymentEnv(c *deployments.Context) *collections.StringMap { return c.Env }

func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) || base == "" {
		return dir
	}
	return filepath.Join(base, dir)
}
