package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/rex/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "build")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "   ")
	if !v2.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorUnitID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"build", true},
		{"dotnet:build", true},
		{"package-image.v2", true},
		{"", false},
		{"-leading", false},
		{"has space", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			v := New().UnitID("id", tt.id)
			if v.HasErrors() == tt.valid {
				t.Errorf("UnitID(%q) errors = %v", tt.id, v.Errors())
			}
		})
	}
}

func TestValidatorUnique(t *testing.T) {
	seen := map[string]bool{}
	v := New().
		Unique("tasks[0].id", "build", seen).
		Unique("tasks[1].id", "test", seen).
		Unique("tasks[2].id", "build", seen)

	errs := v.Errors()
	if len(errs) != 1 || errs[0].Field != "tasks[2].id" {
		t.Fatalf("errors = %v", errs)
	}
}

func TestValidatorValidate(t *testing.T) {
	v := New()
	if v.Validate() != nil {
		t.Error("expected nil for a clean validator")
	}

	v.Custom(false, "needs", "references itself")
	err := v.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Code != errors.ErrCodeValidation {
		t.Errorf("code = %s", err.Code)
	}
	if !strings.Contains(err.Error(), "needs: references itself") {
		t.Errorf("message = %q", err.Error())
	}
	if fields, ok := err.Details["fields"].([]FieldError); !ok || len(fields) != 1 {
		t.Errorf("details = %v", err.Details)
	}
}

type task struct {
	ID      string `yaml:"id" validate:"required,unitid"`
	Timeout int    `yaml:"timeout" validate:"gte=0"`
}

type file struct {
	Tasks []task `yaml:"tasks" validate:"dive"`
}

func TestStructValidateValid(t *testing.T) {
	if err := Validate(file{Tasks: []task{{ID: "build"}, {ID: "test", Timeout: 30}}}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateReportsNestedFields(t *testing.T) {
	err := Validate(file{Tasks: []task{{ID: "build"}, {ID: "", Timeout: -5}}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"tasks[1].id: is required", "tasks[1].timeout: must be 0 or more"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
	if !errors.HasCode(err, errors.ErrCodeValidation) {
		t.Errorf("err = %v", err)
	}
}

func TestStructValidateUnitIDTag(t *testing.T) {
	err := Validate(task{ID: "bad id"})
	if err == nil || !strings.Contains(err.Error(), "id: must start with") {
		t.Errorf("err = %v", err)
	}
}
