package discovery

import (
	"bytes"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Rexfile is the YAML document declaring a project's units.
//
//	tasks:
//	  - id: test
//	    run: go test ./...
//	jobs:
//	  - id: ci
//	    tasks: [test]
//	deployments:
//	  - id: web
//	    run: ./deploy.sh
//	    hooks:
//	      before:deploy: [migrate]
type Rexfile struct {
	Tasks       []TaskSpec       `yaml:"tasks" validate:"dive"`
	Jobs        []JobSpec        `yaml:"jobs" validate:"dive"`
	Deployments []DeploymentSpec `yaml:"deployments" validate:"dive"`
	// Setup and Teardown name tasks run before and after every command.
	Setup    []string `yaml:"setup" validate:"dive,unitid"`
	Teardown []string `yaml:"teardown" validate:"dive,unitid"`
}

// UnitSpec holds the fields shared by every unit kind.
type UnitSpec struct {
	ID          string            `yaml:"id" validate:"required,unitid"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Needs       []string          `yaml:"needs" validate:"dive,unitid"`
	Cwd         string            `yaml:"cwd"`
	Env         map[string]string `yaml:"env"`
	With        map[string]any    `yaml:"with"`
	Timeout     int               `yaml:"timeout" validate:"gte=0"`
	If          string            `yaml:"if"`
	Force       bool              `yaml:"force"`
}

// TaskSpec declares a task. Run is a script for shell-task; with Uses set
// to another kind it is ignored unless that kind reads it.
type TaskSpec struct {
	UnitSpec `yaml:",inline"`

	Uses  string `yaml:"uses"`
	Shell string `yaml:"shell"`
	Run   string `yaml:"run"`
}

// JobSpec declares a job. Tasks are references to top-level tasks or
// inline task declarations.
type JobSpec struct {
	UnitSpec `yaml:",inline"`

	Tasks []TaskRef `yaml:"tasks" validate:"dive"`
}

// DeploymentSpec declares a deployment. Hooks map lifecycle events to task
// references.
type DeploymentSpec struct {
	UnitSpec `yaml:",inline"`

	Uses  string               `yaml:"uses"`
	Shell string               `yaml:"shell"`
	Run   string               `yaml:"run"`
	Hooks map[string][]TaskRef `yaml:"hooks" validate:"dive,dive"`
}

// TaskRef is either the id of a top-level task or an inline task.
type TaskRef struct {
	Ref    string
	Inline *TaskSpec
}

// UnmarshalYAML accepts a scalar id or a task mapping.
func (r *TaskRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&r.Ref)
	case yaml.MappingNode:
		r.Inline = &TaskSpec{}
		return node.Decode(r.Inline)
	default:
		return fmt.Errorf("line %d: task must be an id or a mapping", node.Line)
	}
}

// ID returns the referenced or inline task id.
func (r TaskRef) ID() string {
	if r.Inline != nil {
		return r.Inline.ID
	}
	return r.Ref
}

// Parse decodes a rexfile. Unknown fields are rejected.
func Parse(data []byte) (*Rexfile, error) {
	var f Rexfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, err
	}
	return &f, nil
}
