package execution

import (
	"context"

	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/util"
)

// InputDescriptor declares an input a descriptor accepts.
type InputDescriptor struct {
	Name        string
	Description string
	Type        string
	Required    bool
	// Default is applied when the input is absent. Nil means no default.
	Default any
}

// OutputDescriptor declares an output a descriptor produces.
type OutputDescriptor struct {
	Name        string
	Description string
	Type        string
}

// RunFunc is the body of a descriptor. Expected failures are returned as
// errors; panics are recovered by the unit state machine.
type RunFunc[C any] func(ctx context.Context, c C) (*collections.Outputs, error)

// Descriptor is the registered implementation of a unit kind, selected by
// a unit's `uses` field.
type Descriptor[C any] struct {
	ID          string
	Description string
	Inputs      []InputDescriptor
	Outputs     []OutputDescriptor
	// Events lists hook names the descriptor triggers, e.g. "before:deploy".
	Events []string
	Run    RunFunc[C]
}

// HasEvent reports whether the descriptor declares the event.
func (d *Descriptor[C]) HasEvent(name string) bool {
	return util.Contains(d.Events, name)
}

// Registry maps kind names to descriptors. Registering an id twice fails.
type Registry[C any] struct {
	kind  string
	items collections.OrderedMap[string, *Descriptor[C]]
}

// NewRegistry creates an empty registry. kind names the unit kind in errors.
func NewRegistry[C any](kind string) *Registry[C] {
	return &Registry[C]{kind: kind}
}

// Register adds d and fails when its id is already registered.
func (r *Registry[C]) Register(d *Descriptor[C]) error {
	if d == nil || d.ID == "" {
		return errors.InvalidConfig(r.kind+" registry", "descriptor id is required")
	}
	if d.Run == nil {
		return errors.InvalidConfig(r.kind+" registry", "descriptor "+d.ID+" has no run function")
	}
	if r.items.Has(d.ID) {
		return errors.AlreadyExists(r.kind+" descriptor", d.ID)
	}
	r.items.Set(d.ID, d)
	return nil
}

// MustRegister is Register that panics on error. Use it for built-in kinds.
func (r *Registry[C]) MustRegister(d *Descriptor[C]) *Registry[C] {
	if err := r.Register(d); err != nil {
		panic(err)
	}
	return r
}

// Get returns the descriptor for uses.
func (r *Registry[C]) Get(uses string) (*Descriptor[C], bool) {
	return r.items.Get(uses)
}

// Lookup returns the descriptor for uses or an unknown kind error.
func (r *Registry[C]) Lookup(uses string) (*Descriptor[C], error) {
	d, ok := r.items.Get(uses)
	if !ok {
		return nil, errors.UnknownKind(r.kind, uses)
	}
	return d, nil
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry[C]) Descriptors() []*Descriptor[C] {
	return r.items.Values()
}

// ApplyInputs fills defaults, projects every input into env as
// INPUT_<SCREAMING_SNAKE> and fails with a missing inputs error listing all
// required inputs that are still absent.
func ApplyInputs(kind, unit string, declared []InputDescriptor, inputs *collections.Inputs, env *collections.StringMap) error {
	for _, in := range declared {
		if in.Default != nil && !inputs.Has(in.Name) {
			inputs.Set(in.Name, in.Default)
		}
	}

	for key, value := range inputs.All() {
		env.Set("INPUT_"+util.ScreamingSnake(key), collections.Stringify(value))
	}

	var missing []string
	for _, in := range declared {
		if in.Required && !inputs.Has(in.Name) {
			missing = append(missing, in.Name)
		}
	}
	if len(missing) > 0 {
		return errors.MissingInputs(kind, unit, missing...)
	}
	return nil
}
