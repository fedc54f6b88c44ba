package dag

import (
	"github.com/kbukum/rex/collections"
	"github.com/kbukum/rex/errors"
	"github.com/kbukum/rex/util"
)

// Node is a unit in a dependency graph.
type Node interface {
	NodeID() string
	NodeNeeds() []string
}

// Missing reports the needs of a node that are not declared in the map.
type Missing[T Node] struct {
	Node    T
	Missing []string
}

// Map is an insertion-ordered set of nodes keyed by id. Setting an id that
// already exists replaces the node but keeps its position.
type Map[T Node] struct {
	collections.OrderedMap[string, T]
}

// NewMap creates an empty Map.
func NewMap[T Node]() *Map[T] {
	return &Map[T]{}
}

// Put stores node under its own id.
func (m *Map[T]) Put(node T) *Map[T] {
	m.Set(node.NodeID(), node)
	return m
}

// MissingDependencies returns, for every node with at least one undeclared
// need, the missing ids in declared order.
func (m *Map[T]) MissingDependencies() []Missing[T] {
	var out []Missing[T]
	for _, node := range m.All() {
		var missing []string
		for _, dep := range node.NodeNeeds() {
			if !m.Has(dep) {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			out = append(out, Missing[T]{Node: node, Missing: missing})
		}
	}
	return out
}

// FindCyclicalReferences walks the graph depth-first from every node and
// returns each starting node from which a cycle is reachable. Needs that are
// not declared are ignored here.
func (m *Map[T]) FindCyclicalReferences() []T {
	var cycles []T
	// acyclic holds nodes whose whole dependency closure is known to be cycle free.
	acyclic := make(map[string]bool)

	var resolve func(id string, stack map[string]bool) bool
	resolve = func(id string, stack map[string]bool) bool {
		if acyclic[id] {
			return true
		}
		if stack[id] {
			return false
		}
		node, ok := m.Get(id)
		if !ok {
			return true
		}
		stack[id] = true
		for _, dep := range node.NodeNeeds() {
			if !resolve(dep, stack) {
				return false
			}
		}
		delete(stack, id)
		acyclic[id] = true
		return true
	}

	for id, node := range m.All() {
		if !resolve(id, make(map[string]bool)) {
			cycles = append(cycles, node)
		}
	}
	return cycles
}

// Flatten returns targets and their transitive needs ordered so every node
// appears after all of its needs. Each node appears once; ties keep
// first-seen order with targets processed left to right and needs in
// declared order. An undeclared need fails with a missing dependency error.
//
// Flatten terminates on cyclic graphs but the order is then undefined;
// callers run FindCyclicalReferences first.
func (m *Map[T]) Flatten(targets []T) ([]T, error) {
	var (
		out     []T
		visited = make(map[string]bool)
	)

	var visit func(node T) error
	visit = func(node T) error {
		id := node.NodeID()
		if visited[id] {
			return nil
		}
		visited[id] = true
		for _, dep := range node.NodeNeeds() {
			child, ok := m.Get(dep)
			if !ok {
				return errors.MissingDependency(id, dep)
			}
			if err := visit(child); err != nil {
				return err
			}
		}
		out = append(out, node)
		return nil
	}

	for _, target := range targets {
		if err := visit(target); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Resolve looks up every id and fails with a not-found error naming the
// first unknown one. kind is used in the error message.
func (m *Map[T]) Resolve(kind string, ids []string) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		node, ok := m.Get(id)
		if !ok {
			return nil, errors.NotFound(kind, id)
		}
		out = append(out, node)
	}
	return out, nil
}

// Reporter receives graph diagnostics found by Plan.
type Reporter[T Node] interface {
	CyclicalReferences(nodes []T)
	MissingDependencies(missing []Missing[T])
}

// Plan validates the graph for a run of targets and returns the execution
// order. Targets are checked first, then cycles and missing needs, which are
// also handed to r. kind names the unit kind in errors.
func (m *Map[T]) Plan(kind string, targets []string, r Reporter[T]) ([]T, error) {
	nodes, err := m.Resolve(kind, targets)
	if err != nil {
		return nil, err
	}
	if cycles := m.FindCyclicalReferences(); len(cycles) > 0 {
		r.CyclicalReferences(cycles)
		return nil, errors.CyclicalReferences(kind, IDs(cycles)...)
	}
	if missing := m.MissingDependencies(); len(missing) > 0 {
		r.MissingDependencies(missing)
		first := missing[0]
		return nil, errors.MissingDependency(first.Node.NodeID(), first.Missing...)
	}
	return m.Flatten(nodes)
}

// IDs returns the ids of nodes.
func IDs[T Node](nodes []T) []string {
	return util.Map(nodes, func(n T) string { return n.NodeID() })
}
