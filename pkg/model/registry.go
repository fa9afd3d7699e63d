package model

import (
	"fmt"

	"github.com/ritzau/deflex-graph/pkg/label"
)

// Registry maps labels to nodes in insertion order. A label can be inserted
// only once, so two builders can never create the same entity.
//
// A registry is filled by a single compilation run and frozen afterwards; it
// is not safe for concurrent writes.
type Registry struct {
	order  []label.Label
	nodes  map[label.Label]Node
	frozen bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		order: make([]label.Label, 0),
		nodes: make(map[label.Label]Node),
	}
}

// Insert stores node under key. It fails if key is already taken; the
// stored node is left untouched in that case.
func (r *Registry) Insert(key label.Label, node Node) error {
	if r.frozen {
		return fmt.Errorf("insert %s: %w", key, ErrRegistryFrozen)
	}
	if node == nil {
		return fmt.Errorf("insert %s: %w", key, ErrInvalidNode)
	}
	if _, exists := r.nodes[key]; exists {
		return fmt.Errorf("key '%s' already exists: %w", key, ErrDuplicateIdentity)
	}

	r.nodes[key] = node
	r.order = append(r.order, key)
	return nil
}

// Get returns the node stored under key
func (r *Registry) Get(key label.Label) (Node, bool) {
	n, ok := r.nodes[key]
	return n, ok
}

// Contains reports whether key is taken
func (r *Registry) Contains(key label.Label) bool {
	_, ok := r.nodes[key]
	return ok
}

// Bus returns the bus stored under key. It returns false if key is absent
// or holds another kind of node.
func (r *Registry) Bus(key label.Label) (*Bus, bool) {
	b, ok := r.nodes[key].(*Bus)
	return b, ok
}

// GetOrCreateBus returns the bus stored under key, inserting a new one if
// key is absent.
func (r *Registry) GetOrCreateBus(key label.Label) (*Bus, error) {
	existing, ok := r.nodes[key]
	if !ok {
		bus := NewBus(key)
		if err := r.Insert(key, bus); err != nil {
			return nil, err
		}
		return bus, nil
	}

	bus, ok := existing.(*Bus)
	if !ok {
		return nil, fmt.Errorf("key '%s' holds a %s, not a bus: %w", key, existing.Kind(), ErrDuplicateIdentity)
	}
	return bus, nil
}

// Len returns the number of nodes
func (r *Registry) Len() int {
	return len(r.order)
}

// Labels returns all keys in insertion order
func (r *Registry) Labels() []label.Label {
	labels := make([]label.Label, len(r.order))
	copy(labels, r.order)
	return labels
}

// Nodes returns all nodes in insertion order
func (r *Registry) Nodes() []Node {
	nodes := make([]Node, 0, len(r.order))
	for _, key := range r.order {
		nodes = append(nodes, r.nodes[key])
	}
	return nodes
}

// Buses returns all buses in insertion order
func (r *Registry) Buses() []*Bus {
	var buses []*Bus
	for _, key := range r.order {
		if bus, ok := r.nodes[key].(*Bus); ok {
			buses = append(buses, bus)
		}
	}
	return buses
}

// CountByCategory counts nodes per label category
func (r *Registry) CountByCategory() map[string]int {
	counts := make(map[string]int)
	for _, key := range r.order {
		counts[key.Category]++
	}
	return counts
}

// Freeze makes the registry read-only
func (r *Registry) Freeze() {
	r.frozen = true
}

// Frozen reports whether Freeze has been called
func (r *Registry) Frozen() bool {
	return r.frozen
}
