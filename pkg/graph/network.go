// Package graph views a compiled registry as a directed network of energy
// flows. Inputs of a node are edges from a bus to the node, outputs are
// edges from the node to a bus.
package graph

import (
	"maps"
	"slices"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/model"
)

// Network is the flow graph of a registry
type Network struct {
	graph  *simple.DirectedGraph
	ids    map[label.Label]int64 // Map from label to graph ID
	labels map[int64]label.Label // Map from graph ID to label
	kinds  map[label.Label]model.Kind
	nextID int64
}

// NewNetwork creates an empty network
func NewNetwork() *Network {
	return &Network{
		graph:  simple.NewDirectedGraph(),
		ids:    make(map[label.Label]int64),
		labels: make(map[int64]label.Label),
		kinds:  make(map[label.Label]model.Kind),
	}
}

// Build creates the network of all nodes and flows of a registry
func Build(nodes *model.Registry) *Network {
	n := NewNetwork()

	for _, node := range nodes.Nodes() {
		n.AddNode(node.Label(), node.Kind())
	}
	for _, node := range nodes.Nodes() {
		for _, in := range node.Inputs() {
			n.AddFlow(in.Bus.Label(), node.Label())
		}
		for _, out := range node.Outputs() {
			n.AddFlow(node.Label(), out.Bus.Label())
		}
	}

	return n
}

// AddNode adds a node to the network
func (n *Network) AddNode(l label.Label, kind model.Kind) {
	if _, exists := n.ids[l]; exists {
		return
	}

	n.ids[l] = n.nextID
	n.labels[n.nextID] = l
	n.kinds[l] = kind
	n.graph.AddNode(simple.Node(n.nextID))

	n.nextID++
}

// AddFlow adds a directed edge from source to target. Unknown labels are
// added as buses.
func (n *Network) AddFlow(source, target label.Label) {
	n.AddNode(source, model.KindBus)
	n.AddNode(target, model.KindBus)

	sourceID := n.ids[source]
	targetID := n.ids[target]

	if sourceID == targetID || n.graph.HasEdgeFromTo(sourceID, targetID) {
		return
	}
	n.graph.SetEdge(n.graph.NewEdge(n.graph.Node(sourceID), n.graph.Node(targetID)))
}

// Graph returns the underlying directed graph
func (n *Network) Graph() *simple.DirectedGraph {
	return n.graph
}

// Label returns the label of a graph ID
func (n *Network) Label(id int64) (label.Label, bool) {
	l, ok := n.labels[id]
	return l, ok
}

// Kind returns the node kind of a label
func (n *Network) Kind(l label.Label) (model.Kind, bool) {
	k, ok := n.kinds[l]
	return k, ok
}

// Labels returns all labels in the order they were added
func (n *Network) Labels() []label.Label {
	return n.sorted(slices.Collect(maps.Keys(n.labels)))
}

// Edges returns all flows as [source, target] pairs in the order of their
// source nodes
func (n *Network) Edges() [][2]label.Label {
	var edges [][2]label.Label
	for _, l := range n.Labels() {
		for _, target := range n.Successors(l) {
			edges = append(edges, [2]label.Label{l, target})
		}
	}
	return edges
}

// Successors returns the nodes l sends energy to
func (n *Network) Successors(l label.Label) []label.Label {
	id, ok := n.ids[l]
	if !ok {
		return nil
	}
	var ids []int64
	iter := n.graph.From(id)
	for iter.Next() {
		ids = append(ids, iter.Node().ID())
	}
	return n.sorted(ids)
}

// Predecessors returns the nodes l receives energy from
func (n *Network) Predecessors(l label.Label) []label.Label {
	id, ok := n.ids[l]
	if !ok {
		return nil
	}
	var ids []int64
	iter := n.graph.To(id)
	for iter.Next() {
		ids = append(ids, iter.Node().ID())
	}
	return n.sorted(ids)
}

// sorted maps IDs to labels in insertion order
func (n *Network) sorted(ids []int64) []label.Label {
	slices.Sort(ids)
	labels := make([]label.Label, len(ids))
	for i, id := range ids {
		labels[i] = n.labels[id]
	}
	return labels
}
