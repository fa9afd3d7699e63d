package graph

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/ritzau/deflex-graph/pkg/label"
)

// Neighbourhood returns the nodes within depth flows of center, ignoring
// flow direction, in insertion order. The center itself is at depth 0.
func Neighbourhood(n *Network, center label.Label, depth int) ([]label.Label, bool) {
	id, ok := n.ids[center]
	if !ok {
		return nil, false
	}

	var ids []int64
	bfs := traverse.BreadthFirst{}
	bfs.Walk(graph.Undirect{G: n.graph}, n.graph.Node(id), func(node graph.Node, d int) bool {
		if d > depth {
			return true
		}
		ids = append(ids, node.ID())
		return false
	})

	return n.sorted(ids), true
}
