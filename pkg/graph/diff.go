package graph

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"

	"github.com/ritzau/deflex-graph/pkg/model"
)

// Diff is the difference between two compiled graphs. Nodes are named by
// label, edges by "source|target".
type Diff struct {
	AddedNodes    []string `json:"addedNodes"`
	RemovedNodes  []string `json:"removedNodes"`
	ModifiedNodes []string `json:"modifiedNodes"`
	AddedEdges    []string `json:"addedEdges"`
	RemovedEdges  []string `json:"removedEdges"`
	ModifiedEdges []string `json:"modifiedEdges"`
	// FullGraph is set when there was no previous graph
	FullGraph bool `json:"fullGraph"`
}

// Empty reports whether nothing changed
func (d Diff) Empty() bool {
	return !d.FullGraph &&
		len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 && len(d.ModifiedNodes) == 0 &&
		len(d.AddedEdges) == 0 && len(d.RemovedEdges) == 0 && len(d.ModifiedEdges) == 0
}

// Snapshot indexes a graph for diffing
type Snapshot struct {
	Hash  string
	Nodes map[string]*model.GraphNode // node ID -> node
	Edges map[string]*model.GraphEdge // edge key -> edge
}

// NewSnapshot creates a snapshot of g
func NewSnapshot(g *model.Graph) *Snapshot {
	s := &Snapshot{
		Nodes: make(map[string]*model.GraphNode, len(g.Nodes)),
		Edges: make(map[string]*model.GraphEdge, len(g.Edges)),
	}
	for _, node := range g.Nodes {
		s.Nodes[node.ID] = node
	}
	for _, edge := range g.Edges {
		s.Edges[edgeKey(edge)] = edge
	}

	// Graphs that do not encode are compared element by element
	if data, err := json.Marshal(g); err == nil {
		s.Hash = fmt.Sprintf("%x", sha256.Sum256(data))
	}
	return s
}

// Compare computes the changes from old to g. A nil old yields the full
// graph as added.
func Compare(old *Snapshot, g *model.Graph) Diff {
	cur := NewSnapshot(g)

	var d Diff
	if old == nil {
		d.FullGraph = true
		old = &Snapshot{}
	} else if old.Hash != "" && old.Hash == cur.Hash {
		return d
	}

	d.AddedNodes, d.RemovedNodes, d.ModifiedNodes = compareMaps(old.Nodes, cur.Nodes, nodesEqual)
	d.AddedEdges, d.RemovedEdges, d.ModifiedEdges = compareMaps(old.Edges, cur.Edges, edgesEqual)
	return d
}

func compareMaps[V any](old, cur map[string]V, equal func(a, b V) bool) (added, removed, modified []string) {
	for key, v := range cur {
		prev, ok := old[key]
		switch {
		case !ok:
			added = append(added, key)
		case !equal(prev, v):
			modified = append(modified, key)
		}
	}
	for key := range old {
		if _, ok := cur[key]; !ok {
			removed = append(removed, key)
		}
	}
	slices.Sort(added)
	slices.Sort(removed)
	slices.Sort(modified)
	return added, removed, modified
}

func edgeKey(e *model.GraphEdge) string {
	return e.Source + "|" + e.Target
}

func nodesEqual(a, b *model.GraphNode) bool {
	return a.Kind == b.Kind && reflect.DeepEqual(a.Metadata, b.Metadata)
}

func edgesEqual(a, b *model.GraphEdge) bool {
	return reflect.DeepEqual(a.Flow, b.Flow) && reflect.DeepEqual(a.ConversionFactor, b.ConversionFactor)
}
