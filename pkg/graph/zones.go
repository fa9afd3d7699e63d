package graph

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/deflex-graph/pkg/label"
)

// Zone is a set of nodes that can all reach each other, e.g. regions
// joined by lines in both directions or a storage and its bus.
type Zone struct {
	Nodes []label.Label `json:"nodes" yaml:"nodes"`
}

// Regions returns the distinct regions of the zone's buses
func (z Zone) Regions() []string {
	var regions []string
	for _, l := range z.Nodes {
		if l.IsBus() && !slices.Contains(regions, l.Region) {
			regions = append(regions, l.Region)
		}
	}
	slices.Sort(regions)
	return regions
}

// CoupledZones returns the strongly connected components of the network
// with more than one node, ordered by their first node.
func CoupledZones(n *Network) []Zone {
	var zones []Zone
	for _, scc := range topo.TarjanSCC(n.graph) {
		if len(scc) < 2 {
			continue
		}
		ids := make([]int64, len(scc))
		for i, node := range scc {
			ids[i] = node.ID()
		}
		zones = append(zones, Zone{Nodes: n.sorted(ids)})
	}
	slices.SortFunc(zones, func(a, b Zone) int {
		return cmp.Compare(n.ids[a.Nodes[0]], n.ids[b.Nodes[0]])
	})
	return zones
}
