package graph

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/model"
)

// BusIssue is a bus the solver cannot balance: energy can either not
// enter or not leave it.
type BusIssue struct {
	Bus            label.Label `json:"bus" yaml:"bus"`
	MissingInflow  bool        `json:"missingInflow,omitempty" yaml:"missing_inflow,omitempty"`
	MissingOutflow bool        `json:"missingOutflow,omitempty" yaml:"missing_outflow,omitempty"`
}

// CheckBuses returns every bus without an inbound or outbound flow
func CheckBuses(n *Network) []BusIssue {
	var issues []BusIssue
	for _, l := range n.Labels() {
		if kind, _ := n.Kind(l); kind != model.KindBus {
			continue
		}
		id := n.ids[l]
		issue := BusIssue{
			Bus:            l,
			MissingInflow:  n.graph.To(id).Len() == 0,
			MissingOutflow: n.graph.From(id).Len() == 0,
		}
		if issue.MissingInflow || issue.MissingOutflow {
			issues = append(issues, issue)
		}
	}
	return issues
}

// Islands returns the weakly connected parts of the network, largest first.
// A compiled system normally forms one island per independent fuel market
// and electricity grid.
func Islands(n *Network) [][]label.Label {
	components := topo.ConnectedComponents(graph.Undirect{G: n.graph})

	islands := make([][]label.Label, 0, len(components))
	for _, c := range components {
		ids := make([]int64, len(c))
		for i, node := range c {
			ids[i] = node.ID()
		}
		islands = append(islands, n.sorted(ids))
	}

	slices.SortStableFunc(islands, func(a, b []label.Label) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return int(n.ids[a[0]] - n.ids[b[0]])
	})
	return islands
}

// Summary is the structural analysis of a compiled network
type Summary struct {
	Nodes   int        `json:"nodes" yaml:"nodes"`
	Flows   int        `json:"flows" yaml:"flows"`
	Buses   int        `json:"buses" yaml:"buses"`
	Islands int        `json:"islands" yaml:"islands"`
	Zones   []Zone     `json:"zones,omitempty" yaml:"zones,omitempty"`
	Issues  []BusIssue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// Analyze builds the network of a registry and summarizes it
func Analyze(nodes *model.Registry) Summary {
	n := Build(nodes)
	return Summary{
		Nodes:   n.graph.Nodes().Len(),
		Flows:   n.graph.Edges().Len(),
		Buses:   len(nodes.Buses()),
		Islands: len(Islands(n)),
		Zones:   CoupledZones(n),
		Issues:  CheckBuses(n),
	}
}
