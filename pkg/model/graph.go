package model

// Graph is a flat view of a registry: one node per registry entry and one
// edge per port. It is the exchange format for export and the HTTP API.
type Graph struct {
	Nodes []*GraphNode `json:"nodes" yaml:"nodes"`
	Edges []*GraphEdge `json:"edges" yaml:"edges"`
}

// GraphNode is a vertex of the exported graph
type GraphNode struct {
	ID       string                 `json:"id" yaml:"id"`
	Kind     Kind                   `json:"kind" yaml:"kind"`
	Category string                 `json:"category" yaml:"category"`
	Tag      string                 `json:"tag" yaml:"tag"`
	Subtag   string                 `json:"subtag" yaml:"subtag"`
	Region   string                 `json:"region" yaml:"region"`
	Metadata map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// GraphEdge is a directed flow between two vertices
type GraphEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Flow   Flow   `json:"flow" yaml:"flow"`
	// ConversionFactor is set on transformer outputs.
	ConversionFactor *float64 `json:"conversionFactor,omitempty" yaml:"conversion_factor,omitempty"`
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]*GraphNode, 0),
		Edges: make([]*GraphEdge, 0),
	}
}

// AddNode appends a node to the graph.
func (g *Graph) AddNode(node *GraphNode) {
	if node.Metadata == nil {
		node.Metadata = make(map[string]interface{})
	}
	g.Nodes = append(g.Nodes, node)
}

// AddEdge appends an edge to the graph.
func (g *Graph) AddEdge(edge *GraphEdge) {
	g.Edges = append(g.Edges, edge)
}

// Graph builds the flat view of all nodes and flows in insertion order.
func (r *Registry) Graph() *Graph {
	g := NewGraph()

	for _, n := range r.Nodes() {
		l := n.Label()
		gn := &GraphNode{
			ID:       l.String(),
			Kind:     n.Kind(),
			Category: l.Category,
			Tag:      l.Tag,
			Subtag:   l.Subtag,
			Region:   l.Region,
		}
		if s, ok := n.(*Storage); ok {
			gn.Metadata = map[string]interface{}{
				"nominalCapacity":   s.NominalCapacity,
				"inflowConversion":  s.InflowConversion,
				"outflowConversion": s.OutflowConversion,
				"lossRate":          s.LossRate,
			}
			if s.InitialLevel != nil {
				gn.Metadata["initialLevel"] = *s.InitialLevel
			}
		}
		g.AddNode(gn)

		// Edges run bus -> node for inputs and node -> bus for outputs
		for _, in := range n.Inputs() {
			g.AddEdge(&GraphEdge{
				Source: in.Bus.Label().String(),
				Target: l.String(),
				Flow:   in.Flow,
			})
		}
		for _, out := range n.Outputs() {
			edge := &GraphEdge{
				Source: l.String(),
				Target: out.Bus.Label().String(),
				Flow:   out.Flow,
			}
			if t, ok := n.(*Transformer); ok {
				if f, ok := t.ConversionFactor(out.Bus.Label()); ok {
					edge.ConversionFactor = Value(f)
				}
			}
			g.AddEdge(edge)
		}
	}

	return g
}
