package builder

import (
	"testing"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

type row struct {
	name  string
	cells []string
}

func col(top, sub string) table.Column {
	return table.Column{Top: top, Sub: sub}
}

func mustTable(t *testing.T, name string, cols []table.Column, rows ...row) *table.Table {
	t.Helper()
	index := make([]string, len(rows))
	for i, r := range rows {
		index[i] = r.name
	}
	tb := table.New(name, index, cols)
	for _, r := range rows {
		for j, cell := range r.cells {
			if err := tb.Set(r.name, cols[j], cell); err != nil {
				t.Fatal(err)
			}
		}
	}
	return tb
}

func collection(tables ...*table.Table) table.Collection {
	c := make(table.Collection)
	for _, tb := range tables {
		c.Add(tb)
	}
	return c
}

func commoditySource(t *testing.T) *table.Table {
	return mustTable(t, TableCommoditySource,
		[]table.Column{col("DE", "natural gas"), col("DE", "hard coal"), col("DE", "oil")},
		row{"costs", []string{"20", "10", "40"}},
		row{"emission", []string{"0.2", "0.34", "0.27"}},
	)
}

func mustNode(t *testing.T, nodes *model.Registry, key string) model.Node {
	t.Helper()
	l, err := label.Parse(key)
	if err != nil {
		t.Fatal(err)
	}
	n, ok := nodes.Get(l)
	if !ok {
		t.Fatalf("node %s not found, have %v", key, nodes.Labels())
	}
	return n
}

func mustTransformer(t *testing.T, nodes *model.Registry, key string) *model.Transformer {
	t.Helper()
	trsf, ok := mustNode(t, nodes, key).(*model.Transformer)
	if !ok {
		t.Fatalf("node %s is not a transformer", key)
	}
	return trsf
}

func hasNode(t *testing.T, nodes *model.Registry, key string) bool {
	t.Helper()
	l, err := label.Parse(key)
	if err != nil {
		t.Fatal(err)
	}
	return nodes.Contains(l)
}

func createBuses(t *testing.T, nodes *model.Registry, regions ...string) {
	t.Helper()
	for _, r := range regions {
		if _, err := nodes.GetOrCreateBus(electricityBus(r)); err != nil {
			t.Fatal(err)
		}
	}
}
