package scenario

import (
	"testing"

	"github.com/ritzau/deflex-graph/pkg/table"
)

type row struct {
	name  string
	cells []string
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

// twoRegionTables describes DE01 with wind, a gas CHP and district heating,
// DE02 with demand only, and a line between them.
func twoRegionTables(t *testing.T) table.Collection {
	t.Helper()
	c := make(table.Collection)

	c.Add(mustTable(t, "volatile_source",
		[]table.Column{{Top: "DE01", Sub: "wind"}},
		row{"capacity", []string{"100"}},
	))
	c.Add(mustTable(t, "volatile_series",
		[]table.Column{{Top: "DE01", Sub: "wind"}},
		row{"0", []string{"0.2"}},
		row{"1", []string{"0.4"}},
		row{"2", []string{"0.1"}},
	))
	c.Add(mustTable(t, "commodity_source",
		[]table.Column{{Top: "DE", Sub: "natural gas"}},
		row{"costs", []string{"20"}},
		row{"emission", []string{"0.2"}},
	))
	c.Add(mustTable(t, "demand_series",
		[]table.Column{
			{Top: "DE01", Sub: "electrical_load"},
			{Top: "DE02", Sub: "electrical_load"},
			{Top: "DE01", Sub: "district heating"},
			{Top: "DE_demand", Sub: "natural gas"},
		},
		row{"0", []string{"50", "30", "10", "5"}},
		row{"1", []string{"60", "35", "12", "6"}},
		row{"2", []string{"55", "32", "11", "5"}},
	))
	c.Add(mustTable(t, "decentralised_heat",
		[]table.Column{{Top: "DE_demand", Sub: "natural gas"}},
		row{"source", []string{"natural gas"}},
		row{"efficiency", []string{"0.9"}},
	))
	c.Add(mustTable(t, "transmission",
		[]table.Column{{Top: "electrical", Sub: "capacity"}, {Top: "electrical", Sub: "efficiency"}},
		row{"DE01-DE02", []string{"200", "0.97"}},
	))
	c.Add(mustTable(t, "transformer",
		[]table.Column{{Top: "DE01", Sub: "natural gas"}},
		row{"capacity", []string{"300"}},
		row{"capacity_heat_chp", []string{"800"}},
		row{"capacity_hp", []string{"0"}},
		row{"limit_elec_pp", []string{"inf"}},
		row{"limit_heat_chp", []string{"1600"}},
		row{"limit_hp", []string{"inf"}},
		row{"efficiency", []string{"0.55"}},
		row{"efficiency_elec_chp", []string{"0.4"}},
		row{"efficiency_heat_chp", []string{"0.5"}},
		row{"efficiency_hp", []string{"0.9"}},
	))
	return c
}
