package builder

import (
	"math"
	"testing"

	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

func demandTables(t *testing.T) table.Collection {
	return collection(mustTable(t, TableDemandSeries,
		[]table.Column{
			col("DE01", SeriesElectricalLoad),
			col("DE02", SeriesElectricalLoad),
			col("DE01", SeriesDistrictHeating),
			col("DE02", SeriesDistrictHeating),
		},
		row{"0", []string{"5", "0", "2", "0"}},
		row{"1", []string{"6", "0", "3", "0"}},
	))
}

func TestAddElectricityDemand(t *testing.T) {
	nodes := model.NewRegistry()
	if err := AddElectricityDemand(demandTables(t), nodes); err != nil {
		t.Fatalf("AddElectricityDemand() error = %v", err)
	}

	if !hasNode(t, nodes, "demand_electricity_all_DE01") || !hasNode(t, nodes, "bus_electricity_all_DE01") {
		t.Errorf("expected demand and bus for DE01, have %v", nodes.Labels())
	}
	if hasNode(t, nodes, "demand_electricity_all_DE02") || hasNode(t, nodes, "bus_electricity_all_DE02") {
		t.Error("zero demand should produce no nodes")
	}
	if nodes.Len() != 2 {
		t.Errorf("expected 2 nodes, got %d", nodes.Len())
	}

	flow := mustNode(t, nodes, "demand_electricity_all_DE01").Inputs()[0].Flow
	if !flow.Fixed || *flow.NominalValue != 1 || flow.ActualValue[1] != 6 {
		t.Errorf("unexpected demand flow %+v", flow)
	}
}

func TestAddElectricityDemandWithGaps(t *testing.T) {
	tables := collection(mustTable(t, TableDemandSeries,
		[]table.Column{col("DE01", SeriesElectricalLoad), col("DE02", SeriesElectricalLoad)},
		row{"0", []string{"5", ""}},
		row{"1", []string{"", ""}},
		row{"2", []string{"7", "0"}},
	))

	nodes := model.NewRegistry()
	if err := AddElectricityDemand(tables, nodes); err != nil {
		t.Fatalf("AddElectricityDemand() error = %v", err)
	}

	if !hasNode(t, nodes, "demand_electricity_all_DE01") {
		t.Errorf("demand with gaps should be kept, have %v", nodes.Labels())
	}
	if hasNode(t, nodes, "demand_electricity_all_DE02") {
		t.Error("demand of only gaps and zeros should be omitted")
	}
}

func TestSumSkipNaN(t *testing.T) {
	series := []float64{1, math.NaN(), 2}
	if got := sumSkipNaN(series); got != 3 {
		t.Errorf("sumSkipNaN() = %v, want 3", got)
	}
	if !math.IsNaN(series[1]) {
		t.Error("sumSkipNaN() modified its input")
	}
	if got := sumSkipNaN([]float64{math.NaN()}); got != 0 {
		t.Errorf("sumSkipNaN() of only NaN = %v, want 0", got)
	}
}

func TestAddDistrictHeating(t *testing.T) {
	nodes := model.NewRegistry()
	if err := AddDistrictHeating(demandTables(t), nodes); err != nil {
		t.Fatalf("AddDistrictHeating() error = %v", err)
	}

	if !hasNode(t, nodes, "demand_heat_district_DE01") || !hasNode(t, nodes, "bus_heat_district_DE01") {
		t.Errorf("expected district heat nodes for DE01, have %v", nodes.Labels())
	}
	if nodes.Len() != 2 {
		t.Errorf("expected 2 nodes, got %d", nodes.Len())
	}
}

func TestAddDemandReusesBus(t *testing.T) {
	nodes := model.NewRegistry()
	createBuses(t, nodes, "DE01")
	existing, _ := nodes.Bus(electricityBus("DE01"))

	if err := AddElectricityDemand(demandTables(t), nodes); err != nil {
		t.Fatal(err)
	}

	if got := mustNode(t, nodes, "demand_electricity_all_DE01").Inputs()[0].Bus; got != existing {
		t.Error("demand should connect to the existing bus")
	}
}
