package scenario

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ritzau/deflex-graph/pkg/builder"
	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

func TestCompile(t *testing.T) {
	s := &Scenario{Name: "two_regions", Tables: twoRegionTables(t), Year: "2014", Debug: true}

	nodes, err := s.Compile(context.Background())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if !nodes.Frozen() {
		t.Error("compiled registry should be frozen")
	}
	if err := nodes.Insert(label.New("bus", "heat", "extra", "DE01"), model.NewBus(label.Label{})); !errors.Is(err, model.ErrRegistryFrozen) {
		t.Errorf("insert after compile error = %v, want ErrRegistryFrozen", err)
	}

	for _, key := range []string{
		"source_ee_wind_DE01",
		"demand_electricity_all_DE01",
		"demand_electricity_all_DE02",
		"demand_heat_district_DE01",
		"transformer_heat_natural_gas_DE",
		"line_electricity_DE01_DE02",
		"line_electricity_DE02_DE01",
		"transformer_pp_natural_gas_DE01",
		"transformer_chp_natural_gas_DE01",
	} {
		l, _ := label.Parse(key)
		if !nodes.Contains(l) {
			t.Errorf("missing node %s", key)
		}
	}

	// every bus gets exactly one excess and one shortage
	buses := nodes.Buses()
	counts := nodes.CountByCategory()
	if counts["excess"] != len(buses) || counts["shortage"] != len(buses) {
		t.Errorf("%d buses but %d excess and %d shortage", len(buses), counts["excess"], counts["shortage"])
	}
	for _, bus := range buses {
		if !nodes.Contains(bus.Label().WithCategory(label.CategoryExcess)) {
			t.Errorf("bus %s has no excess", bus.Label())
		}
	}

	m := s.Metadata()
	if m.Name != "two_regions" || m.Year != 2014 || m.Steps != 3 || m.Nodes != nodes.Len() || m.RunID == "" {
		t.Errorf("unexpected metadata %+v", m)
	}
}

func TestCompileInvalidHorizon(t *testing.T) {
	var called bool
	s := &Scenario{
		Tables:   twoRegionTables(t),
		Year:     "twenty-fifteen",
		Builders: []builder.Builder{recordingBuilder{called: &called}},
	}

	nodes, err := s.Compile(context.Background())
	if !errors.Is(err, ErrInvalidHorizon) {
		t.Fatalf("Compile() error = %v, want ErrInvalidHorizon", err)
	}
	if nodes != nil || s.Nodes() != nil {
		t.Error("no registry expected on error")
	}
	if called {
		t.Error("no builder should run with an invalid horizon")
	}
}

func TestCompileAbortsOnBuilderError(t *testing.T) {
	tables := twoRegionTables(t)
	tr := table.New("transmission", []string{"DE01-DE03"},
		[]table.Column{{Top: "electrical", Sub: "capacity"}, {Top: "electrical", Sub: "efficiency"}})
	_ = tr.Set("DE01-DE03", tr.Columns[0], "100")
	_ = tr.Set("DE01-DE03", tr.Columns[1], "0.9")
	tables.Add(tr)

	s := &Scenario{Tables: tables, Year: "2014", Debug: true}
	nodes, err := s.Compile(context.Background())
	if !errors.Is(err, builder.ErrMissingBus) {
		t.Fatalf("Compile() error = %v, want ErrMissingBus", err)
	}
	if nodes != nil || s.Nodes() != nil {
		t.Error("no partial registry should be handed out")
	}
}

func TestCompileMissingTable(t *testing.T) {
	tables := twoRegionTables(t)
	delete(tables, "transformer")

	s := &Scenario{Tables: tables, Year: "2014", Debug: true}
	if _, err := s.Compile(context.Background()); !errors.Is(err, table.ErrMalformedTable) {
		t.Errorf("Compile() error = %v, want ErrMalformedTable", err)
	}
}

func TestCompileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Scenario{Tables: twoRegionTables(t), Year: "2014", Debug: true}
	if _, err := s.Compile(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Compile() error = %v, want context.Canceled", err)
	}
}

func TestCompileFromCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tables")
	if err := twoRegionTables(t).WriteCSV(dir); err != nil {
		t.Fatal(err)
	}

	s, err := FromCSV("from_csv", dir)
	if err != nil {
		t.Fatalf("FromCSV() error = %v", err)
	}
	s.Year = "2014"
	s.Debug = true

	nodes, err := s.Compile(context.Background())
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	direct := &Scenario{Tables: twoRegionTables(t), Year: "2014", Debug: true}
	want, err := direct.Compile(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	got, exp := nodes.Labels(), want.Labels()
	if len(got) != len(exp) {
		t.Fatalf("CSV round trip compiled %d nodes, want %d", len(got), len(exp))
	}
	for i := range exp {
		if got[i] != exp[i] {
			t.Errorf("node %d = %s, want %s", i, got[i], exp[i])
		}
	}
	if s.Metadata().Location != dir {
		t.Errorf("location = %q, want %q", s.Metadata().Location, dir)
	}
}

func TestCheckTables(t *testing.T) {
	tables := twoRegionTables(t)
	s := &Scenario{Tables: tables}

	if err := s.CheckTables(); err != nil {
		t.Errorf("CheckTables() on complete tables error = %v", err)
	}

	vs := tables["volatile_series"]
	_ = vs.Set("1", vs.Columns[0], "nan")

	if err := s.CheckTables("volatile_series"); !errors.Is(err, table.ErrMalformedTable) {
		t.Errorf("CheckTables() error = %v, want ErrMalformedTable", err)
	}
	if err := s.CheckTables("missing"); !errors.Is(err, table.ErrMalformedTable) {
		t.Errorf("CheckTables(missing) error = %v, want ErrMalformedTable", err)
	}
}

type recordingBuilder struct {
	called *bool
}

func (b recordingBuilder) Name() string { return "recording" }

func (b recordingBuilder) Build(ctx context.Context, env *builder.Env) error {
	*b.called = true
	return nil
}
