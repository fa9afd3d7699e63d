package graph

import (
	"slices"
	"testing"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/model"
)

func TestCompareFullGraph(t *testing.T) {
	g := twoRegions(t).Graph()

	d := Compare(nil, g)
	if !d.FullGraph || d.Empty() {
		t.Fatal("expected a full graph diff")
	}
	if len(d.AddedNodes) != 6 || len(d.AddedEdges) != len(g.Edges) {
		t.Errorf("expected everything added, got %d nodes %d edges", len(d.AddedNodes), len(d.AddedEdges))
	}
}

func TestCompareUnchanged(t *testing.T) {
	snap := NewSnapshot(twoRegions(t).Graph())

	if d := Compare(snap, twoRegions(t).Graph()); !d.Empty() {
		t.Errorf("expected no changes, got %+v", d)
	}
}

func TestCompareChanges(t *testing.T) {
	old := twoRegions(t)
	snap := NewSnapshot(old.Graph())

	// Same system with a capped wind source and a solar source added
	r := model.NewRegistry()
	de01, _ := r.GetOrCreateBus(elecBus("DE01"))
	de02, _ := r.GetOrCreateBus(elecBus("DE02"))
	wind := label.New(label.CategorySource, label.TagVolatile, "wind", "DE01")
	solar := label.New(label.CategorySource, label.TagVolatile, "solar", "DE01")
	demand := label.New(label.CategoryDemand, label.TagElectricity, label.SubtagAll, "DE02")
	line12 := label.New(label.CategoryLine, label.TagElectricity, "DE01", "DE02")
	mustInsert(t, r, model.NewSource(wind, model.Port{Bus: de01, Flow: model.Flow{NominalValue: model.Value(10)}}))
	mustInsert(t, r, model.NewSource(solar, model.Port{Bus: de01}))
	mustInsert(t, r, model.NewSink(demand, model.Port{Bus: de02}))
	mustInsert(t, r, model.NewTransformer(line12, []model.Port{{Bus: de01}}, []model.Port{{Bus: de02}}, nil))

	d := Compare(snap, r.Graph())
	if d.FullGraph || d.Empty() {
		t.Fatalf("unexpected diff %+v", d)
	}

	if want := []string{solar.String()}; !slices.Equal(d.AddedNodes, want) {
		t.Errorf("added nodes = %v, want %v", d.AddedNodes, want)
	}
	line21 := label.New(label.CategoryLine, label.TagElectricity, "DE02", "DE01")
	if want := []string{line21.String()}; !slices.Equal(d.RemovedNodes, want) {
		t.Errorf("removed nodes = %v, want %v", d.RemovedNodes, want)
	}
	if len(d.ModifiedNodes) != 0 {
		t.Errorf("modified nodes = %v", d.ModifiedNodes)
	}

	if want := []string{solar.String() + "|" + de01.Label().String()}; !slices.Equal(d.AddedEdges, want) {
		t.Errorf("added edges = %v, want %v", d.AddedEdges, want)
	}
	if len(d.RemovedEdges) != 2 {
		t.Errorf("expected both line21 edges removed, got %v", d.RemovedEdges)
	}
	if want := []string{wind.String() + "|" + de01.Label().String()}; !slices.Equal(d.ModifiedEdges, want) {
		t.Errorf("modified edges = %v, want %v", d.ModifiedEdges, want)
	}
}
