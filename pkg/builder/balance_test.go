package builder

import (
	"testing"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/model"
)

func TestAddShortageExcess(t *testing.T) {
	nodes := model.NewRegistry()
	createBuses(t, nodes, "DE01", "DE02")
	heat, _ := nodes.GetOrCreateBus(districtHeatBus("DE01"))
	demand := label.New(label.CategoryDemand, label.TagHeat, label.SubtagDistrict, "DE01")
	if err := nodes.Insert(demand, model.NewSink(demand, model.Port{Bus: heat})); err != nil {
		t.Fatal(err)
	}

	if err := AddShortageExcess(nodes, 900); err != nil {
		t.Fatalf("AddShortageExcess() error = %v", err)
	}

	counts := nodes.CountByCategory()
	if counts["excess"] != 3 || counts["shortage"] != 3 {
		t.Errorf("expected one excess and one shortage per bus, got %v", counts)
	}

	for _, bus := range nodes.Buses() {
		l := bus.Label()

		excess, ok := nodes.Get(l.WithCategory(label.CategoryExcess))
		if !ok {
			t.Errorf("missing excess for %s", l)
			continue
		}
		if excess.Kind() != model.KindSink || excess.Inputs()[0].Bus != bus {
			t.Errorf("excess of %s is not a sink on the bus", l)
		}

		shortage, ok := nodes.Get(l.WithCategory(label.CategoryShortage))
		if !ok {
			t.Errorf("missing shortage for %s", l)
			continue
		}
		out := shortage.Outputs()[0]
		if shortage.Kind() != model.KindSource || out.Bus != bus || out.Flow.VariableCosts != 900 {
			t.Errorf("unexpected shortage for %s", l)
		}
	}

	// 3 buses, 1 demand and a pair per bus
	if nodes.Len() != 10 {
		t.Errorf("expected 10 nodes, got %d: %v", nodes.Len(), nodes.Labels())
	}
}

func TestAddShortageExcessTwice(t *testing.T) {
	nodes := model.NewRegistry()
	createBuses(t, nodes, "DE01")

	if err := AddShortageExcess(nodes, 900); err != nil {
		t.Fatal(err)
	}
	if err := AddShortageExcess(nodes, 900); err == nil {
		t.Error("second run should fail on duplicate identities")
	}
}
