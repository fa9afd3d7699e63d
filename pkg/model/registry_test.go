package model

import (
	"errors"
	"testing"

	"github.com/ritzau/deflex-graph/pkg/label"
)

func busLabel(region string) label.Label {
	return label.New(label.CategoryBus, label.TagElectricity, label.SubtagAll, region)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.Len() != 0 {
		t.Errorf("New registry should have 0 nodes, got %d", r.Len())
	}
}

func TestInsertDuplicate(t *testing.T) {
	r := NewRegistry()
	key := busLabel("DE01")
	first := NewBus(key)

	if err := r.Insert(key, first); err != nil {
		t.Fatalf("first Insert() error = %v", err)
	}

	err := r.Insert(key, NewSink(key))
	if !errors.Is(err, ErrDuplicateIdentity) {
		t.Fatalf("second Insert() error = %v, want ErrDuplicateIdentity", err)
	}

	stored, ok := r.Get(key)
	if !ok {
		t.Fatal("key disappeared after failed insert")
	}
	if stored != Node(first) {
		t.Error("failed insert replaced the stored node")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 node, got %d", r.Len())
	}
}

func TestInsertNil(t *testing.T) {
	r := NewRegistry()
	if err := r.Insert(busLabel("DE01"), nil); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("Insert(nil) error = %v, want ErrInvalidNode", err)
	}
}

func TestInsertAfterFreeze(t *testing.T) {
	r := NewRegistry()
	r.Freeze()

	if err := r.Insert(busLabel("DE01"), NewBus(busLabel("DE01"))); !errors.Is(err, ErrRegistryFrozen) {
		t.Errorf("Insert() on frozen registry error = %v, want ErrRegistryFrozen", err)
	}
	if !r.Frozen() {
		t.Error("Frozen() = false after Freeze()")
	}
}

func TestGetOrCreateBus(t *testing.T) {
	r := NewRegistry()
	key := busLabel("DE02")

	b1, err := r.GetOrCreateBus(key)
	if err != nil {
		t.Fatalf("GetOrCreateBus() error = %v", err)
	}
	b2, err := r.GetOrCreateBus(key)
	if err != nil {
		t.Fatalf("second GetOrCreateBus() error = %v", err)
	}

	if b1 != b2 {
		t.Error("GetOrCreateBus() returned different buses for the same key")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 node, got %d", r.Len())
	}
}

func TestGetOrCreateBusWrongKind(t *testing.T) {
	r := NewRegistry()
	key := busLabel("DE03")
	if err := r.Insert(key, NewSink(key)); err != nil {
		t.Fatal(err)
	}

	if _, err := r.GetOrCreateBus(key); !errors.Is(err, ErrDuplicateIdentity) {
		t.Errorf("GetOrCreateBus() on a sink error = %v, want ErrDuplicateIdentity", err)
	}
}

func TestLookupNeverCreates(t *testing.T) {
	r := NewRegistry()
	key := busLabel("DE04")

	if _, ok := r.Get(key); ok {
		t.Error("Get() found a node in an empty registry")
	}
	if _, ok := r.Bus(key); ok {
		t.Error("Bus() found a node in an empty registry")
	}
	if r.Contains(key) || r.Len() != 0 {
		t.Error("lookups must not create nodes")
	}
}

func TestInsertionOrder(t *testing.T) {
	r := NewRegistry()
	regions := []string{"DE09", "DE01", "DE05"}
	for _, region := range regions {
		if _, err := r.GetOrCreateBus(busLabel(region)); err != nil {
			t.Fatal(err)
		}
	}
	src := label.New(label.CategorySource, label.TagVolatile, "wind", "DE01")
	bus, _ := r.Bus(busLabel("DE01"))
	if err := r.Insert(src, NewSource(src, Port{Bus: bus})); err != nil {
		t.Fatal(err)
	}

	labels := r.Labels()
	for i, region := range regions {
		if labels[i].Region != region {
			t.Errorf("labels[%d] = %s, want region %s", i, labels[i], region)
		}
	}
	if len(r.Buses()) != 3 {
		t.Errorf("expected 3 buses, got %d", len(r.Buses()))
	}

	counts := r.CountByCategory()
	if counts[label.CategoryBus] != 3 || counts[label.CategorySource] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}
}
