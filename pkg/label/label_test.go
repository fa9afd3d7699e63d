package label

import (
	"encoding/json"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name  string
		label Label
		want  string
	}{
		{"bus", New(CategoryBus, TagElectricity, SubtagAll, "DE01"), "bus_electricity_all_DE01"},
		{"fuel with underscore", New(CategoryTransformer, TagCHP, "hard_coal", "DE03"), "transformer_chp_hard_coal_DE03"},
		{"line", New(CategoryLine, TagElectricity, "DE01", "DE02"), "line_electricity_DE01_DE02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.label.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEquality(t *testing.T) {
	a := New(CategoryBus, TagHeat, SubtagDistrict, "DE05")
	b := New(CategoryBus, TagHeat, SubtagDistrict, "DE05")
	c := New(CategoryBus, TagHeat, SubtagDistrict, "DE06")

	if a != b {
		t.Error("labels with equal fields should be equal")
	}
	if a == c {
		t.Error("labels with different regions should differ")
	}

	m := map[Label]int{a: 1}
	if m[b] != 1 {
		t.Error("equal labels should hit the same map entry")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Label
		wantErr bool
	}{
		{"bus_commodity_natural_gas_DE", New(CategoryBus, TagCommodity, "natural_gas", "DE"), false},
		{"source_ee_wind_DE01", New(CategorySource, TagVolatile, "wind", "DE01"), false},
		{"bus_heat_DE01", Label{}, true},
		{"", Label{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if !tt.wantErr && got.String() != tt.input {
				t.Errorf("round trip mismatch: %q -> %q", tt.input, got.String())
			}
		})
	}
}

func TestWithCategory(t *testing.T) {
	bus := New(CategoryBus, TagHeat, "natural_gas", "DE")
	excess := bus.WithCategory(CategoryExcess)

	if excess.String() != "excess_heat_natural_gas_DE" {
		t.Errorf("unexpected excess label %s", excess)
	}
	if !bus.IsBus() || excess.IsBus() {
		t.Error("WithCategory must not modify the original label")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("hard coal"); got != "hard_coal" {
		t.Errorf("Normalize() = %q", got)
	}
	if got := Denormalize("natural_gas"); got != "natural gas" {
		t.Errorf("Denormalize() = %q", got)
	}
}

func TestLabelJSON(t *testing.T) {
	l := New(CategoryBus, TagCommodity, "hard_coal", "DE")

	data, err := json.Marshal(map[string]Label{"bus": l})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"bus":"bus_commodity_hard_coal_DE"}` {
		t.Errorf("json.Marshal() = %s", data)
	}

	var decoded map[string]Label
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["bus"] != l {
		t.Errorf("decoded %v, want %v", decoded["bus"], l)
	}

	if err := json.Unmarshal([]byte(`"bus_DE"`), new(Label)); err == nil {
		t.Error("short label should not decode")
	}
}
