package scenario

import (
	"errors"
	"testing"
	"time"
)

func TestNewHorizon(t *testing.T) {
	tests := []struct {
		year    string
		debug   bool
		steps   int
		wantErr bool
	}{
		{"2016", false, 8784, false},
		{"2015", false, 8760, false},
		{"2000", false, 8784, false},
		{"1900", false, 8760, false},
		{"2014", true, 3, false},
		{" 2013 ", false, 8760, false},
		{"abc", false, 0, true},
		{"", false, 0, true},
		{"0", false, 0, true},
		{"-2014", false, 0, true},
		{"2014.5", false, 0, true},
		{"abc", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.year, func(t *testing.T) {
			h, err := NewHorizon(tt.year, tt.debug)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidHorizon) {
					t.Errorf("NewHorizon(%q) error = %v, want ErrInvalidHorizon", tt.year, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewHorizon(%q) error = %v", tt.year, err)
			}
			if h.Steps != tt.steps {
				t.Errorf("NewHorizon(%q).Steps = %d, want %d", tt.year, h.Steps, tt.steps)
			}
		})
	}
}

func TestHorizonTimestamps(t *testing.T) {
	h, err := NewHorizon("2015", false)
	if err != nil {
		t.Fatal(err)
	}

	ts := h.Timestamps()
	if len(ts) != 8760 {
		t.Fatalf("expected 8760 timestamps, got %d", len(ts))
	}
	if want := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC); !ts[0].Equal(want) {
		t.Errorf("first timestamp = %v, want %v", ts[0], want)
	}
	if want := time.Date(2015, 12, 31, 23, 0, 0, 0, time.UTC); !ts[len(ts)-1].Equal(want) {
		t.Errorf("last timestamp = %v, want %v", ts[len(ts)-1], want)
	}
	if want := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC); !h.End().Equal(want) {
		t.Errorf("End() = %v, want %v", h.End(), want)
	}
}
