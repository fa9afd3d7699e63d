// Package scenario compiles a table collection into a frozen node registry
// by running the builders in order over a fresh registry.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/ritzau/deflex-graph/pkg/builder"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

// Scenario is one energy system to compile
type Scenario struct {
	Name         string
	Tables       table.Collection
	Year         string
	Debug        bool
	ExtraRegions []string
	ShortageCost float64
	// Location is the directory the tables were read from, if any
	Location string

	// Builders override builder.Default, mainly for tests
	Builders []builder.Builder

	nodes      *model.Registry
	horizon    Horizon
	runID      string
	compiledAt time.Time
}

// Metadata describes a compiled scenario
type Metadata struct {
	Name         string         `json:"name" yaml:"name"`
	Year         int            `json:"year" yaml:"year"`
	Steps        int            `json:"steps" yaml:"steps"`
	Debug        bool           `json:"debug,omitempty" yaml:"debug,omitempty"`
	Location     string         `json:"location,omitempty" yaml:"location,omitempty"`
	ExtraRegions []string       `json:"extraRegions,omitempty" yaml:"extra_regions,omitempty"`
	RunID        string         `json:"runId" yaml:"run_id"`
	CompiledAt   time.Time      `json:"compiledAt" yaml:"compiled_at"`
	Nodes        int            `json:"nodes" yaml:"nodes"`
	Categories   map[string]int `json:"categories" yaml:"categories"`
}

// FromCSV creates a scenario from the table files in dir
func FromCSV(name, dir string) (*Scenario, error) {
	tables, err := table.LoadCSV(dir)
	if err != nil {
		return nil, err
	}
	return &Scenario{Name: name, Tables: tables, Location: dir}, nil
}

// Compile builds the node registry. The horizon is checked before any node
// is created and the first failing builder aborts the run; on error no
// registry is kept. The returned registry is frozen.
func (s *Scenario) Compile(ctx context.Context) (*model.Registry, error) {
	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)

	horizon, err := NewHorizon(s.Year, s.Debug)
	if err != nil {
		return nil, err
	}

	logging.InfoContext(ctx, "compiling scenario", "name", s.Name, "year", horizon.Year, "steps", horizon.Steps)
	start := time.Now()

	env := &builder.Env{
		Tables:       s.Tables,
		Nodes:        model.NewRegistry(),
		ExtraRegions: s.ExtraRegions,
		Steps:        horizon.Steps,
		ShortageCost: s.ShortageCost,
	}

	builders := s.Builders
	if builders == nil {
		builders = builder.Default()
	}

	for _, b := range builders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.Build(ctx, env); err != nil {
			logging.ErrorContext(ctx, "builder failed", "builder", b.Name(), "error", err)
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
	}

	env.Nodes.Freeze()

	s.nodes = env.Nodes
	s.horizon = horizon
	s.runID = runID
	s.compiledAt = time.Now().UTC()

	logging.InfoContext(ctx, "scenario compiled",
		"name", s.Name,
		"nodes", env.Nodes.Len(),
		"buses", len(env.Nodes.Buses()),
		"durationMs", time.Since(start).Milliseconds(),
	)
	return env.Nodes, nil
}

// Nodes returns the registry of the last successful compilation
func (s *Scenario) Nodes() *model.Registry {
	return s.nodes
}

// Horizon returns the horizon of the last successful compilation
func (s *Scenario) Horizon() Horizon {
	return s.horizon
}

// Metadata describes the last successful compilation
func (s *Scenario) Metadata() Metadata {
	m := Metadata{
		Name:         s.Name,
		Year:         s.horizon.Year,
		Steps:        s.horizon.Steps,
		Debug:        s.Debug,
		Location:     s.Location,
		ExtraRegions: slices.Clone(s.ExtraRegions),
		RunID:        s.runID,
		CompiledAt:   s.compiledAt,
	}
	if s.nodes != nil {
		m.Nodes = s.nodes.Len()
		m.Categories = s.nodes.CountByCategory()
	}
	return m
}

// CheckTables reports NaN values in the named tables, or in all tables when
// no name is given.
func (s *Scenario) CheckTables(names ...string) error {
	if len(names) == 0 {
		for name := range s.Tables {
			names = append(names, name)
		}
		slices.Sort(names)
	}

	var errs []error
	for _, name := range names {
		t, err := s.Tables.Get(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := t.CheckNaN(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
