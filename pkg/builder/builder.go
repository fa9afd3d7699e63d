// Package builder turns the named tables of a scenario into energy system
// nodes. Each builder adds one domain (feed-in, demand, plants, ...) to a
// shared registry and must run in the order returned by Default.
package builder

import (
	"context"

	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

// Names of the tables read by the builders
const (
	TableVolatileSource        = "volatile_source"
	TableVolatileSeries        = "volatile_series"
	TableCommoditySource       = "commodity_source"
	TableDemandSeries          = "demand_series"
	TableDecentralisedHeat     = "decentralised_heat"
	TableTransmission          = "transmission"
	TableTransformer           = "transformer"
	TableStorages              = "storages"
	TableMobilityMileage       = "mobility_mileage"
	TableMobilitySpecDemand    = "mobility_spec_demand"
	TableMobilityEnergyContent = "mobility_energy_content"
)

// DefaultShortageCost is the penalty per unit of energy a shortage source
// charges when nothing else is configured.
const DefaultShortageCost = 900

// Env is the shared state of one compilation run
type Env struct {
	Tables table.Collection
	Nodes  *model.Registry

	// ExtraRegions are modelled with their own local fuel market
	ExtraRegions []string
	// Steps is the number of time steps of the horizon
	Steps        int
	ShortageCost float64
}

// Builder adds the nodes of one domain to the registry.
type Builder interface {
	// Name returns the name of the builder (e.g., "volatile_sources").
	Name() string

	// Build reads env.Tables and inserts into env.Nodes. The first error
	// aborts the compilation.
	Build(ctx context.Context, env *Env) error
}

type step struct {
	name string
	// requires names a table whose absence skips the builder
	requires string
	build    func(env *Env) error
}

func (s *step) Name() string {
	return s.name
}

func (s *step) Build(ctx context.Context, env *Env) error {
	logger := logging.FromContext(ctx, "builder")

	if s.requires != "" && !env.Tables.Has(s.requires) {
		logger.Debug("skipping builder, table not present", "builder", s.name, "table", s.requires)
		return nil
	}

	before := env.Nodes.Len()
	if err := s.build(env); err != nil {
		return err
	}
	logger.Debug("builder done", "builder", s.name, "added", env.Nodes.Len()-before)
	return nil
}

// Default returns all builders in the order they have to run. Later builders
// connect to buses created by earlier ones.
func Default() []Builder {
	return []Builder{
		&step{name: "volatile_sources", build: func(env *Env) error {
			return AddVolatileSources(env.Tables, env.Nodes)
		}},
		&step{name: "decentralised_heating", build: func(env *Env) error {
			return AddDecentralisedHeating(env.Tables, env.Nodes, env.ExtraRegions)
		}},
		&step{name: "electricity_demand", build: func(env *Env) error {
			return AddElectricityDemand(env.Tables, env.Nodes)
		}},
		&step{name: "district_heating", build: func(env *Env) error {
			return AddDistrictHeating(env.Tables, env.Nodes)
		}},
		&step{name: "transmission_lines", build: func(env *Env) error {
			return AddTransmissionLines(env.Tables, env.Nodes)
		}},
		&step{name: "power_and_heat_plants", build: func(env *Env) error {
			return AddPowerAndHeatPlants(env.Tables, env.Nodes, env.ExtraRegions)
		}},
		&step{name: "storages", requires: TableStorages, build: func(env *Env) error {
			return AddStorages(env.Tables, env.Nodes)
		}},
		&step{name: "conventional_mobility", requires: TableMobilityMileage, build: func(env *Env) error {
			return AddConventionalMobility(env.Tables, env.Nodes, env.Steps)
		}},
		&step{name: "shortage_excess", build: func(env *Env) error {
			cost := env.ShortageCost
			if cost == 0 {
				cost = DefaultShortageCost
			}
			return AddShortageExcess(env.Nodes, cost)
		}},
	}
}
