package builder

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

// mobilityFuels are drawn from the oil commodity bus
var mobilityFuels = []string{"diesel", "petrol"}

const (
	mobilityRegion = "DE"
	mobilityFuel   = "oil"
)

// AddConventionalMobility adds a constant fuel demand of conventional
// vehicles on the national oil bus. The annual energy per fuel is
// mileage × specific demand × energy content, summed over all vehicle
// types, and is spread evenly over the steps of the horizon.
func AddConventionalMobility(tables table.Collection, nodes *model.Registry, steps int) error {
	logger := logging.New("builder.mobility")

	if steps < 1 {
		return fmt.Errorf("conventional mobility needs a horizon, got %d steps", steps)
	}

	mileage, err := tables.Get(TableMobilityMileage)
	if err != nil {
		return err
	}
	specDemand, err := tables.Get(TableMobilitySpecDemand)
	if err != nil {
		return err
	}
	energyContent, err := tables.Get(TableMobilityEnergyContent)
	if err != nil {
		return err
	}
	cs, err := tables.Get(TableCommoditySource)
	if err != nil {
		return err
	}
	if len(energyContent.Index) == 0 {
		return fmt.Errorf("table %q has no rows: %w", energyContent.Name, table.ErrMalformedTable)
	}

	oil, err := EnsureFuelBus(nodes, cs, mobilityFuel, mobilityRegion)
	if err != nil {
		return err
	}

	for _, fuel := range mobilityFuels {
		col := table.Column{Top: mobilityRegion, Sub: fuel}

		content, err := energyContent.Float(energyContent.Index[0], col)
		if err != nil {
			return err
		}

		distance := make([]float64, len(mileage.Index))
		demand := make([]float64, len(mileage.Index))
		for i, vehicle := range mileage.Index {
			if distance[i], err = mileage.Float(vehicle, col); err != nil {
				return err
			}
			if demand[i], err = specDemand.Float(vehicle, col); err != nil {
				return err
			}
		}
		energy := floats.Dot(distance, demand) * content / 1e6

		draw := make([]float64, steps)
		floats.AddConst(energy/float64(steps), draw)

		key := label.New(label.CategoryUsage, label.TagMobility, fuel, mobilityRegion)
		err = nodes.Insert(key, model.NewSink(key, model.Port{
			Bus:  oil,
			Flow: model.Flow{ActualValue: draw, NominalValue: model.Value(1), Fixed: true},
		}))
		if err != nil {
			return err
		}
		logger.Debug("added mobility demand", "fuel", fuel, "energy", energy)
	}
	return nil
}
