package builder

import (
	"fmt"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

// AddVolatileSources adds a fixed feed-in source for every region and
// technology of volatile_source whose capacity and feed-in are not zero.
func AddVolatileSources(tables table.Collection, nodes *model.Registry) error {
	logger := logging.New("builder.volatile")

	vs, err := tables.Get(TableVolatileSource)
	if err != nil {
		return err
	}
	// A missing series table is treated like a missing column
	series := tables[TableVolatileSeries]

	for _, region := range vs.Tops() {
		for _, tech := range vs.Subs(region) {
			col := table.Column{Top: region, Sub: tech}

			capacity, err := vs.Float("capacity", col)
			if err != nil {
				return err
			}

			var feedin []float64
			if series != nil && series.HasColumn(col) {
				if feedin, err = series.Series(col); err != nil {
					return err
				}
			} else {
				if capacity > 0 {
					return fmt.Errorf("%w for %s (capacity: %g) in %s", ErrMissingSeries, tech, capacity, region)
				}
				feedin = []float64{0}
			}

			bus, err := nodes.GetOrCreateBus(electricityBus(region))
			if err != nil {
				return err
			}

			if !(capacity*sumSkipNaN(feedin) > 0) {
				logger.Debug("omitting volatile source without feed-in", "region", region, "tech", tech)
				continue
			}

			key := label.New(label.CategorySource, label.TagVolatile, label.Normalize(tech), region)
			err = nodes.Insert(key, model.NewSource(key, model.Port{
				Bus: bus,
				Flow: model.Flow{
					ActualValue:  feedin,
					NominalValue: model.Value(capacity),
					Fixed:        true,
					Emission:     0,
				},
			}))
			if err != nil {
				return err
			}
			logger.Debug("added volatile source", "label", key, "capacity", capacity)
		}
	}
	return nil
}
