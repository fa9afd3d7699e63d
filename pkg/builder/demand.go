package builder

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

// Series names in demand_series
const (
	SeriesElectricalLoad  = "electrical_load"
	SeriesDistrictHeating = "district heating"
)

// AddElectricityDemand adds a fixed demand sink on the electricity bus of
// every region with a non-zero electrical load.
func AddElectricityDemand(tables table.Collection, nodes *model.Registry) error {
	return addDemand(tables, nodes, SeriesElectricalLoad, label.TagElectricity, label.SubtagAll)
}

// AddDistrictHeating adds a fixed demand sink on the district heat bus of
// every region with a non-zero district heating demand.
func AddDistrictHeating(tables table.Collection, nodes *model.Registry) error {
	return addDemand(tables, nodes, SeriesDistrictHeating, label.TagHeat, label.SubtagDistrict)
}

func addDemand(tables table.Collection, nodes *model.Registry, series, tag, subtag string) error {
	logger := logging.New("builder.demand")

	dts, err := tables.Get(TableDemandSeries)
	if err != nil {
		return err
	}

	for _, col := range dts.ColumnsWithSub(series) {
		demand, err := dts.Series(col)
		if err != nil {
			return err
		}
		if sumSkipNaN(demand) == 0 {
			logger.Debug("omitting zero demand", "series", series, "region", col.Top)
			continue
		}

		region := col.Top
		bus, err := nodes.GetOrCreateBus(label.New(label.CategoryBus, tag, subtag, region))
		if err != nil {
			return err
		}

		key := label.New(label.CategoryDemand, tag, subtag, region)
		err = nodes.Insert(key, model.NewSink(key, model.Port{
			Bus:  bus,
			Flow: model.Flow{ActualValue: demand, NominalValue: model.Value(1), Fixed: true},
		}))
		if err != nil {
			return err
		}
		logger.Debug("added demand", "label", key)
	}
	return nil
}

// sumSkipNaN sums the values of a series, leaving out missing values
func sumSkipNaN(series []float64) float64 {
	return floats.Sum(slices.DeleteFunc(slices.Clone(series), math.IsNaN))
}
