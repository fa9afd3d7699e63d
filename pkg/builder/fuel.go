package builder

import (
	"fmt"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

// commodityRegion is the column of commodity_source holding the prices
const commodityRegion = "DE"

// EnsureFuelBus returns the commodity bus of fuel in region, creating it
// and a priced commodity source when they do not exist yet. Prices come
// from the costs and emission rows of the commodity table.
func EnsureFuelBus(nodes *model.Registry, commodity *table.Table, fuel, region string) (*model.Bus, error) {
	subtag := label.Normalize(fuel)

	bus, err := nodes.GetOrCreateBus(label.New(label.CategoryBus, label.TagCommodity, subtag, region))
	if err != nil {
		return nil, err
	}

	source := label.New(label.CategorySource, label.TagCommodity, subtag, region)
	if nodes.Contains(source) {
		return bus, nil
	}

	col := table.Column{Top: commodityRegion, Sub: label.Denormalize(subtag)}
	costs, err := commodity.Float("costs", col)
	if err != nil {
		return nil, fmt.Errorf("pricing fuel %q: %w", fuel, err)
	}
	emission, err := commodity.Float("emission", col)
	if err != nil {
		return nil, fmt.Errorf("pricing fuel %q: %w", fuel, err)
	}

	err = nodes.Insert(source, model.NewSource(source, model.Port{
		Bus:  bus,
		Flow: model.Flow{VariableCosts: costs, Emission: emission},
	}))
	if err != nil {
		return nil, err
	}
	return bus, nil
}

func electricityBus(region string) label.Label {
	return label.New(label.CategoryBus, label.TagElectricity, label.SubtagAll, region)
}

func districtHeatBus(region string) label.Label {
	return label.New(label.CategoryBus, label.TagHeat, label.SubtagDistrict, region)
}
