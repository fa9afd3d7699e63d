package builder

import (
	"math"
	"slices"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

// plantParams reads the parameters of one (region, fuel) column of the
// transformer table on demand.
type plantParams struct {
	t   *table.Table
	col table.Column
}

func (p plantParams) get(name string) (float64, error) {
	return p.t.Float(name, p.col)
}

// AddPowerAndHeatPlants adds the power plants, CHP units and heat plants of
// every region and fuel in the transformer table. Extra regions burn fuel
// from their own commodity bus, all others from the national one.
func AddPowerAndHeatPlants(tables table.Collection, nodes *model.Registry, extraRegions []string) error {
	logger := logging.New("builder.plants")

	trsf, err := tables.Get(TableTransformer)
	if err != nil {
		return err
	}
	cs, err := tables.Get(TableCommoditySource)
	if err != nil {
		return err
	}

	for _, region := range trsf.Tops() {
		for _, fuel := range trsf.Subs(region) {
			fuelRegion := commodityRegion
			if slices.Contains(extraRegions, region) {
				fuelRegion = region
			}
			fuelBus, err := EnsureFuelBus(nodes, cs, fuel, fuelRegion)
			if err != nil {
				return err
			}

			p := plantParams{t: trsf, col: table.Column{Top: region, Sub: fuel}}
			subtag := label.Normalize(fuel)

			capacity, err := p.get("capacity")
			if err != nil {
				return err
			}
			if capacity > 0 {
				if err := addPowerPlant(nodes, p, fuelBus, subtag, region, capacity); err != nil {
					return err
				}
				logger.Debug("added power plant", "region", region, "fuel", fuel, "capacity", capacity)
			}

			capacityCHP, err := p.get("capacity_heat_chp")
			if err != nil {
				return err
			}
			if capacityCHP > 0 {
				if err := addCHP(nodes, p, fuelBus, subtag, region, capacityCHP); err != nil {
					return err
				}
				logger.Debug("added chp plant", "region", region, "fuel", fuel, "capacity_heat", capacityCHP)
			}

			capacityHP, err := p.get("capacity_hp")
			if err != nil {
				return err
			}
			if capacityHP > 0 {
				if err := addHeatPlant(nodes, p, fuelBus, subtag, region, capacityHP); err != nil {
					return err
				}
				logger.Debug("added heat plant", "region", region, "fuel", fuel, "capacity", capacityHP)
			}
		}
	}
	return nil
}

// addPowerPlant adds a fuel to electricity transformer bounded on its output
func addPowerPlant(nodes *model.Registry, p plantParams, fuelBus *model.Bus, subtag, region string, capacity float64) error {
	limit, err := p.get("limit_elec_pp")
	if err != nil {
		return err
	}
	efficiency, err := p.get("efficiency")
	if err != nil {
		return err
	}

	elec, err := nodes.GetOrCreateBus(electricityBus(region))
	if err != nil {
		return err
	}

	out := model.Flow{NominalValue: model.Value(capacity)}
	if !math.IsInf(limit, 1) {
		out.SummedMax = model.Value(limit / capacity)
	}

	key := label.New(label.CategoryTransformer, label.TagPowerPlant, subtag, region)
	return nodes.Insert(key, model.NewTransformer(key,
		[]model.Port{{Bus: fuelBus}},
		[]model.Port{{Bus: elec, Flow: out}},
		map[label.Label]float64{elec.Label(): efficiency},
	))
}

// addCHP adds a fuel to electricity and heat transformer. The fuel input is
// bounded so that the heat output matches the heat capacity.
func addCHP(nodes *model.Registry, p plantParams, fuelBus *model.Bus, subtag, region string, capacityHeat float64) error {
	effHeat, err := p.get("efficiency_heat_chp")
	if err != nil {
		return err
	}
	effElec, err := p.get("efficiency_elec_chp")
	if err != nil {
		return err
	}
	limitHeat, err := p.get("limit_heat_chp")
	if err != nil {
		return err
	}

	elec, err := nodes.GetOrCreateBus(electricityBus(region))
	if err != nil {
		return err
	}
	heat, err := nodes.GetOrCreateBus(districtHeatBus(region))
	if err != nil {
		return err
	}

	fuelCapacity := capacityHeat / effHeat
	in := model.Flow{NominalValue: model.Value(fuelCapacity)}
	if !math.IsInf(limitHeat, 1) {
		in.SummedMax = model.Value((limitHeat / effHeat) / fuelCapacity)
	}

	key := label.New(label.CategoryTransformer, label.TagCHP, subtag, region)
	return nodes.Insert(key, model.NewTransformer(key,
		[]model.Port{{Bus: fuelBus, Flow: in}},
		[]model.Port{{Bus: elec}, {Bus: heat}},
		map[label.Label]float64{
			elec.Label(): effElec,
			heat.Label(): effHeat,
		},
	))
}

// addHeatPlant adds a fuel to district heat transformer bounded on its output
func addHeatPlant(nodes *model.Registry, p plantParams, fuelBus *model.Bus, subtag, region string, capacity float64) error {
	limit, err := p.get("limit_hp")
	if err != nil {
		return err
	}
	efficiency, err := p.get("efficiency_hp")
	if err != nil {
		return err
	}

	heat, err := nodes.GetOrCreateBus(districtHeatBus(region))
	if err != nil {
		return err
	}

	out := model.Flow{NominalValue: model.Value(capacity)}
	if !math.IsInf(limit, 1) {
		out.SummedMax = model.Value(limit / capacity)
	}

	key := label.New(label.CategoryTransformer, label.TagHeatPlant, subtag, region)
	return nodes.Insert(key, model.NewTransformer(key,
		[]model.Port{{Bus: fuelBus}},
		[]model.Port{{Bus: heat, Flow: out}},
		map[label.Label]float64{heat.Label(): efficiency},
	))
}
