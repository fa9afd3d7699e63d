package builder

import (
	"strings"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

// defaultDemandRegion holds the heat demand of everything that is not an
// extra region. Its parameters are also the fallback for extra regions.
const defaultDemandRegion = "DE_demand"

// AddDecentralisedHeating adds a heating system per fuel and demand region:
// a heat bus, a transformer from the fuel bus and a fixed demand sink.
func AddDecentralisedHeating(tables table.Collection, nodes *model.Registry, extraRegions []string) error {
	logger := logging.New("builder.heat")

	cs, err := tables.Get(TableCommoditySource)
	if err != nil {
		return err
	}
	dts, err := tables.Get(TableDemandSeries)
	if err != nil {
		return err
	}
	dh, err := tables.Get(TableDecentralisedHeat)
	if err != nil {
		return err
	}

	for _, demandRegion := range demandRegions(extraRegions) {
		region := strings.ReplaceAll(demandRegion, "_demand", "")

		if !dts.HasTop(demandRegion) {
			logger.Debug("no demand series for region", "region", demandRegion)
			continue
		}

		params := defaultDemandRegion
		if dh.HasTop(demandRegion) {
			params = demandRegion
		}

		for _, fuel := range dh.Subs(params) {
			demandCol := table.Column{Top: demandRegion, Sub: fuel}
			if !dts.HasColumn(demandCol) {
				continue
			}
			paramCol := table.Column{Top: params, Sub: fuel}

			source, err := dh.Text("source", paramCol)
			if err != nil {
				return err
			}
			fuelBus, err := EnsureFuelBus(nodes, cs, source, region)
			if err != nil {
				return err
			}

			subtag := label.Normalize(fuel)
			heatKey := label.New(label.CategoryBus, label.TagHeat, subtag, region)
			heatBus := model.NewBus(heatKey)
			if err := nodes.Insert(heatKey, heatBus); err != nil {
				return err
			}

			efficiency, err := dh.Float("efficiency", paramCol)
			if err != nil {
				return err
			}
			trsfKey := label.New(label.CategoryTransformer, label.TagHeat, subtag, region)
			trsf := model.NewTransformer(trsfKey,
				[]model.Port{{Bus: fuelBus}},
				[]model.Port{{Bus: heatBus}},
				map[label.Label]float64{heatKey: efficiency},
			)
			if err := nodes.Insert(trsfKey, trsf); err != nil {
				return err
			}

			demand, err := dts.Series(demandCol)
			if err != nil {
				return err
			}
			demandKey := label.New(label.CategoryDemand, label.TagHeat, subtag, region)
			err = nodes.Insert(demandKey, model.NewSink(demandKey, model.Port{
				Bus:  heatBus,
				Flow: model.Flow{ActualValue: demand, NominalValue: model.Value(1), Fixed: true},
			}))
			if err != nil {
				return err
			}

			logger.Debug("added heating system", "region", region, "fuel", fuel, "source", source)
		}
	}
	return nil
}

// demandRegions returns the default demand region followed by the extra
// regions, without duplicates.
func demandRegions(extraRegions []string) []string {
	regions := []string{defaultDemandRegion}
	seen := map[string]bool{defaultDemandRegion: true}
	for _, r := range extraRegions {
		if !seen[r] {
			seen[r] = true
			regions = append(regions, r)
		}
	}
	return regions
}
