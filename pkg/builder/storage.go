package builder

import (
	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

// AddStorages adds a pumped hydro storage on the electricity bus of every
// region with a phes column in the storages table.
func AddStorages(tables table.Collection, nodes *model.Registry) error {
	logger := logging.New("builder.storage")

	st, err := tables.Get(TableStorages)
	if err != nil {
		return err
	}

	for _, col := range st.ColumnsWithSub(label.SubtagPHES) {
		region := col.Top

		params := make(map[string]float64, 5)
		for _, name := range []string{"pump", "turbine", "energy", "pump_eff", "turbine_eff"} {
			v, err := st.Float(name, col)
			if err != nil {
				return err
			}
			params[name] = v
		}

		bus, err := nodes.GetOrCreateBus(electricityBus(region))
		if err != nil {
			return err
		}

		key := label.New(label.CategoryStorage, label.TagElectricity, label.SubtagPHES, region)
		s := model.NewStorage(key,
			model.Port{Bus: bus, Flow: model.Flow{NominalValue: model.Value(params["pump"])}},
			model.Port{Bus: bus, Flow: model.Flow{NominalValue: model.Value(params["turbine"])}},
		)
		s.NominalCapacity = params["energy"]
		s.InflowConversion = params["pump_eff"]
		s.OutflowConversion = params["turbine_eff"]
		s.LossRate = 0
		s.InitialLevel = nil

		if err := nodes.Insert(key, s); err != nil {
			return err
		}
		logger.Debug("added storage", "label", key, "energy", s.NominalCapacity)
	}
	return nil
}
