package builder

import (
	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
)

// AddShortageExcess attaches an excess sink and a shortage source to every
// bus in the registry, so that every bus can always be balanced. Shortage
// is charged cost per unit. Must run after all other builders.
func AddShortageExcess(nodes *model.Registry, cost float64) error {
	logger := logging.New("builder.balance")

	buses := nodes.Buses()
	for _, bus := range buses {
		l := bus.Label()

		excess := l.WithCategory(label.CategoryExcess)
		if err := nodes.Insert(excess, model.NewSink(excess, model.Port{Bus: bus})); err != nil {
			return err
		}

		shortage := l.WithCategory(label.CategoryShortage)
		err := nodes.Insert(shortage, model.NewSource(shortage, model.Port{
			Bus:  bus,
			Flow: model.Flow{VariableCosts: cost},
		}))
		if err != nil {
			return err
		}
	}

	logger.Debug("added shortage and excess", "buses", len(buses), "cost", cost)
	return nil
}
