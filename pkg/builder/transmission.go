package builder

import (
	"fmt"
	"math"
	"strings"

	"github.com/ritzau/deflex-graph/pkg/label"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/model"
	"github.com/ritzau/deflex-graph/pkg/table"
)

var (
	lineCapacity   = table.Column{Top: "electrical", Sub: "capacity"}
	lineEfficiency = table.Column{Top: "electrical", Sub: "efficiency"}
)

// AddTransmissionLines adds a line transformer in both directions for every
// "A-B" row of the transmission table. The electricity buses of both ends
// must exist already. An infinite capacity leaves the line unbounded.
func AddTransmissionLines(tables table.Collection, nodes *model.Registry) error {
	logger := logging.New("builder.transmission")

	tr, err := tables.Get(TableTransmission)
	if err != nil {
		return err
	}

	for _, row := range tr.Index {
		a, b, ok := strings.Cut(row, "-")
		if !ok || a == "" || b == "" || strings.Contains(b, "-") {
			return fmt.Errorf("table %q: line %q is not of the form A-B: %w", tr.Name, row, table.ErrMalformedTable)
		}

		capacity, err := tr.Float(row, lineCapacity)
		if err != nil {
			return err
		}
		efficiency, err := tr.Float(row, lineEfficiency)
		if err != nil {
			return err
		}

		for _, line := range [][2]string{{a, b}, {b, a}} {
			from, to := line[0], line[1]
			key := label.New(label.CategoryLine, label.TagElectricity, from, to)

			in, ok := nodes.Bus(electricityBus(from))
			if !ok {
				return fmt.Errorf("%w: bus %s for power line %s from %s to %s",
					ErrMissingBus, electricityBus(from), key, from, to)
			}
			out, ok := nodes.Bus(electricityBus(to))
			if !ok {
				return fmt.Errorf("%w: bus %s for power line %s from %s to %s",
					ErrMissingBus, electricityBus(to), key, from, to)
			}

			var flow model.Flow
			if math.IsInf(capacity, 1) {
				logger.Debug("line has no capacity limit", "label", key)
			} else {
				logger.Debug("line has a capacity limit", "label", key, "capacity", capacity)
				flow.NominalValue = model.Value(capacity)
			}

			trsf := model.NewTransformer(key,
				[]model.Port{{Bus: in}},
				[]model.Port{{Bus: out, Flow: flow}},
				map[label.Label]float64{out.Label(): efficiency},
			)
			if err := nodes.Insert(key, trsf); err != nil {
				return err
			}
		}
	}
	return nil
}
