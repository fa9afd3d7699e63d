package builder

import "errors"

var (
	// ErrMissingSeries is returned when a volatile source with capacity has
	// no feed-in series.
	ErrMissingSeries = errors.New("missing time series")

	// ErrMissingBus is returned when a transmission line references a bus
	// no earlier builder created.
	ErrMissingBus = errors.New("missing bus")
)
