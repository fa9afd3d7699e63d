package scenario

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidHorizon is returned when the configured year is not a calendar year
var ErrInvalidHorizon = errors.New("invalid horizon")

// DebugSteps is the length of the horizon in debug mode
const DebugSteps = 3

// Horizon is the hourly time index of a scenario year
type Horizon struct {
	Year  int
	Steps int
	Start time.Time
}

// NewHorizon creates the hourly horizon of year. A debug horizon has only
// DebugSteps steps; the year must be valid all the same.
func NewHorizon(year string, debug bool) (Horizon, error) {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y < 1 {
		return Horizon{}, fmt.Errorf("year %q is not a calendar year: %w", year, ErrInvalidHorizon)
	}

	start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	steps := 24 * daysIn(y)
	if debug {
		steps = DebugSteps
	}

	return Horizon{Year: y, Steps: steps, Start: start}, nil
}

func daysIn(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// Timestamps returns the start time of every step
func (h Horizon) Timestamps() []time.Time {
	ts := make([]time.Time, h.Steps)
	for i := range ts {
		ts[i] = h.Start.Add(time.Duration(i) * time.Hour)
	}
	return ts
}

// End returns the end of the last step
func (h Horizon) End() time.Time {
	return h.Start.Add(time.Duration(h.Steps) * time.Hour)
}
