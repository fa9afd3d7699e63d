package watcher

import (
	"context"
	"slices"
	"time"

	"github.com/ritzau/deflex-graph/pkg/logging"
)

// Debouncer batches rapid file system events to avoid excessive recompilation.
// Events are held until nothing changed for quietPeriod, but never longer
// than maxWait after the first one. Each flush emits one batch holding at
// most one event per change type.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan []ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan []ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quiet       *time.Timer
		maxWait     *time.Timer
		quietC      <-chan time.Time
		maxWaitC    <-chan time.Time
		accumulated = make(map[ChangeType][]string)
		eventCount  int
	)

	flush := func() {
		if eventCount > 0 {
			logging.Debug("flushing accumulated events", "count", eventCount)

			// Config first, a reload also rereads the tables
			var batch []ChangeEvent
			for _, t := range []ChangeType{ChangeTypeConfig, ChangeTypeTable} {
				if paths := accumulated[t]; len(paths) > 0 {
					slices.Sort(paths)
					batch = append(batch, ChangeEvent{Type: t, Paths: slices.Compact(paths), Timestamp: time.Now()})
				}
			}
			if len(batch) > 0 {
				d.output <- batch
			}
		}

		accumulated = make(map[ChangeType][]string)
		eventCount = 0

		if quiet != nil {
			quiet.Stop()
		}
		if maxWait != nil {
			maxWait.Stop()
		}
		quietC, maxWaitC = nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			accumulated[event.Type] = append(accumulated[event.Type], event.Paths...)
			eventCount++

			if quiet == nil {
				quiet = time.NewTimer(d.quietPeriod)
			} else {
				quiet.Reset(d.quietPeriod)
			}
			quietC = quiet.C

			if maxWaitC == nil {
				if maxWait == nil {
					maxWait = time.NewTimer(d.maxWait)
				} else {
					maxWait.Reset(d.maxWait)
				}
				maxWaitC = maxWait.C
			}

		case <-quietC:
			flush()

		case <-maxWaitC:
			flush()
		}
	}
}

// Output returns the channel of debounced batches
func (d *Debouncer) Output() <-chan []ChangeEvent {
	return d.output
}
