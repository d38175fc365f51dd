package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"runtime/debug"

	"github.com/derekprior/schedluck/internal/league"
)

// Outcome is delivered once when a background simulation finishes.
type Outcome struct {
	Report *Report
	Err    error
}

// Start runs a seeded simulation on its own goroutine. The returned channel
// receives exactly one Outcome and is then closed. A panic inside the engine
// is turned into an error; no partial report is ever delivered.
//
// The engine cannot be interrupted. Cancelling ctx only drops the result if
// nobody is left to receive it.
func Start(ctx context.Context, lg *league.League, seed int64, opts Options) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		report, err := runRecovered(lg, seed, opts)
		select {
		case out <- Outcome{Report: report, Err: err}:
		case <-ctx.Done():
		}
	}()
	return out
}

// Wait blocks until the simulation started by Start finishes or ctx is done.
func Wait(ctx context.Context, ch <-chan Outcome) (*Report, error) {
	select {
	case o, ok := <-ch:
		if !ok {
			return nil, fmt.Errorf("simulation ended without a result")
		}
		return o.Report, o.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func runRecovered(lg *league.League, seed int64, opts Options) (report *Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			opts.withDefaults().Logger.WithField("stack", string(debug.Stack())).
				Errorf("Simulation panicked: %v", r)
			report, err = nil, fmt.Errorf("simulation failed: %v", r)
		}
	}()

	report, err = Run(lg, rand.New(rand.NewSource(seed)), opts)
	if report != nil {
		report.Seed = seed
	}
	return report, err
}
