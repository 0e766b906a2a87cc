package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"shelfwatch/lib/product"
)

// Runner drives check rounds, either once or on an interval until the
// context is cancelled.
type Runner struct {
	Service *Service
	// pause between rounds, defaults to 5 minutes
	Interval time.Duration
	// pause before the next round after one blows up, defaults to 30 seconds
	ErrorBackoff time.Duration
	// optional, invoked after every round with its results
	OnRound func(ctx context.Context, results map[string]*product.Product)
}

// RunOnce drives a single round.
func (r Runner) RunOnce(ctx context.Context) map[string]*product.Product {
	results := r.Service.CheckAll(ctx)
	if r.OnRound != nil {
		r.OnRound(ctx, results)
	}
	return results
}

// Run drives rounds until ctx is cancelled. Item failures are contained
// inside the round; a round that panics outright is logged and retried
// after the error backoff instead of the regular interval.
func (r Runner) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	backoff := r.ErrorBackoff
	if backoff <= 0 {
		backoff = 30 * time.Second
	}

	slog.InfoContext(ctx, "monitoring started", "interval", interval)
	for {
		wait := interval
		err := r.round(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "monitor round", "err", err)
			wait = backoff
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.InfoContext(ctx, "monitoring stopped")
			return
		case <-timer.C:
		}
	}
}

func (r Runner) round(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("round panicked: %v", rec)
		}
	}()
	r.RunOnce(ctx)
	return nil
}
