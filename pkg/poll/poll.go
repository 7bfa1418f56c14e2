// Package poll implements bounded fixed-interval polling of readiness probes.
//
// The poller retries a boolean probe at a fixed interval until the probe
// succeeds or an attempt budget is exhausted. There is no jitter and no
// exponential growth: targets are local services and attempt budgets are
// small, so predictable wall-clock bounds matter more than load shaping.
package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPolicy is returned when a policy's attempt budget is not positive.
var ErrInvalidPolicy = errors.New("poll policy requires at least one attempt")

// Outcome is the terminal result of a polling run.
type Outcome int

const (
	// Ready means the probe reported success within the attempt budget.
	Ready Outcome = iota
	// TimedOut means the attempt budget was exhausted without a successful probe.
	TimedOut
)

// String returns the human-readable name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Ready:
		return "Ready"
	case TimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Policy bounds a polling run. Total wait budget is MaxAttempts × Interval.
type Policy struct {
	// MaxAttempts is the number of probe invocations before giving up. Must be ≥ 1.
	MaxAttempts int
	// Interval is the fixed delay between consecutive probe invocations.
	Interval time.Duration
}

// Result reports how a polling run ended and how many probe invocations it consumed.
type Result struct {
	Outcome  Outcome
	Attempts int
}

// Wait invokes probeFn until it returns true or the policy's attempt budget is
// exhausted. A probe returning true on attempt k ≤ MaxAttempts consumes exactly
// k invocations and yields Ready; a probe that never returns true consumes
// exactly MaxAttempts invocations and yields TimedOut. No delay is inserted
// after the final failed attempt.
//
// Cancelling the context interrupts the inter-attempt sleep and returns the
// context's error; the probe is not invoked again after cancellation.
func Wait(ctx context.Context, probeFn func(context.Context) bool, policy Policy) (Result, error) {
	if policy.MaxAttempts < 1 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidPolicy, policy.MaxAttempts)
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{Attempts: attempt - 1}, fmt.Errorf("polling interrupted: %w", err)
		}

		if probeFn(ctx) {
			return Result{Outcome: Ready, Attempts: attempt}, nil
		}

		if attempt == policy.MaxAttempts {
			return Result{Outcome: TimedOut, Attempts: attempt}, nil
		}

		if err := sleep(ctx, policy.Interval); err != nil {
			return Result{Attempts: attempt}, fmt.Errorf("polling interrupted: %w", err)
		}
	}
}

// sleep blocks for the given interval or until the context is cancelled.
func sleep(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return ctx.Err()
	}

	delay := time.NewTimer(interval)
	defer delay.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-delay.C:
		return nil
	}
}
