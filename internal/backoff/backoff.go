// Package backoff provides linear backoff delays with context-aware sleeping.
package backoff

import (
	"context"
	"time"
)

// Policy defines the parameters for linear backoff calculation.
type Policy struct {
	// Base is the delay for the first retry; attempt n waits Base × n.
	Base time.Duration
	// Max caps the computed delay. Zero means no cap.
	Max time.Duration
}

// DefaultPolicy returns the policy used for provider retries: 5s base, 60s cap.
func DefaultPolicy() Policy {
	return Policy{
		Base: 5 * time.Second,
		Max:  60 * time.Second,
	}
}

// Delay computes the backoff duration for a given attempt number.
// Attempt numbers start at 1; non-positive attempts yield zero.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 || p.Base <= 0 {
		return 0
	}
	d := p.Base * time.Duration(attempt)
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

// SleepWithContext sleeps for the specified duration, respecting context
// cancellation. Returns nil if the sleep completed, or ctx.Err() if the
// context was cancelled first.
func SleepWithContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Sleep computes the delay for attempt and sleeps for it.
// It combines Delay and SleepWithContext for convenience.
func (p Policy) Sleep(ctx context.Context, attempt int) error {
	return SleepWithContext(ctx, p.Delay(attempt))
}
