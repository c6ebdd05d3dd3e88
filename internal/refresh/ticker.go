package refresh

import (
	"context"
	"math/rand"
	"time"
)

// percentDivisor converts a jitter percentage to a ratio.
const percentDivisor = 100

// Clock produces the delay before each refresh cycle: the configured
// interval perturbed by up to ±jitterPercent, re-randomized on every
// cycle. Jitter keeps restarts and multiple deployments from aligning
// their outbound bursts on the same wall-clock boundary.
type Clock struct {
	interval      time.Duration
	jitterPercent int
}

// NewClock creates a jittered clock.
func NewClock(interval time.Duration, jitterPercent int) *Clock {
	return &Clock{
		interval:      interval,
		jitterPercent: jitterPercent,
	}
}

// NextDelay returns a fresh jittered delay:
// interval * (1 + uniform(-jitter, +jitter)).
func (c *Clock) NextDelay() time.Duration {
	if c.jitterPercent == 0 {
		return c.interval
	}

	jitter := float64(c.jitterPercent) / percentDivisor
	// uniform in [-jitter, +jitter)
	factor := 1 + (rand.Float64()*2-1)*jitter

	return time.Duration(float64(c.interval) * factor)
}

// Wait blocks for the given delay or until ctx is cancelled, whichever
// comes first. Returns ctx.Err() on cancellation so callers stop
// immediately instead of waiting out the delay.
func (c *Clock) Wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
