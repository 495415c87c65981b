package lifecycle

import (
	"math/rand"
	"time"
)

// Backoff computes exponentially growing delays with ±20% jitter.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
	rand    func() float64
}

// NewBackoff creates a new backoff with the given initial and max durations.
func NewBackoff(initial, max time.Duration) *Backoff {
	return &Backoff{
		initial: initial,
		max:     max,
		current: initial,
		rand:    rand.Float64,
	}
}

// Next returns the jittered current delay and doubles the delay for the
// following call, capped at max.
func (b *Backoff) Next() time.Duration {
	jitter := float64(b.current) * 0.2 * (b.rand()*2 - 1)
	d := time.Duration(float64(b.current) + jitter)

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Reset resets the backoff to the initial duration.
func (b *Backoff) Reset() {
	b.current = b.initial
}

// Current returns the un-jittered delay the next call to Next is based on.
func (b *Backoff) Current() time.Duration {
	return b.current
}
