package sources

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces consecutive calls to the same source by a fixed delay. A
// Pacer belongs to one worker lane and is not safe for concurrent use.
type Pacer struct {
	delay    time.Duration
	limiters map[string]*rate.Limiter
}

// NewPacer creates a Pacer; a zero delay disables pacing.
func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay, limiters: make(map[string]*rate.Limiter)}
}

// Wait blocks until the lane may call source again. The first call to a
// source never waits.
func (p *Pacer) Wait(ctx context.Context, source string) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	lim, ok := p.limiters[source]
	if !ok {
		lim = rate.NewLimiter(rate.Every(p.delay), 1)
		p.limiters[source] = lim
	}
	return lim.Wait(ctx)
}
