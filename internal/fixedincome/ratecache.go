package fixedincome

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// RateFetcher fetches the annualized benchmark rate as a fraction.
type RateFetcher interface {
	FetchReferenceRate(ctx context.Context) (float64, error)
}

// RateFetcherFunc is a function adapter for RateFetcher.
type RateFetcherFunc func(ctx context.Context) (float64, error)

func (f RateFetcherFunc) FetchReferenceRate(ctx context.Context) (float64, error) {
	return f(ctx)
}

// DefaultFetchTimeout bounds the shared benchmark fetch.
const DefaultFetchTimeout = 30 * time.Second

// RateCache memoizes the reference rate for the lifetime of the process.
// Concurrent first calls share a single fetch. Failures are not cached.
// The fetch runs detached from any one caller, so a caller that gives up
// early gets the fallback while the others keep waiting for the real rate.
type RateCache struct {
	fetcher  RateFetcher
	fallback float64
	timeout  time.Duration
	log      zerolog.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	rate   float64
	cached bool
}

// NewRateCache creates a RateCache that answers fallback when a fetch fails.
func NewRateCache(fetcher RateFetcher, fallback float64, log zerolog.Logger) *RateCache {
	return &RateCache{
		fetcher:  fetcher,
		fallback: fallback,
		timeout:  DefaultFetchTimeout,
		log:      log.With().Str("component", "reference-rate").Logger(),
	}
}

// SetFetchTimeout bounds the shared fetch; non-positive values are ignored.
func (c *RateCache) SetFetchTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Get returns the cached rate, fetching it on first use. ctx bounds how long
// this caller waits, not the fetch itself.
func (c *RateCache) Get(ctx context.Context) float64 {
	if rate, ok := c.Cached(); ok {
		return rate
	}

	ch := c.group.DoChan("reference-rate", func() (interface{}, error) {
		if rate, ok := c.Cached(); ok {
			return rate, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		rate, err := c.fetcher.FetchReferenceRate(fetchCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.rate = rate
		c.cached = true
		c.mu.Unlock()

		c.log.Info().Float64("rate", rate).Msg("Reference rate cached")
		return rate, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			c.log.Warn().Err(res.Err).Float64("fallback", c.fallback).Msg("Reference rate fetch failed, using fallback")
			return c.fallback
		}
		return res.Val.(float64)
	case <-ctx.Done():
		c.log.Warn().Err(ctx.Err()).Float64("fallback", c.fallback).Msg("Gave up waiting for reference rate, using fallback")
		return c.fallback
	}
}

// Cached returns the memoized rate, if any.
func (c *RateCache) Cached() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate, c.cached
}
