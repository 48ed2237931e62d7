package sources

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// Snapshot holds the price points a market-data provider exposes for one
// symbol. Zero means the provider did not report that point.
type Snapshot struct {
	RegularMarketPrice float64
	PreviousClose      float64
	LastClose          float64
}

// Best returns the first positive of regular price, previous close and last
// daily close.
func (s Snapshot) Best() float64 {
	switch {
	case s.RegularMarketPrice > 0:
		return s.RegularMarketPrice
	case s.PreviousClose > 0:
		return s.PreviousClose
	case s.LastClose > 0:
		return s.LastClose
	default:
		return 0
	}
}

// MarketData looks up price snapshots by provider symbol.
type MarketData interface {
	Snapshot(ctx context.Context, symbol string) (Snapshot, error)
}

// YahooMarketData implements MarketData using go-yfinance.
type YahooMarketData struct {
	historyPeriod string
	log           zerolog.Logger
	lookup        func(symbol string) (Snapshot, error)
}

// NewYahooMarketData creates a Yahoo Finance backed MarketData
func NewYahooMarketData(log zerolog.Logger) *YahooMarketData {
	y := &YahooMarketData{
		historyPeriod: "5d",
		log:           log.With().Str("client", "yahoo").Logger(),
	}
	y.lookup = y.fetch
	return y
}

// Snapshot stops at the first price point that is available, so the
// history download only happens when quote and info both come back empty.
func (y *YahooMarketData) Snapshot(ctx context.Context, symbol string) (Snapshot, error) {
	type result struct {
		snap Snapshot
		err  error
	}

	// go-yfinance does not take a context; run it aside so the caller's
	// deadline still bounds the wait. After a timeout the goroutine lingers
	// until the library returns and its result is dropped.
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("yahoo lookup for %s panicked: %v", symbol, p)}
			}
		}()
		snap, err := y.lookup(symbol)
		done <- result{snap, err}
	}()

	select {
	case r := <-done:
		return r.snap, r.err
	case <-ctx.Done():
		return Snapshot{}, fmt.Errorf("yahoo lookup for %s: %w", symbol, ctx.Err())
	}
}

func (y *YahooMarketData) fetch(symbol string) (Snapshot, error) {
	var snap Snapshot

	t, err := ticker.New(symbol)
	if err != nil {
		return snap, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	quote, err := t.Quote()
	if err == nil && quote != nil && quote.RegularMarketPrice > 0 {
		snap.RegularMarketPrice = quote.RegularMarketPrice
		return snap, nil
	}
	if err != nil {
		y.log.Debug().Err(err).Str("symbol", symbol).Msg("Quote lookup failed")
	}

	info, err := t.Info()
	if err == nil && info != nil && info.RegularMarketPreviousClose > 0 {
		snap.PreviousClose = info.RegularMarketPreviousClose
		return snap, nil
	}
	if err != nil {
		y.log.Debug().Err(err).Str("symbol", symbol).Msg("Info lookup failed")
	}

	bars, err := t.History(models.HistoryParams{
		Period:     y.historyPeriod,
		Interval:   "1d",
		AutoAdjust: true,
	})
	if err != nil {
		return snap, fmt.Errorf("failed to get history: %w", err)
	}
	if len(bars) > 0 {
		snap.LastClose = bars[len(bars)-1].Close
	}

	return snap, nil
}
