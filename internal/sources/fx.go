package sources

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// FXSource looks up one spot rate, e.g. "BRL=X" for USD/BRL.
type FXSource struct {
	market MarketData
	pair   string
}

// NewFXSource creates an FXSource for a provider pair symbol.
func NewFXSource(market MarketData, pair string) *FXSource {
	return &FXSource{market: market, pair: pair}
}

// Name returns the source tag.
func (s *FXSource) Name() string { return "fx" }

// Rate returns the current spot rate of the configured pair.
func (s *FXSource) Rate(ctx context.Context) (decimal.Decimal, error) {
	snap, err := s.market.Snapshot(ctx, s.pair)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch %s: %w", s.pair, err)
	}
	return positive(decimal.NewFromFloat(snap.Best()))
}
