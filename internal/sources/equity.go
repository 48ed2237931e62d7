package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// EquitySource resolves equities, funds and ETFs through a MarketData
// provider that keys listings by an exchange-suffixed ticker.
type EquitySource struct {
	market MarketData
	suffix string
}

// NewEquitySource creates an EquitySource appending suffix (e.g. ".SA").
func NewEquitySource(market MarketData, suffix string) *EquitySource {
	return &EquitySource{market: market, suffix: suffix}
}

// Name returns the source tag.
func (s *EquitySource) Name() string { return "equity" }

// Symbol returns the provider symbol for a raw ticker.
func (s *EquitySource) Symbol(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if s.suffix == "" || strings.HasSuffix(t, strings.ToUpper(s.suffix)) {
		return t
	}
	return t + strings.ToUpper(s.suffix)
}

// Price resolves regular market price, then previous close, then the most
// recent daily close.
func (s *EquitySource) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	symbol := s.Symbol(ticker)

	snap, err := s.market.Snapshot(ctx, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch %s: %w", symbol, err)
	}

	return positive(decimal.NewFromFloat(snap.Best()))
}
