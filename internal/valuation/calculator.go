package valuation

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-valuation/internal/models"
)

// Calculator computes totals and profit/loss for one position.
type Calculator struct {
	BaseCurrency string
}

// NewCalculator creates a Calculator reporting in base.
func NewCalculator(base string) Calculator {
	return Calculator{BaseCurrency: strings.ToUpper(base)}
}

// FinalPrice applies the fallback chain: resolved quote, then manual price,
// then average price. It returns zero and models.SourceNone when all three
// are missing.
func FinalPrice(p models.Position, quote models.ResolvedQuote) (decimal.Decimal, string) {
	switch {
	case quote.Resolved():
		return quote.Price, quote.Source
	case p.ManualPrice.IsPositive():
		return p.ManualPrice, models.SourceManual
	case p.AveragePrice.IsPositive():
		return p.AveragePrice, models.SourceAverage
	default:
		return decimal.Zero, models.SourceNone
	}
}

// FXRateFor returns 1 for base-currency positions and fx otherwise.
func (c Calculator) FXRateFor(currency string, fx decimal.Decimal) decimal.Decimal {
	if strings.EqualFold(currency, c.BaseCurrency) {
		return decimal.NewFromInt(1)
	}
	return fx
}

// Value builds the valuation record for p. RunID and UpdatedAt are left to
// the caller.
func (c Calculator) Value(p models.Position, quote models.ResolvedQuote, fx decimal.Decimal) models.ValuationRecord {
	price, source := FinalPrice(p, quote)
	rate := c.FXRateFor(p.Currency, fx)

	totalNative := p.Quantity.Mul(price)
	totalBase := totalNative.Mul(rate)
	costBasis := p.Quantity.Mul(p.AveragePrice).Mul(rate)
	pnl := totalBase.Sub(costBasis)

	pnlPct := decimal.Zero
	if costBasis.IsPositive() {
		pnlPct = pnl.Div(costBasis)
	}

	// A written option gains when its premium falls.
	if p.Class == models.AssetClassOption && p.Direction == models.DirectionSell {
		pnl = pnl.Neg()
		pnlPct = pnlPct.Neg()
	}

	return models.ValuationRecord{
		Ticker:        p.Ticker,
		Class:         p.ClassLabel(),
		Direction:     p.Direction,
		Currency:      p.Currency,
		Quantity:      p.Quantity,
		AveragePrice:  p.AveragePrice,
		CurrentPrice:  price,
		PriceSource:   source,
		FXRate:        rate,
		TotalNative:   totalNative,
		TotalBase:     totalBase,
		CostBasis:     costBasis,
		ProfitLoss:    pnl,
		ProfitLossPct: pnlPct,
	}
}
