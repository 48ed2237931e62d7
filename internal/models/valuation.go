package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price source tags
const (
	SourceEquity      = "equity"
	SourceCrypto      = "crypto"
	SourceOptions     = "options"
	SourceFixedIncome = "fixed_income"
	SourceManual      = "manual"
	SourceAverage     = "average"
	SourceNone        = "none"
)

// ResolvedQuote is the outcome of one price resolution for an asset.
// Price is zero and Source is SourceNone when nothing was resolved.
type ResolvedQuote struct {
	Ticker string          `json:"ticker"`
	Price  decimal.Decimal `json:"price"`
	Source string          `json:"source"`
}

// Resolved reports whether the quote carries a usable price.
func (q ResolvedQuote) Resolved() bool {
	return q.Source != SourceNone && q.Price.IsPositive()
}

// ValuationRecord is one output row of a revaluation run.
type ValuationRecord struct {
	RunID         string          `json:"run_id"`
	Ticker        string          `json:"ticker"`
	Class         string          `json:"class"`
	Direction     Direction       `json:"direction"`
	Currency      string          `json:"currency"`
	Quantity      decimal.Decimal `json:"quantity"`
	AveragePrice  decimal.Decimal `json:"average_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	PriceSource   string          `json:"price_source"`
	FXRate        decimal.Decimal `json:"fx_rate"`
	TotalNative   decimal.Decimal `json:"total_native"`
	TotalBase     decimal.Decimal `json:"total_base"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	ProfitLoss    decimal.Decimal `json:"profit_loss"`
	ProfitLossPct decimal.Decimal `json:"profit_loss_pct"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Unresolved reports whether every price fallback was exhausted.
func (r ValuationRecord) Unresolved() bool {
	return r.PriceSource == SourceNone
}
