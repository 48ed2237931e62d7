// Package valuation turns wallet positions into valuation records: it routes
// each position to a price strategy, applies the price fallback chain and
// computes base-currency totals and profit/loss.
package valuation

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-valuation/internal/models"
)

// PriceSource resolves one ticker to a positive price or an error.
type PriceSource interface {
	Name() string
	Price(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// StrategyKind selects how a position is priced.
type StrategyKind int

// Strategy kinds
const (
	// StrategyZero resolves nothing; the calculator fallbacks apply.
	StrategyZero StrategyKind = iota
	// StrategyMarket asks a PriceSource for a unit price.
	StrategyMarket
	// StrategyFixedIncome compounds the invested principal.
	StrategyFixedIncome
)

// Strategy is the pricing capability chosen for an asset class.
type Strategy struct {
	Kind StrategyKind
	// Tag is the models.Source* value stamped on prices this strategy produces.
	Tag    string
	Source PriceSource
}

// Router maps asset classes to strategies.
type Router struct {
	equity  PriceSource
	crypto  PriceSource
	options PriceSource
}

// NewRouter creates a Router. Equities, funds and ETFs share one source.
func NewRouter(equity, crypto, options PriceSource) *Router {
	return &Router{equity: equity, crypto: crypto, options: options}
}

// Route returns the strategy for class. Unknown classes, and classes whose
// source is not configured, get the zero strategy so one bad row never
// aborts a batch.
func (r *Router) Route(class models.AssetClass) Strategy {
	switch class {
	case models.AssetClassEquity, models.AssetClassFund, models.AssetClassETF:
		return market(r.equity, models.SourceEquity)
	case models.AssetClassOption:
		return market(r.options, models.SourceOptions)
	case models.AssetClassCrypto:
		return market(r.crypto, models.SourceCrypto)
	case models.AssetClassFixedIncome:
		return Strategy{Kind: StrategyFixedIncome, Tag: models.SourceFixedIncome}
	default:
		return Strategy{Kind: StrategyZero, Tag: models.SourceNone}
	}
}

func market(src PriceSource, tag string) Strategy {
	if src == nil {
		return Strategy{Kind: StrategyZero, Tag: models.SourceNone}
	}
	return Strategy{Kind: StrategyMarket, Tag: tag, Source: src}
}
