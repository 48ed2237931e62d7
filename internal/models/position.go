package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-valuation/internal/utils"
)

// AssetClass is the declared class of a wallet position.
type AssetClass string

// Asset class constants
const (
	AssetClassEquity      AssetClass = "Equity"
	AssetClassFund        AssetClass = "Fund"
	AssetClassETF         AssetClass = "ETF"
	AssetClassOption      AssetClass = "Option"
	AssetClassCrypto      AssetClass = "Crypto"
	AssetClassFixedIncome AssetClass = "FixedIncome"
	AssetClassUnknown     AssetClass = "Unknown"
)

var assetClassAliases = map[string]AssetClass{
	"EQUITY":      AssetClassEquity,
	"STOCK":       AssetClassEquity,
	"ACAO":        AssetClassEquity,
	"FUND":        AssetClassFund,
	"FII":         AssetClassFund,
	"ETF":         AssetClassETF,
	"OPTION":      AssetClassOption,
	"OPCAO":       AssetClassOption,
	"CRYPTO":      AssetClassCrypto,
	"CRIPTO":      AssetClassCrypto,
	"FIXEDINCOME": AssetClassFixedIncome,
	"RENDAFIXA":   AssetClassFixedIncome,
}

// ParseAssetClass maps an English or Portuguese class label to an AssetClass.
// Unrecognized labels map to AssetClassUnknown.
func ParseAssetClass(raw string) AssetClass {
	if class, ok := assetClassAliases[utils.FoldKey(raw)]; ok {
		return class
	}
	return AssetClassUnknown
}

// Direction is whether a position is long (Buy) or short (Sell).
type Direction string

// Direction constants
const (
	DirectionBuy  Direction = "Buy"
	DirectionSell Direction = "Sell"
)

// ParseDirection maps C/Compra/Buy and V/Venda/Sell; anything else is Buy.
func ParseDirection(raw string) Direction {
	switch utils.FoldKey(raw) {
	case "V", "VENDA", "SELL":
		return DirectionSell
	default:
		return DirectionBuy
	}
}

// Position represents one wallet row as read from the position store.
type Position struct {
	Ticker       string          `json:"ticker"`
	Class        AssetClass      `json:"class"`
	RawClass     string          `json:"raw_class,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	AveragePrice decimal.Decimal `json:"average_price"`
	Currency     string          `json:"currency"`
	ManualPrice  decimal.Decimal `json:"manual_price,omitempty"`
	Direction    Direction       `json:"direction"`
	StartDate    *time.Time      `json:"start_date,omitempty"`
	Indexer      string          `json:"indexer,omitempty"`
}

// ClassLabel is the label written to outputs: the raw label from the store
// when present, otherwise the normalized class.
func (p Position) ClassLabel() string {
	if strings.TrimSpace(p.RawClass) != "" {
		return strings.TrimSpace(p.RawClass)
	}
	return string(p.Class)
}

// NormalizeCurrency upper-cases and trims a currency code, defaulting to base.
func NormalizeCurrency(code, base string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return strings.ToUpper(base)
	}
	return code
}

// Normalize trims the ticker, defaults the currency to base and clamps
// negative quantity and prices to their absolute value. It returns the
// names of the clamped fields.
func (p *Position) Normalize(base string) []string {
	p.Ticker = strings.TrimSpace(p.Ticker)
	p.Currency = NormalizeCurrency(p.Currency, base)
	if p.Direction == "" {
		p.Direction = DirectionBuy
	}

	var clamped []string
	if p.Quantity.IsNegative() {
		p.Quantity = p.Quantity.Abs()
		clamped = append(clamped, "quantity")
	}
	if p.AveragePrice.IsNegative() {
		p.AveragePrice = p.AveragePrice.Abs()
		clamped = append(clamped, "average_price")
	}
	if p.ManualPrice.IsNegative() {
		p.ManualPrice = p.ManualPrice.Abs()
		clamped = append(clamped, "manual_price")
	}
	return clamped
}
