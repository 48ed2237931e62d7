package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAssetClass(t *testing.T) {
	tests := map[string]AssetClass{
		"Acao":        AssetClassEquity,
		"Ação":        AssetClassEquity,
		"equity":      AssetClassEquity,
		"FII":         AssetClassFund,
		"ETF":         AssetClassETF,
		"Opcao":       AssetClassOption,
		"Opção":       AssetClassOption,
		"Cripto":      AssetClassCrypto,
		"Crypto":      AssetClassCrypto,
		"RendaFixa":   AssetClassFixedIncome,
		"Renda Fixa":  AssetClassFixedIncome,
		"FixedIncome": AssetClassFixedIncome,
		"Imovel":      AssetClassUnknown,
		"":            AssetClassUnknown,
	}

	for raw, want := range tests {
		assert.Equal(t, want, ParseAssetClass(raw), "label %q", raw)
	}
}

func TestParseDirection(t *testing.T) {
	assert.Equal(t, DirectionBuy, ParseDirection("C"))
	assert.Equal(t, DirectionBuy, ParseDirection("compra"))
	assert.Equal(t, DirectionBuy, ParseDirection("BUY"))
	assert.Equal(t, DirectionSell, ParseDirection("V"))
	assert.Equal(t, DirectionSell, ParseDirection(" v "))
	assert.Equal(t, DirectionSell, ParseDirection("Venda"))
	assert.Equal(t, DirectionSell, ParseDirection("sell"))

	// Unrecognized values default to Buy
	assert.Equal(t, DirectionBuy, ParseDirection(""))
	assert.Equal(t, DirectionBuy, ParseDirection("X"))
}

func TestPosition_ClassLabel(t *testing.T) {
	p := Position{Class: AssetClassCrypto, RawClass: " Cripto "}
	assert.Equal(t, "Cripto", p.ClassLabel())

	p.RawClass = ""
	assert.Equal(t, "Crypto", p.ClassLabel())
}

func TestNormalizeCurrency(t *testing.T) {
	assert.Equal(t, "USD", NormalizeCurrency(" usd", "BRL"))
	assert.Equal(t, "BRL", NormalizeCurrency("", "brl"))
}

func TestResolvedQuote_Resolved(t *testing.T) {
	assert.True(t, ResolvedQuote{Price: decimal.NewFromInt(10), Source: SourceEquity}.Resolved())
	assert.False(t, ResolvedQuote{Price: decimal.Zero, Source: SourceEquity}.Resolved())
	assert.False(t, ResolvedQuote{Price: decimal.NewFromInt(10), Source: SourceNone}.Resolved())
}

func TestPosition_Normalize(t *testing.T) {
	p := Position{
		Ticker:       "  VALE3 ",
		Quantity:     decimal.NewFromInt(-10),
		AveragePrice: decimal.NewFromInt(60),
		ManualPrice:  decimal.NewFromInt(-61),
	}

	clamped := p.Normalize("brl")

	assert.Equal(t, "VALE3", p.Ticker)
	assert.Equal(t, "BRL", p.Currency)
	assert.Equal(t, DirectionBuy, p.Direction)
	assert.Equal(t, "10", p.Quantity.String())
	assert.Equal(t, "61", p.ManualPrice.String())
	assert.Equal(t, []string{"quantity", "manual_price"}, clamped)
}

func TestPosition_NormalizeKeepsValidValues(t *testing.T) {
	p := Position{Ticker: "BTC", Currency: "usd", Quantity: decimal.NewFromInt(1), Direction: DirectionSell}
	assert.Empty(t, p.Normalize("BRL"))
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, DirectionSell, p.Direction)
}
