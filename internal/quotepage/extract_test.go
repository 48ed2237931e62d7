package quotepage

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quotesPage = `<html><body>
<table class="summary"><thead><tr><th>Ult</th></tr></thead>
<tbody><tr><td>999,99</td></tr></tbody></table>
<table class="table top-buffer-20">
  <thead>
    <tr><th rowspan="2">Data</th><th colspan="5">Prêmio</th></tr>
    <tr><td>Min</td><td>Máx</td><td>Méd</td><td>Ult</td><td>Vol</td></tr>
  </thead>
  <tbody>
    <tr><td>17/10/2026</td><td>0,10</td><td>0,95</td><td>0,50</td><td>0,80</td><td>1.234,56</td></tr>
    <tr><td>16/10/2026</td><td>0,20</td><td>0,75</td><td>0,40</td><td>0,70</td><td>900</td></tr>
  </tbody>
</table>
</body></html>`

func TestExtractLastPrice_UsesOffsetIntoDataRow(t *testing.T) {
	// Header "Ult" is at index 3, the data row has a leading date cell,
	// so the value is read from index 4 ("0,80"), not index 3 ("0,50").
	price, err := ExtractLastPrice(strings.NewReader(quotesPage))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.80").Equal(price), "got %s", price)
}

func TestExtractLastPrice_StopsAtFirstMatchingHeader(t *testing.T) {
	page := `<table class="top-buffer-20">
  <thead>
    <tr><th rowspan="2">Data</th><th colspan="3">Cotação</th><th>Vol</th></tr>
    <tr><th>Abe</th><th>Ult</th><th>Var</th><th>Vol Ult</th></tr>
  </thead>
  <tbody>
    <tr><td>17/10/2026</td><td>1,00</td><td>2,35</td><td>5%</td><td>38,2</td></tr>
  </tbody>
</table>`

	price, err := ExtractLastPrice(strings.NewReader(page))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.35").Equal(price), "got %s", price)
}

func TestExtractLastPrice_Failures(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		wantErr error
	}{
		{
			name:    "no marked table",
			page:    `<table class="other"><tbody><tr><td>1</td></tr></tbody></table>`,
			wantErr: ErrTableNotFound,
		},
		{
			name: "no last price column",
			page: `<table class="top-buffer-20"><thead><tr><th>Min</th><th>Máx</th></tr></thead>
<tbody><tr><td>d</td><td>1</td><td>2</td></tr></tbody></table>`,
			wantErr: ErrColumnNotFound,
		},
		{
			name:    "no header",
			page:    `<table class="top-buffer-20"><tbody><tr><td>d</td><td>1</td></tr></tbody></table>`,
			wantErr: ErrColumnNotFound,
		},
		{
			name:    "no data row",
			page:    `<table class="top-buffer-20"><thead><tr><th>Ult</th></tr></thead><tbody></tbody></table>`,
			wantErr: ErrNoDataRow,
		},
		{
			name: "data row too short",
			page: `<table class="top-buffer-20"><thead><tr><th>Min</th><th>Ult</th></tr></thead>
<tbody><tr><td>d</td><td>1</td></tr></tbody></table>`,
			wantErr: ErrNoDataRow,
		},
		{
			name: "dash value",
			page: `<table class="top-buffer-20"><thead><tr><th>Ult</th></tr></thead>
<tbody><tr><td>d</td><td> - </td></tr></tbody></table>`,
			wantErr: ErrEmptyValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := ExtractLastPrice(strings.NewReader(tt.page))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, price.IsZero())
		})
	}
}

func TestParseLocaleNumber(t *testing.T) {
	v, err := ParseLocaleNumber("1.234,56")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1234.56").Equal(v))

	v, err = ParseLocaleNumber(" 0,8000 ")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.8").Equal(v))

	v, err = ParseLocaleNumber("12")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(12).Equal(v))

	_, err = ParseLocaleNumber("-")
	assert.ErrorIs(t, err, ErrEmptyValue)

	_, err = ParseLocaleNumber("")
	assert.ErrorIs(t, err, ErrEmptyValue)

	_, err = ParseLocaleNumber("n/d")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyValue)
}
