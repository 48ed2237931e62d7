package fixedincome

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIndexer(t *testing.T) {
	tests := []struct {
		raw     string
		kind    IndexerKind
		percent float64
		parsed  bool
	}{
		{"105%CDI", IndexerCDI, 105, true},
		{"105% do CDI", IndexerCDI, 105, true},
		{"CDB 110% CDI", IndexerCDI, 110, true},
		{" 98,5 % cdi", IndexerCDI, 98.5, true},
		{"CDI", IndexerCDI, 0, false},
		{"12%PRE", IndexerPre, 12, true},
		{"12,5% Pré", IndexerPre, 12.5, true},
		{"12% a.a. PRE", IndexerPre, 12, true},
		{"Pré 12% a.a.", IndexerPre, 12, true},
		{"IPCA+5%", IndexerIPCA, 5, true},
		{"ipca + 6,2%", IndexerIPCA, 6.2, true},
		{"IPCA + 5,5% a.a.", IndexerIPCA, 5.5, true},
		{"IPCA+", IndexerIPCA, 0, false},
		{"SELIC", IndexerNone, 0, false},
		{"", IndexerNone, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseIndexer(tt.raw)
			assert.Equal(t, tt.kind, got.Kind)
			assert.Equal(t, tt.parsed, got.Parsed)
			assert.InDelta(t, tt.percent, got.Percent, 1e-12)
		})
	}
}

func TestIndexer_AnnualRate(t *testing.T) {
	assert.InDelta(t, 0.10, ParseIndexer("100%CDI").AnnualRate(0.10), 1e-12)
	assert.InDelta(t, 0.1155, ParseIndexer("105%CDI").AnnualRate(0.11), 1e-12)
	assert.InDelta(t, FallbackAnnualRate, ParseIndexer("CDI").AnnualRate(0.15), 1e-12)
	assert.InDelta(t, 0.12, ParseIndexer("12%PRE").AnnualRate(0.50), 1e-12)
	assert.InDelta(t, FallbackAnnualRate, ParseIndexer("PRE").AnnualRate(0.50), 1e-12)
	assert.InDelta(t, 0.0889, ParseIndexer("IPCA+5%").AnnualRate(0), 1e-3)
	assert.InDelta(t, 0.0366, ParseIndexer("IPCA+").AnnualRate(0), 1e-4)
	assert.Equal(t, 0.0, ParseIndexer("LCI").AnnualRate(0.10))
	assert.InDelta(t, 0.1575, ParseIndexer("105% do CDI").AnnualRate(0.15), 1e-12)
	assert.InDelta(t, (math.Pow(1.003, 12))*1.055-1, ParseIndexer("IPCA + 5,5% a.a.").AnnualRate(0), 1e-12)
}

func TestIndexer_NeedsReferenceRate(t *testing.T) {
	assert.True(t, ParseIndexer("100%CDI").NeedsReferenceRate())
	assert.False(t, ParseIndexer("CDI").NeedsReferenceRate())
	assert.False(t, ParseIndexer("12%PRE").NeedsReferenceRate())
	assert.False(t, ParseIndexer("IPCA+5%").NeedsReferenceRate())
}
