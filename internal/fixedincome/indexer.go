// Package fixedincome values fixed-income positions by compounding the
// invested principal under a CDI-linked, pre-fixed or IPCA+ rate regime.
package fixedincome

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/trogers1052/portfolio-valuation/internal/utils"
)

// IndexerKind is the rate regime named by an indexer descriptor.
type IndexerKind int

// Indexer kinds
const (
	IndexerNone IndexerKind = iota
	IndexerCDI
	IndexerPre
	IndexerIPCA
)

const (
	// FallbackAnnualRate applies when a CDI or PRE percentage cannot be parsed.
	FallbackAnnualRate = 0.10
	// AssumedMonthlyIPCA is the fixed monthly inflation used for IPCA+ papers.
	AssumedMonthlyIPCA = 0.003
)

var percentPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Indexer is a parsed rate descriptor such as "105%CDI", "12%PRE" or "IPCA+5%".
type Indexer struct {
	Kind IndexerKind
	// Percent is the number found next to the marker, in percent units.
	Percent float64
	// Parsed is false when the marker was found but its percentage was not.
	Parsed bool
}

// ParseIndexer normalizes case, spaces, accents and decimal commas before
// looking for the CDI, PRE and IPCA+ markers, in that order. The CDI
// percentage is the number closest before the marker ("105% do CDI"); PRE
// also accepts it after ("Pre 12% a.a."); the IPCA+ spread is the first
// number after it. Numbers are read as magnitudes.
func ParseIndexer(raw string) Indexer {
	s := strings.ReplaceAll(utils.FoldKey(raw), ",", ".")

	switch {
	case strings.Contains(s, "CDI"):
		i := strings.Index(s, "CDI")
		pct, ok := lastPercent(s[:i])
		return Indexer{Kind: IndexerCDI, Percent: pct, Parsed: ok}
	case strings.Contains(s, "PRE"):
		i := strings.Index(s, "PRE")
		pct, ok := lastPercent(s[:i])
		if !ok {
			pct, ok = firstPercent(s[i+len("PRE"):])
		}
		return Indexer{Kind: IndexerPre, Percent: pct, Parsed: ok}
	case strings.Contains(s, "IPCA+"):
		pct, ok := firstPercent(s[strings.Index(s, "IPCA+")+len("IPCA+"):])
		return Indexer{Kind: IndexerIPCA, Percent: pct, Parsed: ok}
	default:
		return Indexer{Kind: IndexerNone}
	}
}

// NeedsReferenceRate reports whether AnnualRate reads the reference rate.
func (i Indexer) NeedsReferenceRate() bool {
	return i.Kind == IndexerCDI && i.Parsed
}

// AnnualRate returns the annual rate as a fraction.
func (i Indexer) AnnualRate(referenceRate float64) float64 {
	switch i.Kind {
	case IndexerCDI:
		if !i.Parsed {
			return FallbackAnnualRate
		}
		return i.Percent / 100 * referenceRate
	case IndexerPre:
		if !i.Parsed {
			return FallbackAnnualRate
		}
		return i.Percent / 100
	case IndexerIPCA:
		ipcaAnnual := math.Pow(1+AssumedMonthlyIPCA, 12) - 1
		spread := 0.0
		if i.Parsed {
			spread = i.Percent / 100
		}
		return (1+ipcaAnnual)*(1+spread) - 1
	default:
		return 0
	}
}

func lastPercent(s string) (float64, bool) {
	matches := percentPattern.FindAllString(s, -1)
	if len(matches) == 0 {
		return 0, false
	}
	return parsePercent(matches[len(matches)-1])
}

func firstPercent(s string) (float64, bool) {
	m := percentPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	return parsePercent(m)
}

func parsePercent(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
