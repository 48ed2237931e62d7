package fixedincome

import (
	"math"
	"strings"
	"time"
)

// DaysPerYear converts elapsed days into years.
const DaysPerYear = 365.25

// PresentValue compounds principal from start to now under the indexer's
// annual rate. It returns principal unchanged when start or indexer is
// missing, when start lies in the future, or when the rate cannot be
// compounded (a growth factor at or below zero).
func PresentValue(principal float64, start *time.Time, indexer string, referenceRate float64, now time.Time) float64 {
	if start == nil || start.IsZero() || strings.TrimSpace(indexer) == "" {
		return principal
	}

	years := YearsBetween(*start, now)
	if years < 0 {
		return principal
	}

	rate := ParseIndexer(indexer).AnnualRate(referenceRate)
	if math.IsNaN(rate) || math.IsInf(rate, 0) || 1+rate <= 0 {
		return principal
	}

	value := principal * math.Pow(1+rate, years)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return principal
	}
	return value
}

// YearsBetween counts whole elapsed days, floored, divided by DaysPerYear.
func YearsBetween(start, now time.Time) float64 {
	days := math.Floor(now.Sub(start).Hours() / 24)
	return days / DaysPerYear
}
