// Package store reads wallet positions from a spreadsheet export and writes
// valuation snapshots back out, either as a CSV file or as a Redis mirror.
package store

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMissingColumns is returned when the wallet header lacks a required column.
var ErrMissingColumns = errors.New("missing required columns")

// ParseNumber reads a spreadsheet number cell. When both separators appear
// the last one is the decimal point, so "1.234,56" and "1,234.56" agree; a
// lone comma is a pt-BR decimal comma. Empty cells read as zero.
func ParseNumber(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "US$")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot > comma:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	return decimal.NewFromString(s)
}
