// Package quotepage extracts the last traded price from an options quote
// page that only publishes its data as an HTML table.
package quotepage

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

const (
	// TableSelector identifies the quotes table on the page.
	TableSelector = "table.top-buffer-20"
	// LastPriceLabel is the header text of the last-price column.
	LastPriceLabel = "Ult"
)

var (
	ErrTableNotFound  = errors.New("quotes table not found")
	ErrColumnNotFound = errors.New("last price column not found")
	ErrNoDataRow      = errors.New("quotes table has no data row")
	ErrEmptyValue     = errors.New("last price cell is empty")
)

// ExtractLastPrice parses an HTML document and returns the value of the
// last-price column in the first data row.
//
// The table header spans two rows and the column names live in the last one.
// Data rows carry one extra leading date cell (row-spanned in the header), so
// the value sits one column to the right of the header index.
func ExtractLastPrice(r io.Reader) (decimal.Decimal, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse quote page: %w", err)
	}

	table := doc.Find(TableSelector).First()
	if table.Length() == 0 {
		return decimal.Zero, ErrTableNotFound
	}

	headerRows := table.Find("thead tr")
	if headerRows.Length() == 0 {
		return decimal.Zero, ErrColumnNotFound
	}

	ultIndex := -1
	headerRows.Last().ChildrenFiltered("td, th").EachWithBreak(func(i int, cell *goquery.Selection) bool {
		if strings.Contains(cell.Text(), LastPriceLabel) {
			ultIndex = i
			return false
		}
		return true
	})
	if ultIndex == -1 {
		return decimal.Zero, ErrColumnNotFound
	}

	firstRow := table.Find("tbody tr").First()
	if firstRow.Length() == 0 {
		return decimal.Zero, ErrNoDataRow
	}

	cells := firstRow.ChildrenFiltered("td")
	target := ultIndex + 1
	if cells.Length() <= target {
		return decimal.Zero, fmt.Errorf("%w: row has %d cells, need index %d", ErrNoDataRow, cells.Length(), target)
	}

	return ParseLocaleNumber(cells.Eq(target).Text())
}

// ParseLocaleNumber converts a pt-BR formatted number ("1.234,56") to a
// decimal. Empty strings and a bare dash are reported as ErrEmptyValue.
func ParseLocaleNumber(raw string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	if clean == "" || clean == "-" {
		return decimal.Zero, ErrEmptyValue
	}

	value, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return value, nil
}
