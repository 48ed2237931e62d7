package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-valuation/internal/models"
	"github.com/trogers1052/portfolio-valuation/internal/utils"
)

// Wallet column names as exported from the spreadsheet.
const (
	ColTicker      = "Ticker"
	ColClass       = "Classe"
	ColQuantity    = "Quantidade"
	ColCurrency    = "Moeda"
	ColAvgPrice    = "Preço Médio"
	ColManualPrice = "Manual Price"
	ColDirection   = "Direção"
	ColStartDate   = "Data Início"
	ColIndexer     = "Indexador"
)

// RequiredColumns must all be present in the wallet header.
var RequiredColumns = []string{
	ColTicker, ColClass, ColQuantity, ColCurrency, ColAvgPrice, ColManualPrice, ColDirection,
}

const dateLayout = "2006-01-02"

// CSVWallet reads positions from a wallet CSV export.
type CSVWallet struct {
	path string
	log  zerolog.Logger
}

// NewCSVWallet creates a CSVWallet for the file at path.
func NewCSVWallet(path string, log zerolog.Logger) *CSVWallet {
	return &CSVWallet{path: path, log: log.With().Str("component", "csv-wallet").Logger()}
}

// LoadPositions reads the whole wallet file.
func (w *CSVWallet) LoadPositions(ctx context.Context) ([]models.Position, error) {
	f, err := os.Open(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet: %w", err)
	}
	defer f.Close()

	return ReadPositions(ctx, f, w.log)
}

// ReadPositions parses a wallet CSV. Header names match case-, accent- and
// space-insensitively. A header missing any RequiredColumns fails with
// ErrMissingColumns before a single row is read. Unparsable cells fall back
// to their zero value with a warning.
func ReadPositions(ctx context.Context, r io.Reader, log zerolog.Logger) ([]models.Position, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("wallet is empty: %w", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet header: %w", err)
	}

	index := headerIndex(header)
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[utils.FoldKey(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var positions []models.Position
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read wallet line %d: %w", line, err)
		}

		if isBlank(record) {
			continue
		}
		row := rowReader{record: record, index: index, line: line, log: log}

		class := row.get(ColClass)
		p := models.Position{
			Ticker:       row.get(ColTicker),
			Class:        models.ParseAssetClass(class),
			RawClass:     class,
			Quantity:     row.number(ColQuantity),
			AveragePrice: row.number(ColAvgPrice),
			Currency:     row.get(ColCurrency),
			ManualPrice:  row.number(ColManualPrice),
			Direction:    models.ParseDirection(row.get(ColDirection)),
			StartDate:    row.date(ColStartDate),
			Indexer:      row.get(ColIndexer),
		}
		positions = append(positions, p)
	}

	return positions, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := utils.FoldKey(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return index
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

type rowReader struct {
	record []string
	index  map[string]int
	line   int
	log    zerolog.Logger
}

func (r rowReader) get(col string) string {
	i, ok := r.index[utils.FoldKey(col)]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r rowReader) number(col string) decimal.Decimal {
	raw := r.get(col)
	n, err := ParseNumber(raw)
	if err != nil {
		r.log.Warn().Int("line", r.line).Str("column", col).Str("value", raw).Msg("Unparsable number, using 0")
		return decimal.Zero
	}
	return n
}

func (r rowReader) date(col string) *time.Time {
	raw := r.get(col)
	if raw == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.Local)
	if err != nil {
		r.log.Warn().Int("line", r.line).Str("column", col).Str("value", raw).Msg("Unparsable date, ignoring")
		return nil
	}
	return &t
}
