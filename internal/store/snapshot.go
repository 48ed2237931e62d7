package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/trogers1052/portfolio-valuation/internal/models"
)

// TimestampLayout is the wall-clock format of the "Atualização" column.
const TimestampLayout = "2006-01-02 15:04:05"

// SnapshotHeader returns the output header for base currency.
func SnapshotHeader(base string) []string {
	base = strings.ToUpper(base)
	return []string{
		"Ticker", "Classe", "Moeda", "Quantidade", "Preço Médio", "Preço Atual",
		"Total (Moeda Origem)", "Total (" + base + ")", "Lucro/Prej (" + base + ")",
		"Rentabilidade (%)", "Atualização",
	}
}

// CSVSnapshot writes valuation snapshots to a CSV file, replacing the
// previous contents atomically.
type CSVSnapshot struct {
	path string
	base string
	now  func() time.Time
}

// NewCSVSnapshot creates a CSVSnapshot writing to path.
func NewCSVSnapshot(path, base string) *CSVSnapshot {
	return &CSVSnapshot{path: path, base: base, now: time.Now}
}

// ReplaceSnapshot writes a header and one row per record to a temporary
// file next to the target, then renames it over the target. On any error
// the previous snapshot is left untouched.
func (s *CSVSnapshot) ReplaceSnapshot(ctx context.Context, records []models.ValuationRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := s.write(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

func (s *CSVSnapshot) write(f *os.File, records []models.ValuationRecord) error {
	w := csv.NewWriter(f)
	if err := w.Write(SnapshotHeader(s.base)); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}

	stamp := s.now().Local().Format(TimestampLayout)
	for _, r := range records {
		row := []string{
			r.Ticker,
			r.Class,
			r.Currency,
			r.Quantity.String(),
			r.AveragePrice.Round(8).String(),
			r.CurrentPrice.Round(8).String(),
			r.TotalNative.StringFixed(2),
			r.TotalBase.StringFixed(2),
			r.ProfitLoss.StringFixed(2),
			r.ProfitLossPct.Round(6).String(),
			stamp,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write snapshot row for %s: %w", r.Ticker, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return nil
}
