package database

import (
	"context"
	"fmt"

	"github.com/trogers1052/portfolio-valuation/internal/models"
)

// ReplaceSnapshot deletes the previous valuation snapshot and inserts the
// new one in a single transaction, so readers never see a partial run.
func (db *DB) ReplaceSnapshot(ctx context.Context, records []models.ValuationRecord) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM valuations`); err != nil {
		return fmt.Errorf("failed to delete existing valuations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO valuations (
			run_id, ticker, asset_class, direction, currency, quantity,
			average_price, current_price, price_source, fx_rate,
			total_native, total_base, cost_basis, profit_loss, profit_loss_pct,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.ExecContext(ctx,
			r.RunID, r.Ticker, r.Class, string(r.Direction), r.Currency, r.Quantity,
			r.AveragePrice, r.CurrentPrice, r.PriceSource, r.FXRate,
			r.TotalNative, r.TotalBase, r.CostBasis, r.ProfitLoss, r.ProfitLossPct,
			r.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert valuation for %s: %w", r.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListValuations returns the current snapshot
func (db *DB) ListValuations(ctx context.Context) ([]models.ValuationRecord, error) {
	query := `
		SELECT run_id, ticker, asset_class, direction, currency, quantity,
		       average_price, current_price, price_source, fx_rate,
		       total_native, total_base, cost_basis, profit_loss, profit_loss_pct,
		       updated_at
		FROM valuations
		ORDER BY id
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query valuations: %w", err)
	}
	defer rows.Close()

	var records []models.ValuationRecord
	for rows.Next() {
		var r models.ValuationRecord
		var direction string

		err := rows.Scan(
			&r.RunID, &r.Ticker, &r.Class, &direction, &r.Currency, &r.Quantity,
			&r.AveragePrice, &r.CurrentPrice, &r.PriceSource, &r.FXRate,
			&r.TotalNative, &r.TotalBase, &r.CostBasis, &r.ProfitLoss, &r.ProfitLossPct,
			&r.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan valuation: %w", err)
		}
		r.Direction = models.Direction(direction)

		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read valuations: %w", err)
	}

	return records, nil
}
