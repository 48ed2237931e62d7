package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/portfolio-valuation/internal/models"
)

// LoadPositions reads every wallet row
func (db *DB) LoadPositions(ctx context.Context) ([]models.Position, error) {
	query := `
		SELECT ticker, asset_class, quantity, average_price, currency,
		       manual_price, direction, start_date, indexer
		FROM wallet_positions
		ORDER BY id
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet positions: %w", err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		var class, direction string
		var manualPrice, indexer sql.NullString
		var startDate sql.NullTime

		err := rows.Scan(
			&p.Ticker, &class, &p.Quantity, &p.AveragePrice, &p.Currency,
			&manualPrice, &direction, &startDate, &indexer,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wallet position: %w", err)
		}

		p.RawClass = strings.TrimSpace(class)
		p.Class = models.ParseAssetClass(class)
		p.Direction = models.ParseDirection(direction)
		if manualPrice.Valid {
			p.ManualPrice, _ = decimal.NewFromString(manualPrice.String)
		}
		if startDate.Valid {
			d := startDate.Time
			p.StartDate = &d
		}
		if indexer.Valid {
			p.Indexer = indexer.String
		}

		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read wallet positions: %w", err)
	}

	return positions, nil
}

// ReplaceWallet swaps the whole wallet for positions in a single transaction
func (db *DB) ReplaceWallet(ctx context.Context, positions []models.Position) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM wallet_positions`); err != nil {
		return fmt.Errorf("failed to delete existing wallet positions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO wallet_positions (
			ticker, asset_class, quantity, average_price, currency,
			manual_price, direction, start_date, indexer
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		var manualPrice, indexer sql.NullString
		if !p.ManualPrice.IsZero() {
			manualPrice = sql.NullString{String: p.ManualPrice.String(), Valid: true}
		}
		if p.Indexer != "" {
			indexer = sql.NullString{String: p.Indexer, Valid: true}
		}
		var startDate sql.NullTime
		if p.StartDate != nil {
			startDate = sql.NullTime{Time: *p.StartDate, Valid: true}
		}

		_, err := stmt.ExecContext(ctx,
			p.Ticker, p.ClassLabel(), p.Quantity, p.AveragePrice, p.Currency,
			manualPrice, directionCode(p.Direction), startDate, indexer,
		)
		if err != nil {
			return fmt.Errorf("failed to insert wallet position %s: %w", p.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func directionCode(d models.Direction) string {
	if d == models.DirectionSell {
		return "V"
	}
	return "C"
}
