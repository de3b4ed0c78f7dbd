package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Houeta/stock-watch/internal/models"
	"github.com/Houeta/stock-watch/internal/repository"
)

// RecordScan appends a scan summary to the history.
func (r *Repository) RecordScan(ctx context.Context, summary models.ScanSummary) error {
	const opn = "repository.sqlite.RecordScan"

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO scan_history (checked_at, product_count, stock_count) VALUES (?, ?, ?)",
		summary.CheckedAt.UTC(), summary.ProductCount, summary.StockCount,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", opn, err)
	}

	return nil
}

// LastScan returns the most recent scan summary.
func (r *Repository) LastScan(ctx context.Context) (*models.ScanSummary, error) {
	const opn = "repository.sqlite.LastScan"

	var summary models.ScanSummary
	err := r.db.QueryRowContext(ctx,
		"SELECT checked_at, product_count, stock_count FROM scan_history ORDER BY id DESC LIMIT 1",
	).Scan(&summary.CheckedAt, &summary.ProductCount, &summary.StockCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrScanNotFound
		}
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	return &summary, nil
}
