package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Houeta/stock-watch/internal/models"
	"github.com/Houeta/stock-watch/internal/repository"
)

// GetState returns the last reported in-stock snapshot, products in listing order.
func (r *Repository) GetState(ctx context.Context) (*models.State, error) {
	const opn = "repository.sqlite.GetState"

	// 1. Get fingerprint of the snapshot
	var fingerprint string
	err := r.db.QueryRowContext(ctx, "SELECT fingerprint FROM reported_state WHERE id = 1").Scan(&fingerprint)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrStateNotFound
		}
		return nil, fmt.Errorf("%s: failed to get fingerprint: %w", opn, err)
	}

	// 2. Get products
	products, err := r.reportedProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opn, err)
	}

	// 3. Attach variants in page order
	index := make(map[string]int, len(products))
	for i, p := range products {
		index[p.Title] = i
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT product_title, size, price FROM reported_variants ORDER BY product_title, position")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get variants: %w", opn, err)
	}
	defer rows.Close()

	for rows.Next() {
		var title string
		var v models.Variant
		if err = rows.Scan(&title, &v.Size, &v.Price); err != nil {
			return nil, fmt.Errorf("%s: failed to scan variant: %w", opn, err)
		}
		if i, ok := index[title]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows iteration error: %w", opn, err)
	}

	for i := range products {
		products[i].Normalize()
	}

	return &models.State{Fingerprint: fingerprint, Products: products}, nil
}

func (r *Repository) reportedProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT title, url FROM reported_products ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err = rows.Scan(&p.Title, &p.URL); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return products, nil
}

// UpdateState atomically replaces the reported snapshot using a transaction.
func (r *Repository) UpdateState(ctx context.Context, state *models.State) error {
	const opn = "repository.sqlite.UpdateState"

	// 1. begin transaction
	tx, err := r.db.BeginTx(ctx, nil) //nolint:varnamelen // tx its a default naming for transaction
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", opn, err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after Commit only returns sql.ErrTxDone.

	// 2. Update (or insert) the fingerprint.
	_, err = tx.ExecContext(ctx, "INSERT OR REPLACE INTO reported_state (id, fingerprint) VALUES (1, ?)", state.Fingerprint)
	if err != nil {
		return fmt.Errorf("%s: failed to update fingerprint: %w", opn, err)
	}

	// 3. Clear the previous snapshot.
	if _, err = tx.ExecContext(ctx, "DELETE FROM reported_variants"); err != nil {
		return fmt.Errorf("%s: failed to delete old variants: %w", opn, err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM reported_products"); err != nil {
		return fmt.Errorf("%s: failed to delete old products: %w", opn, err)
	}

	// 4. Insert the new snapshot.
	productStmt, err := tx.PrepareContext(ctx, "INSERT INTO reported_products (title, url, position) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%s: failed to prepare product statement: %w", opn, err)
	}
	defer productStmt.Close()

	variantStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO reported_variants (product_title, position, size, price) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%s: failed to prepare variant statement: %w", opn, err)
	}
	defer variantStmt.Close()

	for pos, p := range state.Products {
		if _, err = productStmt.ExecContext(ctx, p.Title, p.URL, pos); err != nil {
			return fmt.Errorf("%s: failed to insert product %q: %w", opn, p.Title, err)
		}
		for vpos, v := range p.Variants {
			if _, err = variantStmt.ExecContext(ctx, p.Title, vpos, v.Size, v.Price); err != nil {
				return fmt.Errorf("%s: failed to insert variant of %q: %w", opn, p.Title, err)
			}
		}
	}

	// 5. Confirm the transaction.
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", opn, err)
	}

	return nil
}
