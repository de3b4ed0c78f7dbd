package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// Repository persists the last reported stock snapshot, the scan history and
// chat subscriptions.
type Repository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewRepository opens (or creates) the database at storagePath and migrates its schema.
func NewRepository(ctx context.Context, log *slog.Logger, storagePath string) (*Repository, error) {
	dtb, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", storagePath))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	return bootstrap(ctx, log, dtb)
}

// bootstrap checks the connection and migrates the schema. dtb is closed when either fails.
func bootstrap(ctx context.Context, log *slog.Logger, dtb *sql.DB) (*Repository, error) {
	if err := dtb.PingContext(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("unable to establish connection to database: %w", err), dtb.Close())
	}

	if err := initSchema(ctx, dtb); err != nil {
		return nil, errors.Join(fmt.Errorf("DB schema initialization error: %w", err), dtb.Close())
	}

	return &Repository{db: dtb, log: log}, nil
}

// NewForTest wraps an existing connection without touching the schema.
func NewForTest(dtb *sql.DB) *Repository {
	return &Repository{db: dtb, log: slog.Default()}
}

func initSchema(ctx context.Context, dtb *sql.DB) error {
	const migrationQuery = `
	CREATE TABLE IF NOT EXISTS reported_state (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		fingerprint TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reported_products (
		title TEXT PRIMARY KEY NOT NULL,
		url TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reported_variants (
		product_title TEXT NOT NULL REFERENCES reported_products (title) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		size TEXT NOT NULL,
		price TEXT NOT NULL,
		PRIMARY KEY (product_title, position)
	);

	CREATE TABLE IF NOT EXISTS scan_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		checked_at TIMESTAMP NOT NULL,
		product_count INTEGER NOT NULL,
		stock_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS subscriptions (
		chat_id INTEGER PRIMARY KEY
	);
	`
	_, err := dtb.ExecContext(ctx, migrationQuery)
	if err != nil {
		return fmt.Errorf("failed to execute migration query: %w", err)
	}

	return nil
}

// Close closes the connection to the database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		r.log.Error("failed to close the database", "op", "repository.sqlite.Close", "error", err)
		return fmt.Errorf("failed to close the database: %w", err)
	}

	return nil
}

// DB is a getter for database handler.
func (r *Repository) DB() *sql.DB {
	return r.db
}
