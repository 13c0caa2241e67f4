package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	return createDrawResultsTable(ctx, db)
}

func createDrawResultsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS draw_results (
		draw_date TEXT PRIMARY KEY,
		special TEXT NOT NULL,
		prizes TEXT NOT NULL DEFAULT '{}',
		source TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_draw_results_special ON draw_results(special);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create draw_results table: %w", err)
	}
	return nil
}
