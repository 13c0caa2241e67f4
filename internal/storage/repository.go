package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const upsertResultQuery = `
	INSERT INTO draw_results (draw_date, special, prizes, source, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(draw_date) DO UPDATE SET
		special = excluded.special,
		prizes = excluded.prizes,
		source = excluded.source,
		updated_at = excluded.updated_at
`

const selectResultColumns = `SELECT draw_date, special, prizes, source, updated_at FROM draw_results`

// SaveResult inserts or replaces the draw for result.Date.
func (db *DB) SaveResult(ctx context.Context, result *DrawResult) error {
	return db.SaveResultsBatch(ctx, []*DrawResult{result})
}

// SaveResultsBatch upserts results in a single transaction.
func (db *DB) SaveResultsBatch(ctx context.Context, results []*DrawResult) error {
	if len(results) == 0 {
		return nil
	}

	start := time.Now()
	updatedAt := start.Unix()
	err := db.ExecBatchContext(ctx, upsertResultQuery, func(stmt *sql.Stmt) error {
		for _, r := range results {
			prizes, err := encodePrizes(r.Prizes)
			if err != nil {
				return fmt.Errorf("encode prizes for %s: %w", r.DateKey(), err)
			}
			if _, err := stmt.ExecContext(ctx, r.DateKey(), r.Special, prizes, r.Source, updatedAt); err != nil {
				slog.ErrorContext(ctx, "failed to save draw result in batch",
					"date", r.DateKey(),
					"error", err)
				return fmt.Errorf("failed to save draw result %s: %w", r.DateKey(), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	duration := time.Since(start)
	slog.DebugContext(ctx, "batch operation completed",
		"operation", "SaveResultsBatch",
		"count", len(results),
		"duration_ms", duration.Milliseconds())

	if duration > 500*time.Millisecond {
		slog.WarnContext(ctx, "slow batch operation",
			"operation", "SaveResultsBatch",
			"count", len(results),
			"duration_ms", duration.Milliseconds())
	}
	return nil
}

// GetResultByDate returns the draw for the calendar date of day, or nil if
// there is none.
func (db *DB) GetResultByDate(ctx context.Context, day time.Time) (*DrawResult, error) {
	key := day.Format(DateLayout)
	row := db.reader.QueryRowContext(ctx, selectResultColumns+` WHERE draw_date = ?`, key)

	result, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to query draw result",
			"date", key,
			"error", err)
		return nil, fmt.Errorf("query draw result: %w", err)
	}
	return result, nil
}

// GetLatestResult returns the draw with the greatest date, or nil if the
// table is empty.
func (db *DB) GetLatestResult(ctx context.Context) (*DrawResult, error) {
	row := db.reader.QueryRowContext(ctx, selectResultColumns+` ORDER BY draw_date DESC LIMIT 1`)

	result, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest draw result: %w", err)
	}
	return result, nil
}

// ListRecentResults returns up to limit draws, newest first.
func (db *DB) ListRecentResults(ctx context.Context, limit int) ([]DrawResult, error) {
	if limit <= 0 {
		return []DrawResult{}, nil
	}

	rows, err := db.reader.QueryContext(ctx, selectResultColumns+` ORDER BY draw_date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent draw results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]DrawResult, 0, limit)
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draw result: %w", err)
		}
		results = append(results, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate draw results: %w", err)
	}
	return results, nil
}

// CountResults returns the number of stored draws.
func (db *DB) CountResults(ctx context.Context) (int, error) {
	var count int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM draw_results`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count draw results: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(s rowScanner) (*DrawResult, error) {
	var (
		r      DrawResult
		key    string
		prizes string
	)
	if err := s.Scan(&key, &r.Special, &prizes, &r.Source, &r.UpdatedAt); err != nil {
		return nil, err
	}

	date, err := time.Parse(DateLayout, key)
	if err != nil {
		return nil, fmt.Errorf("parse draw date %q: %w", key, err)
	}
	r.Date = date

	if err := json.Unmarshal([]byte(prizes), &r.Prizes); err != nil {
		return nil, fmt.Errorf("decode prizes for %s: %w", key, err)
	}
	return &r, nil
}

func encodePrizes(prizes map[string][]string) (string, error) {
	if len(prizes) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(prizes)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
