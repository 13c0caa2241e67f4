// Package storage persists historical draw results in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"github.com/garyellow/xoso-linebot-go/internal/config"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

const memoryPath = ":memory:"

// DB holds a single-connection writer and a reader pool over the same file.
// For an in-memory database both point at the same connection, since every
// :memory: connection would otherwise be its own database.
type DB struct {
	writer *sql.DB
	reader *sql.DB
	path   string
}

// New opens (or creates) the database at dbPath and applies the schema.
func New(ctx context.Context, dbPath string) (*DB, error) {
	if dbPath != memoryPath {
		if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	writer, err := open(dbPath, 1)
	if err != nil {
		return nil, err
	}

	reader := writer
	if dbPath != memoryPath {
		reader, err = open(dbPath, max(4, runtime.NumCPU()))
		if err != nil {
			_ = writer.Close()
			return nil, err
		}
	}

	db := &DB{writer: writer, reader: reader, path: dbPath}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := InitSchema(ctx, writer); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return db, nil
}

// open applies the pragmas through the DSN so every pooled connection gets them.
func open(dbPath string, maxConns int) (*sql.DB, error) {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", config.DatabaseBusyTimeout.Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	if dbPath != memoryPath {
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "synchronous(NORMAL)")
	}
	dsn := "file:" + dbPath + "?" + q.Encode()

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(maxConns)
	if dbPath != memoryPath {
		conn.SetConnMaxLifetime(config.DatabaseConnMaxLifetime)
	}
	return conn, nil
}

// NewTestDB creates an in-memory database for tests.
func NewTestDB() (*DB, error) {
	return New(context.Background(), memoryPath)
}

// Ping checks both pools.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.writer.PingContext(ctx); err != nil {
		return err
	}
	return db.reader.PingContext(ctx)
}

// Close closes both pools.
func (db *DB) Close() error {
	var err error
	if db.reader != nil && db.reader != db.writer {
		err = db.reader.Close()
	}
	if db.writer != nil {
		if werr := db.writer.Close(); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// ExecBatchContext runs fn with a prepared statement inside one write
// transaction, rolling back if fn fails.
func (db *DB) ExecBatchContext(ctx context.Context, query string, fn func(*sql.Stmt) error) error {
	tx, err := db.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	if err := fn(stmt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
