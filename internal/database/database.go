// Package database opens the local SQLite store used for the persistent
// response cache and evaluation history.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open opens a SQLite database at dbPath with WAL mode and a busy timeout.
// It creates the parent directory if it does not exist.
func Open(ctx context.Context, dbPath string) (*sql.DB, error) {
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if dbPath != MemoryPath {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Single writer connection for SQLite; also keeps :memory: on one connection.
	db.SetMaxOpenConns(1)

	return db, nil
}

// OpenMigrated opens dbPath and applies all pending migrations.
func OpenMigrated(ctx context.Context, dbPath string) (*sql.DB, error) {
	db, err := Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
