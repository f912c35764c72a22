package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
)

// Status describes the size and contents of the local database.
type Status struct {
	Path            string `json:"path"`
	DBFileSize      int64  `json:"db_file_size"`
	WALFileSize     int64  `json:"wal_file_size"`
	PageCount       int64  `json:"page_count"`
	PageSize        int64  `json:"page_size"`
	SchemaVersion   int64  `json:"schema_version"`
	CachedResponses int64  `json:"cached_responses"`
	EvaluationRuns  int64  `json:"evaluation_runs"`
}

// Maintenance runs housekeeping on a migrated database.
type Maintenance struct {
	db     *sql.DB
	dbPath string
	logger *slog.Logger
}

// NewMaintenance creates a maintenance service for the database at dbPath.
func NewMaintenance(db *sql.DB, dbPath string, logger *slog.Logger) *Maintenance {
	return &Maintenance{
		db:     db,
		dbPath: dbPath,
		logger: logger.With(slog.String("component", "maintenance")),
	}
}

// Status returns current database status. File sizes are zero for an
// in-memory database.
func (m *Maintenance) Status(ctx context.Context) (*Status, error) {
	st := &Status{Path: m.dbPath}

	if m.dbPath != MemoryPath {
		if info, err := os.Stat(m.dbPath); err == nil {
			st.DBFileSize = info.Size()
		}
		if info, err := os.Stat(m.dbPath + "-wal"); err == nil {
			st.WALFileSize = info.Size()
		}
	}

	if err := m.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&st.PageCount); err != nil {
		m.logger.Warn("reading page_count", "error", err)
	}
	if err := m.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&st.PageSize); err != nil {
		m.logger.Warn("reading page_size", "error", err)
	}

	v, err := SchemaVersion(ctx, m.db)
	if err != nil {
		return nil, err
	}
	st.SchemaVersion = v

	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM response_cache").Scan(&st.CachedResponses); err != nil {
		return nil, fmt.Errorf("counting cached responses: %w", err)
	}
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evaluation_runs").Scan(&st.EvaluationRuns); err != nil {
		return nil, fmt.Errorf("counting evaluation runs: %w", err)
	}
	return st, nil
}

// Optimize runs PRAGMA optimize followed by a WAL checkpoint.
func (m *Maintenance) Optimize(ctx context.Context) error {
	m.logger.Info("running PRAGMA optimize")
	if _, err := m.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
		return fmt.Errorf("PRAGMA optimize: %w", err)
	}

	m.logger.Info("running WAL checkpoint")
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("WAL checkpoint: %w", err)
	}

	m.logger.Info("optimize complete")
	return nil
}

// Vacuum runs VACUUM to rebuild the database file.
func (m *Maintenance) Vacuum(ctx context.Context) error {
	m.logger.Info("running VACUUM")
	if _, err := m.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("VACUUM: %w", err)
	}
	m.logger.Info("vacuum complete")
	return nil
}
