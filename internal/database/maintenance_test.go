package database

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
)

func setupMaintenance(t *testing.T) (*Maintenance, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "songmatch.db")
	db, err := OpenMigrated(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("OpenMigrated: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewMaintenance(db, dbPath, slog.Default()), dbPath
}

func TestMaintenance_Status(t *testing.T) {
	m, dbPath := setupMaintenance(t)
	ctx := context.Background()

	if _, err := m.db.ExecContext(ctx,
		`INSERT INTO response_cache (key, body, created_at) VALUES ('GET x', x'00', '2026-01-01T00:00:00.000Z')`); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}

	st, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.Path != dbPath || st.DBFileSize <= 0 {
		t.Errorf("file status = %+v", st)
	}
	if st.PageSize <= 0 || st.PageCount <= 0 {
		t.Errorf("page status = %+v", st)
	}
	if st.SchemaVersion != 2 {
		t.Errorf("schema version = %d, want 2", st.SchemaVersion)
	}
	if st.CachedResponses != 1 || st.EvaluationRuns != 0 {
		t.Errorf("row counts = %d cached, %d runs", st.CachedResponses, st.EvaluationRuns)
	}
}

func TestMaintenance_OptimizeAndVacuum(t *testing.T) {
	m, _ := setupMaintenance(t)
	ctx := context.Background()

	if err := m.Optimize(ctx); err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	st, err := m.Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st.WALFileSize != 0 {
		t.Errorf("WAL size after checkpoint = %d, want 0", st.WALFileSize)
	}
	if err := m.Vacuum(ctx); err != nil {
		t.Fatalf("Vacuum: %v", err)
	}
}
