package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type changeRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *changeRecorder) record(_ context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, changed)
	return nil
}

func (r *changeRecorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.batches...)
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestService(t *testing.T, rec *changeRecorder, paths ...string) (*Service, context.Context, context.CancelFunc) {
	t.Helper()
	svc := NewService(rec.record, testLogger(), paths...)
	svc.SetDebounce(50 * time.Millisecond)
	svc.SetPollInterval(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	return svc, ctx, cancel
}

func TestWriteTriggersChange(t *testing.T) {
	root := t.TempDir()
	cases := filepath.Join(root, "cases.tsv")
	writeFile(t, cases, "Daft Punk\n")

	rec := &changeRecorder{}
	svc, ctx, cancel := newTestService(t, rec, cases)
	defer cancel()

	go svc.Start(ctx)
	time.Sleep(100 * time.Millisecond) // let watcher initialize

	writeFile(t, cases, "Daft Punk\tDiscovery\n")

	time.Sleep(300 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(got))
	}
	if len(got[0]) != 1 || got[0][0] != cases {
		t.Errorf("changed = %q, want [%s]", got[0], cases)
	}
}

func TestRapidWritesCoalesce(t *testing.T) {
	root := t.TempDir()
	cases := filepath.Join(root, "cases.tsv")
	config := filepath.Join(root, "songmatch.yaml")
	writeFile(t, cases, "")
	writeFile(t, config, "")

	rec := &changeRecorder{}
	svc, ctx, cancel := newTestService(t, rec, cases, config)
	defer cancel()

	go svc.Start(ctx)
	time.Sleep(100 * time.Millisecond)

	for i := range 5 {
		writeFile(t, cases, string(rune('a'+i)))
	}
	writeFile(t, config, "logging:\n  level: debug\n")

	time.Sleep(300 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)

	got := rec.snapshot()
	if len(got) != 1 {
		t.Fatalf("expected 1 coalesced batch, got %d", len(got))
	}
	if len(got[0]) != 2 {
		t.Errorf("changed = %q, want both files", got[0])
	}
}

func TestUnwatchedFileIgnored(t *testing.T) {
	root := t.TempDir()
	cases := filepath.Join(root, "cases.tsv")
	writeFile(t, cases, "")

	rec := &changeRecorder{}
	svc, ctx, cancel := newTestService(t, rec, cases)
	defer cancel()

	go svc.Start(ctx)
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(root, "README.txt"), "notes")

	time.Sleep(300 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("expected no batches, got %q", got)
	}
}

func TestPollDetectsChange(t *testing.T) {
	root := t.TempDir()
	cases := filepath.Join(root, "cases.tsv")
	writeFile(t, cases, "one")

	rec := &changeRecorder{}
	svc := NewService(rec.record, testLogger(), cases)

	writeFile(t, cases, "one two")
	if !svc.poll() {
		t.Fatal("poll should report the size change")
	}
	if svc.poll() {
		t.Error("second poll should see no change")
	}
	if got := svc.takePending(); len(got) != 1 || got[0] != cases {
		t.Errorf("pending = %q", got)
	}
}

func TestPathsSkipsEmpty(t *testing.T) {
	root := t.TempDir()
	svc := NewService(nil, testLogger(), filepath.Join(root, "b.yaml"), "", filepath.Join(root, "a.tsv"))
	got := svc.Paths()
	if len(got) != 2 || filepath.Base(got[0]) != "a.tsv" {
		t.Errorf("Paths = %q", got)
	}
}
