package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sydlexius/songmatch/internal/catalog"
	"github.com/sydlexius/songmatch/internal/database"
)

var (
	_ catalog.Cache = (*Memory)(nil)
	_ catalog.Cache = (*SQLite)(nil)
	_ catalog.Cache = (*Redis)(nil)
)

func setupTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := database.OpenMigrated(context.Background(), database.MemoryPath)
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLite(db, time.Hour)
}

// exerciseCache checks the behavior every backend shares.
func exerciseCache(t *testing.T, c catalog.Cache) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "GET https://example.test/missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want miss", ok, err)
	}

	key := "GET https://example.test/search?q=artist%3Adaft"
	if err := c.Set(ctx, key, []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v; want hit", ok, err)
	}
	if string(got) != `{"v":1}` {
		t.Errorf("body = %s", got)
	}

	if err := c.Set(ctx, key, []byte(`{"v":2}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _, _ = c.Get(ctx, key)
	if string(got) != `{"v":2}` {
		t.Errorf("body after overwrite = %s", got)
	}
}

func TestMemory(t *testing.T) {
	exerciseCache(t, NewMemory(0))
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(59 * time.Second)
	if _, ok, _ := m.Get(ctx, "k"); !ok {
		t.Error("entry expired early")
	}
	now = now.Add(time.Second)
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("entry should have expired")
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0 after expired read", m.Len())
	}
}

func TestMemory_ExpiredReadKeepsConcurrentSet(t *testing.T) {
	m := NewMemory(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	refreshOnRead := false
	m.now = func() time.Time {
		if refreshOnRead {
			// Lands between the expired read and the delete.
			refreshOnRead = false
			if err := m.Set(ctx, "k", []byte("fresh")); err != nil {
				t.Errorf("Set: %v", err)
			}
		}
		return now
	}

	if err := m.Set(ctx, "k", []byte("stale")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(time.Minute)
	refreshOnRead = true
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Error("expired entry returned")
	}

	got, ok, _ := m.Get(ctx, "k")
	if !ok || string(got) != "fresh" {
		t.Errorf("Get after concurrent Set = %q, %v; want fresh, true", got, ok)
	}
}

func TestMemory_CopiesBody(t *testing.T) {
	m := NewMemory(0)
	ctx := context.Background()
	body := []byte("original")
	if err := m.Set(ctx, "k", body); err != nil {
		t.Fatalf("Set: %v", err)
	}
	body[0] = 'X'
	got, _, _ := m.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("stored body changed to %q", got)
	}
}

func TestSQLite(t *testing.T) {
	exerciseCache(t, setupTestDB(t))
}

func TestSQLite_ExpiryAndPrune(t *testing.T) {
	s := setupTestDB(t)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	if err := s.Set(ctx, "old", []byte("a")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(2 * time.Hour)
	if err := s.Set(ctx, "new", []byte("b")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, ok, _ := s.Get(ctx, "old"); ok {
		t.Error("expired entry returned")
	}
	if _, ok, _ := s.Get(ctx, "new"); !ok {
		t.Error("fresh entry missing")
	}

	n, err := s.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d rows, want 1", n)
	}
}

func TestRedis(t *testing.T) {
	addr := os.Getenv("SONGMATCH_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SONGMATCH_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := DialRedis(ctx, addr)
	if err != nil {
		t.Fatalf("DialRedis: %v", err)
	}
	defer client.Close()

	prefix := "songmatch-test:" + t.Name() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})
	exerciseCache(t, NewRedis(client, prefix, time.Minute))
}
