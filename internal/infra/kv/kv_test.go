package kv_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/grupo7/gestao-clientes-go/internal/infra/kv"
	"github.com/grupo7/gestao-clientes-go/internal/infra/resilience"
)

// backends returns one instance of every Store implementation.
func backends(t *testing.T) map[string]kv.Store {
	t.Helper()

	file, err := kv.NewFile(filepath.Join(t.TempDir(), "kv.json"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	sqlite, err := kv.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })

	resilient := kv.NewResilient(
		kv.NewMemory(),
		resilience.NewCircuitBreaker("test"),
		resilience.Config{MaxRetries: 1, InitialBackoff: 5 * time.Millisecond, MaxConcurrency: 2},
	)

	return map[string]kv.Store{
		"memory":    kv.NewMemory(),
		"file":      file,
		"sqlite":    sqlite,
		"resilient": resilient,
	}
}

func TestStore_SetGet(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "k1", `{"a":1}`); err != nil {
				t.Fatalf("set: %v", err)
			}
			v, ok, err := store.Get(ctx, "k1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !ok {
				t.Fatal("expected key to exist")
			}
			if v != `{"a":1}` {
				t.Errorf("expected stored value back, got %q", v)
			}
		})
	}
}

func TestStore_GetMiss(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, "nonexistent")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if ok {
				t.Fatal("expected miss for absent key")
			}
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "k", "old"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Set(ctx, "k", "new"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			v, _, err := store.Get(ctx, "k")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if v != "new" {
				t.Errorf("expected last write to win, got %q", v)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Set(ctx, "k", "v"); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := store.Delete(ctx, "k"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, _ := store.Get(ctx, "k"); ok {
				t.Fatal("expected key to be gone")
			}
			// Deleting an absent key is a no-op, not an error.
			if err := store.Delete(ctx, "k"); err != nil {
				t.Fatalf("delete absent key: %v", err)
			}
		})
	}
}

func TestFile_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.json")

	first, err := kv.NewFile(path)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	if err := first.Set(ctx, "user_abc", `{"name":"Maria"}`); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := kv.NewFile(path)
	if err != nil {
		t.Fatalf("reopen file store: %v", err)
	}
	v, ok, err := second.Get(ctx, "user_abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || v != `{"name":"Maria"}` {
		t.Errorf("expected persisted value after reopen, got %q (ok=%v)", v, ok)
	}
}
