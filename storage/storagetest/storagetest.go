// Package storagetest holds conformance checks shared by storage backends.
package storagetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ggoodman/elicit/storage"
)

// Run exercises s against the storage.Storage contract. Keys are prefixed
// with the test name so backends may share a database.
func Run(t *testing.T, s storage.Storage) {
	t.Run("SetAndGet", func(t *testing.T) { testSetAndGet(t, s) })
	t.Run("GetNonExistent", func(t *testing.T) { testGetNonExistent(t, s) })
	t.Run("Overwrite", func(t *testing.T) { testOverwrite(t, s) })
	t.Run("TTL", func(t *testing.T) { testTTL(t, s) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, s) })
	t.Run("EmptyKey", func(t *testing.T) { testEmptyKey(t, s) })
}

func testSetAndGet(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	key := t.Name()
	data := []byte(`{"action":"accept","content":{"confirm":true}}`)

	if err := s.Set(ctx, key, data); err != nil {
		t.Fatalf("Set: %v", err)
	}
	item, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item == nil {
		t.Fatal("expected item to exist, got nil")
	}
	if string(item.Data) != string(data) {
		t.Fatalf("got %s, want %s", item.Data, data)
	}
	if item.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", item.ExpiresAt)
	}
	if item.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func testGetNonExistent(t *testing.T, s storage.Storage) {
	item, err := s.Get(context.Background(), t.Name())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil item, got %+v", item)
	}
}

func testOverwrite(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	key := t.Name()
	if err := s.Set(ctx, key, []byte("one")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, key, []byte("two")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	item, err := s.Get(ctx, key)
	if err != nil || item == nil || string(item.Data) != "two" {
		t.Fatalf("expected overwritten value, got %+v (%v)", item, err)
	}
}

func testTTL(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	key := t.Name()
	if err := s.Set(ctx, key, []byte("short"), storage.WithTTL(1100*time.Millisecond)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	item, err := s.Get(ctx, key)
	if err != nil || item == nil {
		t.Fatalf("expected item before expiry, got %+v (%v)", item, err)
	}
	if item.ExpiresAt == nil {
		t.Fatal("expected ExpiresAt to be set")
	}

	time.Sleep(1500 * time.Millisecond)

	item, err = s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if item != nil {
		t.Fatalf("expected item to expire, got %+v", item)
	}
}

func testDelete(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	key := t.Name()
	if err := s.Set(ctx, key, []byte("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if item, _ := s.Get(ctx, key); item != nil {
		t.Fatalf("expected item to be deleted, got %+v", item)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("deleting a missing key should succeed, got %v", err)
	}
}

func testEmptyKey(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	if _, err := s.Get(ctx, ""); !errors.Is(err, storage.ErrEmptyKey) {
		t.Fatalf("Get: expected ErrEmptyKey, got %v", err)
	}
	if err := s.Set(ctx, "", nil); !errors.Is(err, storage.ErrEmptyKey) {
		t.Fatalf("Set: expected ErrEmptyKey, got %v", err)
	}
	if err := s.Delete(ctx, ""); !errors.Is(err, storage.ErrEmptyKey) {
		t.Fatalf("Delete: expected ErrEmptyKey, got %v", err)
	}
}
