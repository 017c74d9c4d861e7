package testsupport

import (
	"context"
	"testing"

	"cuesynth/internal/config"
	"cuesynth/internal/objectstore"
)

// MustOpenStore opens the store selected by cfg and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) objectstore.Store {
	t.Helper()

	switch cfg.Store.Backend {
	case config.BackendSQLite:
		store, err := objectstore.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			t.Fatalf("open sqlite store: %v", err)
		}
		t.Cleanup(func() {
			_ = store.Close()
		})
		return store
	default:
		store, err := objectstore.NewFSStore(cfg.Store.Root)
		if err != nil {
			t.Fatalf("open fs store: %v", err)
		}
		return store
	}
}

// SeedShards stores each body under bucket/key in a fresh memory store.
func SeedShards(t testing.TB, bucket string, shards map[string][]byte) *objectstore.MemoryStore {
	t.Helper()

	store := objectstore.NewMemoryStore()
	for key, body := range shards {
		if _, err := store.Put(context.Background(), bucket, key, body, objectstore.ContentTypeJSON); err != nil {
			t.Fatalf("seed %s/%s: %v", bucket, key, err)
		}
	}
	return store
}

// MustGet reads bucket/key or fails the test.
func MustGet(t testing.TB, store objectstore.Store, bucket, key string) []byte {
	t.Helper()

	body, err := store.Get(context.Background(), bucket, key)
	if err != nil {
		t.Fatalf("get %s/%s: %v", bucket, key, err)
	}
	return body
}
