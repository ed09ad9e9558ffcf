package testsupport

import (
	"context"
	"testing"

	"autotex/internal/annocache"
	"autotex/internal/config"
)

// MustOpenStore opens an annocache.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *annocache.Store {
	t.Helper()

	store, err := annocache.Open(cfg)
	if err != nil {
		t.Fatalf("annocache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// PutAnnotation caches an annotated log for tests using the provided store.
func PutAnnotation(t testing.TB, store *annocache.Store, submissionID, checksum, status, html string) {
	t.Helper()

	if err := store.Put(context.Background(), submissionID, checksum, status, html); err != nil {
		t.Fatalf("store.Put: %v", err)
	}
}
