package store

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

// createTestStore creates a new SQLite store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRedisStore creates a RedisStore backed by miniredis.
func createTestRedisStore(t *testing.T, prefix string) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r := NewRedisStore(RedisOptions{Addr: mr.Addr(), Prefix: prefix})
	t.Cleanup(func() { r.Close() })
	return r, mr
}

// backends returns one of each Backend implementation for conformance tests.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	r, _ := createTestRedisStore(t, "test:")
	return map[string]Backend{
		"sqlite": createTestStore(t),
		"memory": NewMemoryStore(),
		"redis":  r,
	}
}
