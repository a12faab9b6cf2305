package collection

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"hashstore/internal/repository"
	"hashstore/internal/repository/memory"
	"hashstore/internal/repository/sqlite"
)

// ============================================================================
// Test Helpers
// ============================================================================

// constantHasher puts every key in the same bucket
type constantHasher struct{}

func (constantHasher) Sum([]byte) int64 { return 7 }
func (constantHasher) Name() string     { return "constant" }

// newLogger captures log output for assertions
func newLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func openTestDict[K, V any](t *testing.T, path string, autoCommit bool, opts ...Option) *Dict[K, V] {
	t.Helper()
	d, err := OpenDict[K, V](path, autoCommit, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func openTestSet[K any](t *testing.T, path string, opts ...Option) *Set[K] {
	t.Helper()
	s, err := OpenSet[K](path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

// backends runs f against a SQLite file and the in-memory store
func backends(t *testing.T, f func(t *testing.T, store repository.Store)) {
	t.Run("sqlite", func(t *testing.T) {
		store, err := sqlite.Open(testPath(t), sqlite.DefaultOptions())
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		f(t, store)
	})
	t.Run("memory", func(t *testing.T) {
		f(t, memory.New())
	})
}

// faultyTable fails every call after the first n lookups
type faultyTable struct {
	repository.Table
	failAfter int
	affected  int64
}

func (f *faultyTable) Lookup(ctx context.Context, hash int64) ([]repository.Row, error) {
	if f.failAfter <= 0 {
		return nil, errFaulty
	}
	f.failAfter--
	return f.Table.Lookup(ctx, hash)
}

func (f *faultyTable) UpdateValue(ctx context.Context, id int64, value []byte) (int64, error) {
	if _, err := f.Table.UpdateValue(ctx, id, value); err != nil {
		return 0, err
	}
	return f.affected, nil
}

func (f *faultyTable) Insert(ctx context.Context, hash int64, key, value []byte) (int64, int64, error) {
	id, _, err := f.Table.Insert(ctx, hash, key, value)
	return id, f.affected, err
}

type faultError struct{}

func (faultError) Error() string { return "disk on fire" }

var errFaulty = faultError{}
