package collection

import (
	"context"
	"fmt"

	"hashstore/internal/repository"
	"hashstore/internal/repository/sqlite"
)

// Set persists a deduplicated collection of keys. Every mutation is
// committed immediately.
type Set[K any] struct {
	*index[K]
}

// OpenSet opens (creating if needed) a set stored in the SQLite file at path
func OpenSet[K any](path string, opts ...Option) (*Set[K], error) {
	o := buildOptions(DefaultSetTable, opts)

	store, err := sqlite.Open(path, o.sqlite)
	if err != nil {
		return nil, &StoreError{Op: "open", Table: o.table, Err: err}
	}
	o.logger.Debug("store opened", "path", store.Path(), "table", o.table)

	s, err := newSet[K](context.Background(), store, o)
	if err != nil {
		store.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewSet returns a set backed by an already open store. Closing the set
// leaves the store open.
func NewSet[K any](ctx context.Context, store repository.Store, opts ...Option) (*Set[K], error) {
	return newSet[K](ctx, store, buildOptions(DefaultSetTable, opts))
}

func newSet[K any](ctx context.Context, store repository.Store, o options) (*Set[K], error) {
	x, err := newIndex[K](ctx, store, repository.KindSet, o)
	if err != nil {
		return nil, err
	}
	x.logger.Debug("set opened", "codec", x.codec.Name(), "hasher", x.hasher.Name())
	return &Set[K]{index: x}, nil
}

// Add inserts key unless an equal key is already stored
func (s *Set[K]) Add(ctx context.Context, key K) error {
	p, err := s.prepare(key)
	if err != nil {
		return err
	}

	rows, err := s.matches(ctx, "add", p)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		return nil
	}

	id, affected, err := s.table.Insert(ctx, p.hash, p.encoded, nil)
	if err != nil {
		s.rollback(ctx)
		return s.storeError("add", err)
	}
	if affected != 1 {
		s.rollback(ctx)
		return s.invariant("add", id, affected)
	}
	return s.commit(ctx, "add")
}

// Get returns the stored key equal to key
func (s *Set[K]) Get(ctx context.Context, key K) (K, error) {
	var zero K

	p, err := s.prepare(key)
	if err != nil {
		return zero, err
	}

	row, err := s.resolve(ctx, "get", key, p)
	if err != nil {
		return zero, err
	}
	return s.decodeKey(row)
}

// Exists reports whether an equal key is stored. Any failure reads as false.
func (s *Set[K]) Exists(ctx context.Context, key K) bool {
	p, err := s.prepare(key)
	if err != nil {
		s.logger.Warn("exists failed", "error", err)
		return false
	}

	rows, err := s.matches(ctx, "exists", p)
	if err != nil {
		s.logger.Warn("exists failed", "error", err)
		return false
	}
	return len(rows) > 0
}

// Remove deletes the rows whose decoded key equals key; colliding keys in the
// same bucket are left alone. Removing an absent key succeeds. Any failure
// reads as false.
func (s *Set[K]) Remove(ctx context.Context, key K) bool {
	if err := s.remove(ctx, key); err != nil {
		s.logger.Warn("remove failed", "error", err)
		return false
	}
	return true
}

func (s *Set[K]) remove(ctx context.Context, key K) error {
	p, err := s.prepare(key)
	if err != nil {
		return err
	}

	rows, err := s.matches(ctx, "remove", p)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	for _, row := range rows {
		if _, err := s.table.Delete(ctx, row.ID); err != nil {
			s.rollback(ctx)
			return s.storeError("remove", fmt.Errorf("row %d: %w", row.ID, err))
		}
	}
	return s.commit(ctx, "remove")
}

// Debug dumps every row in id order
func (s *Set[K]) Debug(ctx context.Context) ([]repository.Row, error) {
	cur, err := s.table.Scan(ctx)
	if err != nil {
		return nil, s.storeError("debug", err)
	}
	defer cur.Close()

	var rows []repository.Row
	for cur.Next() {
		rows = append(rows, cur.Row())
	}
	if err := cur.Err(); err != nil {
		return nil, s.storeError("debug", err)
	}
	return rows, nil
}

// Len returns the number of stored keys
func (s *Set[K]) Len(ctx context.Context) (int, error) {
	return s.count(ctx)
}

// Close releases the store if the set opened it
func (s *Set[K]) Close() error {
	return s.close()
}
