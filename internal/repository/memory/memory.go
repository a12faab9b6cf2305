// Package memory implements repository.Store in process memory.
//
// Rows live in a btree ordered by id, with a map from hash to the ids in the
// bucket. Nothing is durable: Commit is a no-op and Close drops every table.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/btree"

	"hashstore/internal/repository"
)

type Store struct {
	mutex  *sync.Mutex
	tables map[string]*Table
	closed bool
}

func New() *Store {
	return &Store{
		mutex:  &sync.Mutex{},
		tables: map[string]*Table{},
	}
}

func (s *Store) Table(ctx context.Context, name string, kind repository.Kind) (repository.Table, error) {
	if err := repository.ValidateTableName(name); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return nil, repository.ErrClosed
	}

	if t, ok := s.tables[name]; ok {
		if t.kind != kind {
			return nil, fmt.Errorf("%w: table %s is a %s table, not %s",
				repository.ErrKindMismatch, name, t.kind, kind)
		}
		return t, nil
	}

	t := newTable(s, name, kind)
	s.tables[name] = t
	return t, nil
}

func (s *Store) Commit(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return repository.ErrClosed
	}
	return nil
}

func (s *Store) Rollback(ctx context.Context) error {
	return repository.ErrRollbackUnsupported
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
	s.tables = map[string]*Table{}
	return nil
}

func (s *Store) isClosed() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.closed
}

type Table struct {
	store  *Store
	name   string
	kind   repository.Kind
	rows   *btree.BTreeG[*repository.Row]
	hashes map[int64][]int64
	lastID int64
	mutex  *sync.RWMutex
}

func newTable(store *Store, name string, kind repository.Kind) *Table {
	return &Table{
		store: store,
		name:  name,
		kind:  kind,
		rows: btree.NewG(32, func(a, b *repository.Row) bool {
			return a.ID < b.ID
		}),
		hashes: map[int64][]int64{},
		mutex:  &sync.RWMutex{},
	}
}

func (t *Table) Name() string          { return t.name }
func (t *Table) Kind() repository.Kind { return t.kind }

func (t *Table) Lookup(ctx context.Context, hash int64) ([]repository.Row, error) {
	if t.store.isClosed() {
		return nil, repository.ErrClosed
	}

	t.mutex.RLock()
	defer t.mutex.RUnlock()

	var out []repository.Row
	for _, id := range t.hashes[hash] {
		if row, ok := t.rows.Get(&repository.Row{ID: id}); ok {
			out = append(out, clone(row))
		}
	}
	return out, nil
}

func (t *Table) Scan(ctx context.Context) (repository.Cursor, error) {
	if t.store.isClosed() {
		return nil, repository.ErrClosed
	}

	t.mutex.RLock()
	defer t.mutex.RUnlock()

	rows := make([]repository.Row, 0, t.rows.Len())
	t.rows.Ascend(func(row *repository.Row) bool {
		rows = append(rows, clone(row))
		return true
	})
	return &cursor{rows: rows, i: -1}, nil
}

func (t *Table) Count(ctx context.Context) (int64, error) {
	if t.store.isClosed() {
		return 0, repository.ErrClosed
	}

	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return int64(t.rows.Len()), nil
}

func (t *Table) Insert(ctx context.Context, hash int64, key, value []byte) (int64, int64, error) {
	if t.store.isClosed() {
		return 0, 0, repository.ErrClosed
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.lastID++
	row := &repository.Row{
		ID:   t.lastID,
		Hash: hash,
		Key:  slices.Clone(key),
	}
	if t.kind == repository.KindDict {
		row.Value = cloneValue(value)
	}

	t.rows.ReplaceOrInsert(row)
	t.hashes[hash] = append(t.hashes[hash], row.ID)
	return row.ID, 1, nil
}

func (t *Table) UpdateValue(ctx context.Context, id int64, value []byte) (int64, error) {
	if t.kind != repository.KindDict {
		return 0, fmt.Errorf("update value on %s table %s", t.kind, t.name)
	}
	if t.store.isClosed() {
		return 0, repository.ErrClosed
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	row, ok := t.rows.Get(&repository.Row{ID: id})
	if !ok {
		return 0, nil
	}
	row.Value = cloneValue(value)
	return 1, nil
}

func (t *Table) Delete(ctx context.Context, id int64) (int64, error) {
	if t.store.isClosed() {
		return 0, repository.ErrClosed
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	row, ok := t.rows.Delete(&repository.Row{ID: id})
	if !ok {
		return 0, nil
	}

	bucket := slices.DeleteFunc(t.hashes[row.Hash], func(i int64) bool { return i == id })
	if len(bucket) == 0 {
		delete(t.hashes, row.Hash)
	} else {
		t.hashes[row.Hash] = bucket
	}
	return 1, nil
}

func clone(row *repository.Row) repository.Row {
	return repository.Row{
		ID:    row.ID,
		Hash:  row.Hash,
		Key:   slices.Clone(row.Key),
		Value: slices.Clone(row.Value),
	}
}

func cloneValue(value []byte) []byte {
	if value == nil {
		return []byte{}
	}
	return slices.Clone(value)
}

// cursor walks a copy of the rows taken when Scan was called
type cursor struct {
	rows []repository.Row
	i    int
}

func (c *cursor) Next() bool {
	if c.i+1 >= len(c.rows) {
		c.i = len(c.rows)
		return false
	}
	c.i++
	return true
}

func (c *cursor) Row() repository.Row {
	if c.i < 0 || c.i >= len(c.rows) {
		return repository.Row{}
	}
	return c.rows[c.i]
}

func (c *cursor) Err() error   { return nil }
func (c *cursor) Close() error { c.rows = nil; return nil }

var (
	_ repository.Store = (*Store)(nil)
	_ repository.Table = (*Table)(nil)
)
