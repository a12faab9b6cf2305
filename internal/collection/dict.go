package collection

import (
	"context"
	"errors"
	"fmt"

	"hashstore/internal/repository"
	"hashstore/internal/repository/sqlite"
)

// Dict persists key/value pairs. Keys are iterated in insertion order; an
// update keeps the row (and so the position) of the key.
//
// With autoCommit every mutation is committed before it returns. Without it,
// writes stay pending until Commit; reads on the same Dict see them, and
// closing without a commit discards them.
type Dict[K, V any] struct {
	*index[K]
	autoCommit bool
}

// OpenDict opens (creating if needed) a dict stored in the SQLite file at path
func OpenDict[K, V any](path string, autoCommit bool, opts ...Option) (*Dict[K, V], error) {
	o := buildOptions(DefaultDictTable, opts)

	store, err := sqlite.Open(path, o.sqlite)
	if err != nil {
		return nil, &StoreError{Op: "open", Table: o.table, Err: err}
	}
	o.logger.Debug("store opened", "path", store.Path(), "table", o.table)

	d, err := newDict[K, V](context.Background(), store, autoCommit, o)
	if err != nil {
		store.Close()
		return nil, err
	}
	d.owned = true
	return d, nil
}

// NewDict returns a dict backed by an already open store. Closing the dict
// leaves the store open.
func NewDict[K, V any](ctx context.Context, store repository.Store, autoCommit bool, opts ...Option) (*Dict[K, V], error) {
	return newDict[K, V](ctx, store, autoCommit, buildOptions(DefaultDictTable, opts))
}

func newDict[K, V any](ctx context.Context, store repository.Store, autoCommit bool, o options) (*Dict[K, V], error) {
	x, err := newIndex[K](ctx, store, repository.KindDict, o)
	if err != nil {
		return nil, err
	}
	x.logger.Debug("dict opened", "codec", x.codec.Name(), "hasher", x.hasher.Name(), "auto_commit", autoCommit)
	return &Dict[K, V]{index: x, autoCommit: autoCommit}, nil
}

// RowID resolves key to the id of its row
func (d *Dict[K, V]) RowID(ctx context.Context, key K) (int64, error) {
	p, err := d.prepare(key)
	if err != nil {
		return 0, err
	}

	row, err := d.resolve(ctx, "resolve", key, p)
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

// Get returns the value stored for key
func (d *Dict[K, V]) Get(ctx context.Context, key K) (V, error) {
	var v V

	p, err := d.prepare(key)
	if err != nil {
		return v, err
	}

	row, err := d.resolve(ctx, "get", key, p)
	if err != nil {
		return v, err
	}

	if err := d.codec.Unmarshal(row.Value, &v); err != nil {
		return v, fmt.Errorf("decode value of row %d: %w", row.ID, err)
	}
	return v, nil
}

// Set updates the value of an existing key in place or inserts a new row
func (d *Dict[K, V]) Set(ctx context.Context, key K, value V) error {
	encoded, err := d.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}

	p, err := d.prepare(key)
	if err != nil {
		return err
	}

	row, err := d.resolve(ctx, "set", key, p)
	var (
		id       int64
		affected int64
	)
	switch {
	case err == nil:
		id = row.ID
		affected, err = d.table.UpdateValue(ctx, id, encoded)
	case errors.Is(err, ErrKeyNotFound):
		id, affected, err = d.table.Insert(ctx, p.hash, p.encoded, encoded)
	default:
		return err
	}

	if err != nil {
		d.abort(ctx)
		return d.storeError("set", err)
	}
	if affected != 1 {
		d.abort(ctx)
		return d.invariant("set", id, affected)
	}
	return d.autoCommitWrite(ctx, "set")
}

// Delete removes key, failing with ErrKeyNotFound when it is absent
func (d *Dict[K, V]) Delete(ctx context.Context, key K) error {
	id, err := d.RowID(ctx, key)
	if err != nil {
		return err
	}

	affected, err := d.table.Delete(ctx, id)
	if err != nil {
		d.abort(ctx)
		return d.storeError("delete", err)
	}
	if affected == 0 {
		return d.notFound(key)
	}
	return d.autoCommitWrite(ctx, "delete")
}

// Contains reports whether key is stored
func (d *Dict[K, V]) Contains(ctx context.Context, key K) (bool, error) {
	_, err := d.RowID(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrKeyNotFound):
		return false, nil
	default:
		return false, err
	}
}

// IterKeys opens a cursor over the keys in insertion order. Each call
// queries the store again; the cursor sees the store as it is while being
// read, not a snapshot.
func (d *Dict[K, V]) IterKeys(ctx context.Context) (*KeyCursor[K], error) {
	cur, err := d.table.Scan(ctx)
	if err != nil {
		return nil, d.storeError("iterate", err)
	}
	return &KeyCursor[K]{cursor: cur, index: d.index}, nil
}

// Keys returns every key in insertion order
func (d *Dict[K, V]) Keys(ctx context.Context) ([]K, error) {
	cur, err := d.IterKeys(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	var keys []K
	for cur.Next() {
		keys = append(keys, cur.Key())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Len returns the number of stored pairs
func (d *Dict[K, V]) Len(ctx context.Context) (int, error) {
	return d.count(ctx)
}

// Commit makes pending writes durable
func (d *Dict[K, V]) Commit(ctx context.Context) error {
	if err := d.commit(ctx, "commit"); err != nil {
		return err
	}
	d.logger.Debug("committed")
	return nil
}

// AutoCommit reports the commit policy chosen at construction
func (d *Dict[K, V]) AutoCommit() bool {
	return d.autoCommit
}

// Close releases the store if the dict opened it. Uncommitted writes are lost.
func (d *Dict[K, V]) Close() error {
	return d.close()
}

// abort drops a failed write when nothing else can be pending
func (d *Dict[K, V]) abort(ctx context.Context) {
	if d.autoCommit {
		d.rollback(ctx)
	}
}

func (d *Dict[K, V]) autoCommitWrite(ctx context.Context, op string) error {
	if !d.autoCommit {
		return nil
	}
	return d.commit(ctx, op)
}
