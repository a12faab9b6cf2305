package collection

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"hashstore/internal/codec"
	"hashstore/internal/keyhash"
	"hashstore/internal/repository"
)

// Equaler lets a key type decide equality itself instead of reflect.DeepEqual.
// Equal is only consulted within a hash bucket: if it accepts keys that encode
// differently, the type must also implement HashKeyer.
type Equaler[K any] interface {
	Equal(other K) bool
}

// HashKeyer keys choose the bytes their bucket is hashed from. Keys that are
// Equal must return identical bytes.
type HashKeyer interface {
	HashKey() []byte
}

func keysEqual[K any](a, b K) bool {
	if e, ok := any(a).(Equaler[K]); ok {
		return e.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

// probe is a key prepared for lookup: its stored form, its bucket and the
// key as it reads back from storage.
type probe[K any] struct {
	encoded []byte
	hash    int64
	decoded K
}

// index holds what Set and Dict share: a table, the codec and the hasher
type index[K any] struct {
	store  repository.Store
	table  repository.Table
	codec  codec.Codec
	hasher keyhash.Hasher
	logger *slog.Logger
	owned  bool
}

func newIndex[K any](ctx context.Context, store repository.Store, kind repository.Kind, o options) (*index[K], error) {
	if err := repository.ValidateTableName(o.table); err != nil {
		return nil, err
	}

	table, err := store.Table(ctx, o.table, kind)
	if err != nil {
		return nil, &StoreError{Op: "open", Table: o.table, Err: err}
	}

	return &index[K]{
		store:  store,
		table:  table,
		codec:  o.codec,
		hasher: o.hasher,
		logger: o.logger.With("table", o.table),
	}, nil
}

// prepare encodes the key and decodes it back, so comparisons against stored
// keys are made between two decoded values.
func (x *index[K]) prepare(key K) (probe[K], error) {
	encoded, err := x.codec.Marshal(key)
	if err != nil {
		return probe[K]{}, fmt.Errorf("encode key: %w", err)
	}

	p := probe[K]{encoded: encoded}
	if err := x.codec.Unmarshal(encoded, &p.decoded); err != nil {
		return probe[K]{}, fmt.Errorf("decode key: %w", err)
	}

	if hk, ok := any(p.decoded).(HashKeyer); ok {
		p.hash = x.hasher.Sum(hk.HashKey())
	} else {
		p.hash = x.hasher.Sum(encoded)
	}
	return p, nil
}

// matches returns the rows in the probe's bucket whose decoded key equals it
func (x *index[K]) matches(ctx context.Context, op string, p probe[K]) ([]repository.Row, error) {
	candidates, err := x.table.Lookup(ctx, p.hash)
	if err != nil {
		return nil, x.storeError(op, err)
	}

	var out []repository.Row
	for _, row := range candidates {
		var stored K
		if err := x.codec.Unmarshal(row.Key, &stored); err != nil {
			return nil, fmt.Errorf("decode key of row %d: %w", row.ID, err)
		}
		if keysEqual(stored, p.decoded) {
			out = append(out, row)
		}
	}

	if len(candidates) > len(out) {
		x.logger.Debug("hash collision", "hash", p.hash, "bucket", len(candidates), "matched", len(out))
	}
	return out, nil
}

// resolve returns the first row whose decoded key equals key
func (x *index[K]) resolve(ctx context.Context, op string, key K, p probe[K]) (repository.Row, error) {
	rows, err := x.matches(ctx, op, p)
	if err != nil {
		return repository.Row{}, err
	}
	if len(rows) == 0 {
		return repository.Row{}, x.notFound(key)
	}
	return rows[0], nil
}

func (x *index[K]) decodeKey(row repository.Row) (K, error) {
	var k K
	if err := x.codec.Unmarshal(row.Key, &k); err != nil {
		return k, fmt.Errorf("decode key of row %d: %w", row.ID, err)
	}
	return k, nil
}

func (x *index[K]) commit(ctx context.Context, op string) error {
	if err := x.store.Commit(ctx); err != nil {
		return x.storeError(op, err)
	}
	return nil
}

// rollback drops a half-applied write; the original error is what matters
func (x *index[K]) rollback(ctx context.Context) {
	if err := x.store.Rollback(ctx); err != nil {
		x.logger.Debug("rollback failed", "error", err)
	}
}

func (x *index[K]) count(ctx context.Context) (int, error) {
	n, err := x.table.Count(ctx)
	if err != nil {
		return 0, x.storeError("len", err)
	}
	return int(n), nil
}

func (x *index[K]) close() error {
	if !x.owned {
		return nil
	}
	return x.store.Close()
}

func (x *index[K]) notFound(key K) error {
	return &KeyNotFoundError{Table: x.table.Name(), Key: key}
}

func (x *index[K]) storeError(op string, err error) error {
	return &StoreError{Op: op, Table: x.table.Name(), Err: err}
}

func (x *index[K]) invariant(op string, rowID, affected int64) error {
	err := &InvariantError{Op: op, Table: x.table.Name(), RowID: rowID, Affected: affected}
	x.logger.Error("index corrupt", "op", op, "row_id", rowID, "affected", affected)
	return err
}
