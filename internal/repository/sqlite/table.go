package sqlite

import (
	"context"
	"fmt"

	"hashstore/internal/repository"
)

// Table implements repository.Table for one SQLite table
type Table struct {
	store *Store
	name  string
	kind  repository.Kind
}

// Name returns the table name
func (t *Table) Name() string {
	return t.name
}

// Kind returns the table's column layout
func (t *Table) Kind() repository.Kind {
	return t.kind
}

// Lookup returns every row in the hash bucket, ascending by id
func (t *Table) Lookup(ctx context.Context, hash int64) ([]repository.Row, error) {
	if t.store.conn == nil {
		return nil, repository.ErrClosed
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE hash = ? ORDER BY id`, columnsFor(t.kind), t.name)
	rows, err := t.store.querier().QueryContext(ctx, query, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", t.name, err)
	}
	return scanRows(rows, t.kind)
}

// Scan opens a cursor over all rows, ascending by id
func (t *Table) Scan(ctx context.Context) (repository.Cursor, error) {
	if t.store.conn == nil {
		return nil, repository.ErrClosed
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id`, columnsFor(t.kind), t.name)
	rows, err := t.store.querier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", t.name, err)
	}
	return &cursor{rows: rows, kind: t.kind}, nil
}

// Count returns the number of rows
func (t *Table) Count(ctx context.Context) (int64, error) {
	if t.store.conn == nil {
		return 0, repository.ErrClosed
	}

	var n int64
	err := t.store.querier().QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, t.name)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", t.name, err)
	}
	return n, nil
}

// Insert adds a row; value is ignored for set tables
func (t *Table) Insert(ctx context.Context, hash int64, key, value []byte) (int64, int64, error) {
	w, err := t.store.writer(ctx)
	if err != nil {
		return 0, 0, err
	}

	var (
		query string
		args  []interface{}
	)
	switch t.kind {
	case repository.KindDict:
		if value == nil {
			value = []byte{}
		}
		query = fmt.Sprintf(`INSERT INTO %s (hash, key, value) VALUES (?, ?, ?)`, t.name)
		args = []interface{}{hash, key, value}
	default:
		query = fmt.Sprintf(`INSERT INTO %s (hash, key) VALUES (?, ?)`, t.name)
		args = []interface{}{hash, key}
	}

	result, err := w.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert into %s: %w", t.name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return id, affected, nil
}

// UpdateValue replaces the value of the row with the given id
func (t *Table) UpdateValue(ctx context.Context, id int64, value []byte) (int64, error) {
	if t.kind != repository.KindDict {
		return 0, fmt.Errorf("update value on %s table %s", t.kind, t.name)
	}
	w, err := t.store.writer(ctx)
	if err != nil {
		return 0, err
	}
	if value == nil {
		value = []byte{}
	}

	result, err := w.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET value = ? WHERE id = ?`, t.name), value, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update %s: %w", t.name, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

// Delete removes the row with the given id
func (t *Table) Delete(ctx context.Context, id int64) (int64, error) {
	w, err := t.store.writer(ctx)
	if err != nil {
		return 0, err
	}

	result, err := w.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.name), id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", t.name, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected, nil
}

var _ repository.Table = (*Table)(nil)
