package sqlite

import (
	"database/sql"
	"fmt"

	"hashstore/internal/repository"
)

// ============================================================================
// Row Scanner
// ============================================================================

// tableRow holds all columns from a row query for scanning
type tableRow struct {
	ID    int64
	Hash  int64
	Key   []byte
	Value []byte
}

// scanArgs returns pointers to fields for sql.Scan()
// MUST match columnsFor(kind) order exactly:
// id, hash, key[, value]
func (r *tableRow) scanArgs(kind repository.Kind) []interface{} {
	args := []interface{}{
		&r.ID,   // 1
		&r.Hash, // 2
		&r.Key,  // 3
	}
	if kind == repository.KindDict {
		args = append(args, &r.Value) // 4
	}
	return args
}

// toRepository converts the scanned row to a repository.Row
func (r *tableRow) toRepository() repository.Row {
	return repository.Row{
		ID:    r.ID,
		Hash:  r.Hash,
		Key:   r.Key,
		Value: r.Value,
	}
}

const (
	setColumns  = `id, hash, key`
	dictColumns = `id, hash, key, value`
)

// columnsFor returns the SELECT column list for a table kind
func columnsFor(kind repository.Kind) string {
	if kind == repository.KindDict {
		return dictColumns
	}
	return setColumns
}

// scanRows drains rows into a slice and closes them
func scanRows(rows *sql.Rows, kind repository.Kind) ([]repository.Row, error) {
	defer rows.Close()

	var out []repository.Row
	for rows.Next() {
		var r tableRow
		if err := rows.Scan(r.scanArgs(kind)...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		out = append(out, r.toRepository())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// ============================================================================
// Cursor
// ============================================================================

// cursor adapts *sql.Rows to repository.Cursor
type cursor struct {
	rows *sql.Rows
	kind repository.Kind
	row  repository.Row
	err  error
}

func (c *cursor) Next() bool {
	if c.err != nil {
		return false
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			c.err = fmt.Errorf("error iterating rows: %w", err)
		}
		return false
	}

	var r tableRow
	if err := c.rows.Scan(r.scanArgs(c.kind)...); err != nil {
		c.err = fmt.Errorf("failed to scan row: %w", err)
		return false
	}
	c.row = r.toRepository()
	return true
}

func (c *cursor) Row() repository.Row {
	return c.row
}

func (c *cursor) Err() error {
	return c.err
}

func (c *cursor) Close() error {
	return c.rows.Close()
}
