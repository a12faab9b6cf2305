package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidTableName is returned when a table name is not a plain SQL identifier
	ErrInvalidTableName = errors.New("invalid table name")
	// ErrClosed is returned by operations on a closed store
	ErrClosed = errors.New("store closed")
	// ErrRollbackUnsupported is returned by stores that cannot discard pending writes
	ErrRollbackUnsupported = errors.New("rollback not supported")
	// ErrKindMismatch is returned when an existing table has the other column layout
	ErrKindMismatch = errors.New("table kind mismatch")
)

// Kind selects the column layout of a table
type Kind int

const (
	// KindSet tables hold (id, hash, key)
	KindSet Kind = iota
	// KindDict tables hold (id, hash, key, value)
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindSet:
		return "set"
	case KindDict:
		return "dict"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Row is one stored entry. Set rows have a nil Value.
type Row struct {
	ID    int64
	Hash  int64
	Key   []byte
	Value []byte
}

// Store is a connection to a relational backend holding collection tables
type Store interface {
	// Table creates the table if missing and returns a handle to it
	Table(ctx context.Context, name string, kind Kind) (Table, error)

	// Commit makes pending writes durable
	Commit(ctx context.Context) error
	// Rollback discards pending writes
	Rollback(ctx context.Context) error

	// Close discards uncommitted writes and releases resources
	Close() error
}

// Table is a hash-indexed table of rows ordered by a store-assigned id
type Table interface {
	Name() string
	Kind() Kind

	// Read operations
	Lookup(ctx context.Context, hash int64) ([]Row, error)
	Scan(ctx context.Context) (Cursor, error)
	Count(ctx context.Context) (int64, error)

	// Write operations report the number of affected rows
	Insert(ctx context.Context, hash int64, key, value []byte) (id int64, affected int64, err error)
	UpdateValue(ctx context.Context, id int64, value []byte) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

// Cursor is a forward-only iterator over rows in ascending id order
type Cursor interface {
	Next() bool
	Row() Row
	Err() error
	Close() error
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateTableName rejects names that cannot be used verbatim in SQL
func ValidateTableName(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, name)
	}
	return nil
}
