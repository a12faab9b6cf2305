package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"hashstore/internal/repository"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// Options tunes the SQLite connection
type Options struct {
	// BusyTimeout is how long a statement waits on a locked database
	BusyTimeout time.Duration
	// JournalMode is passed to PRAGMA journal_mode (ignored for :memory:)
	JournalMode string
}

// DefaultOptions returns WAL mode with a 5s busy timeout
func DefaultOptions() Options {
	return Options{
		BusyTimeout: 5 * time.Second,
		JournalMode: "WAL",
	}
}

// querier is satisfied by both *sql.Conn and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements repository.Store on a single SQLite connection.
//
// Writes open a transaction lazily and keep it until Commit or Rollback, so
// reads on the same Store see uncommitted rows. A Store is not safe for
// concurrent use.
type Store struct {
	db   *sql.DB
	conn *sql.Conn
	tx   *sql.Tx
	path string
}

// Open opens (creating if needed) the SQLite database at path
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path, opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection for the lifetime of the store. :memory: databases are
	// per-connection, and pending transactions are per-connection too.
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(context.Background())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	return &Store{db: db, conn: conn, path: path}, nil
}

func dsn(path string, opts Options) string {
	var pragmas []string
	if opts.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=busy_timeout(%d)", opts.BusyTimeout.Milliseconds()))
	}
	if opts.JournalMode != "" && path != memoryPath {
		pragmas = append(pragmas, fmt.Sprintf("_pragma=journal_mode(%s)", opts.JournalMode))
	}
	if len(pragmas) == 0 {
		return path
	}
	return path + "?" + strings.Join(pragmas, "&")
}

// Path returns the database path the store was opened with
func (s *Store) Path() string {
	return s.path
}

// Table creates the table and its hash index if missing
func (s *Store) Table(ctx context.Context, name string, kind repository.Kind) (repository.Table, error) {
	if s.conn == nil {
		return nil, repository.ErrClosed
	}
	if err := repository.ValidateTableName(name); err != nil {
		return nil, err
	}

	existing, found, err := s.tableKind(ctx, name)
	if err != nil {
		return nil, err
	}
	if found && existing != kind {
		return nil, fmt.Errorf("%w: table %s is a %s table, not %s",
			repository.ErrKindMismatch, name, existing, kind)
	}

	if !found {
		if err := s.migrate(ctx, name, kind); err != nil {
			return nil, fmt.Errorf("failed to migrate table %s: %w", name, err)
		}
	}

	return &Table{store: s, name: name, kind: kind}, nil
}

// migrate creates the table outside any pending transaction so that the
// schema is durable even when no row is ever committed.
func (s *Store) migrate(ctx context.Context, name string, kind repository.Kind) error {
	var columns string
	switch kind {
	case repository.KindSet:
		columns = `
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hash INTEGER NOT NULL,
		key BLOB NOT NULL`
	case repository.KindDict:
		columns = `
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hash INTEGER NOT NULL,
		key BLOB NOT NULL,
		value BLOB NOT NULL`
	default:
		return fmt.Errorf("unknown table kind %s", kind)
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (%[2]s
	);

	CREATE INDEX IF NOT EXISTS idx_%[1]s_hash ON %[1]s(hash);
	`, name, columns)

	_, err := s.querier().ExecContext(ctx, schema)
	return err
}

// tableKind inspects an existing table's columns
func (s *Store) tableKind(ctx context.Context, name string) (repository.Kind, bool, error) {
	rows, err := s.querier().QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, name)
	if err != nil {
		return 0, false, fmt.Errorf("failed to inspect table %s: %w", name, err)
	}
	defer rows.Close()

	found, hasValue := false, false
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return 0, false, fmt.Errorf("failed to scan column: %w", err)
		}
		found = true
		if column == "value" {
			hasValue = true
		}
	}
	if err := rows.Err(); err != nil {
		return 0, false, fmt.Errorf("error iterating columns: %w", err)
	}

	if hasValue {
		return repository.KindDict, found, nil
	}
	return repository.KindSet, found, nil
}

// querier returns the pending transaction if any, else the bare connection
func (s *Store) querier() querier {
	if s.tx != nil {
		return s.tx
	}
	return s.conn
}

// writer returns the pending transaction, beginning one if needed
func (s *Store) writer(ctx context.Context) (querier, error) {
	if s.conn == nil {
		return nil, repository.ErrClosed
	}
	if s.tx == nil {
		// The transaction outlives the call that opened it.
		tx, err := s.conn.BeginTx(context.WithoutCancel(ctx), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		s.tx = tx
	}
	return s.tx, nil
}

// Pending reports whether uncommitted writes exist
func (s *Store) Pending() bool {
	return s.tx != nil
}

// Commit commits the pending transaction, if any
func (s *Store) Commit(ctx context.Context) error {
	if s.conn == nil {
		return repository.ErrClosed
	}
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the pending transaction, if any
func (s *Store) Rollback(ctx context.Context) error {
	if s.conn == nil {
		return repository.ErrClosed
	}
	if s.tx == nil {
		return nil
	}

	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Close rolls back uncommitted writes and closes the database connection
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	var firstErr error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil {
			firstErr = fmt.Errorf("failed to rollback transaction: %w", err)
		}
		s.tx = nil
	}
	if err := s.conn.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to release connection: %w", err)
	}
	s.conn = nil
	if err := s.db.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close database: %w", err)
	}
	return firstErr
}

var _ repository.Store = (*Store)(nil)
