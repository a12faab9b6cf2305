// Package repository defines the storage contract behind the persistent
// collections.
//
// A Store is a single connection to a backend. Each collection owns one Table
// inside it, addressed by an explicit name. Tables are shaped by Kind:
//
//   - KindSet:  id INTEGER PRIMARY KEY, hash INTEGER, key BLOB
//   - KindDict: id INTEGER PRIMARY KEY, hash INTEGER, key BLOB, value BLOB
//
// The hash column is a non-unique secondary index. Rows sharing a hash form a
// bucket; callers resolve the bucket by decoding each key and comparing it.
// Row ids are assigned by the store, increase monotonically and are never
// reused after a delete.
//
// # Implementations
//
// The sqlite subpackage persists tables to a file through modernc.org/sqlite.
// The memory subpackage keeps rows in a btree and is meant for tests and
// scratch collections that do not need to survive a restart.
//
// # Transactions
//
// Writes accumulate in a pending transaction until Commit. Reads issued on the
// same Store observe pending writes. There is no coordination between stores
// opened on the same file.
package repository
