// Package collection provides a persistent set and a persistent dictionary
// backed by a relational table.
//
// # Storage
//
// Keys of any type are encoded by a codec.Codec and hashed by a
// keyhash.Hasher into a signed 64-bit integer. The integer goes into an
// indexed, non-unique hash column; the encoded key goes next to it. Rows are
// identified by a store-assigned id.
//
// Every operation looks up the bucket for the key's hash, decodes each
// candidate key and compares it with the requested one. Keys whose hashes
// collide therefore never shadow, overwrite or delete each other. Equality is
// decided on decoded values: a key type implementing Equaler decides for
// itself, anything else goes through reflect.DeepEqual.
//
// # Set
//
//	s, err := collection.OpenSet[string]("data.db")
//	...
//	s.Add(ctx, "a")
//	s.Exists(ctx, "a") // true
//	s.Remove(ctx, "a")
//
// Set mutations are committed immediately. Exists and Remove report a
// failure of the store as false instead of returning it.
//
// # Dict
//
//	d, err := collection.OpenDict[string, int]("data.db", false)
//	...
//	d.Set(ctx, "a", 1)
//	v, err := d.Get(ctx, "a")
//	if errors.Is(err, collection.ErrKeyNotFound) { ... }
//	d.Commit(ctx)
//
// Set updates an existing key in place, keeping its row id, and inserts
// otherwise. A mutation that affects a row count other than one fails with
// ErrInvariantViolation. Keys iterate in insertion order.
//
// # Concurrency
//
// A collection and its store assume one owner issuing calls one at a time.
// Nothing coordinates two processes, or two stores, opened on the same file.
package collection
