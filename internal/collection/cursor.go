package collection

import (
	"hashstore/internal/repository"
)

// KeyCursor is a forward-only sequence of decoded keys.
//
//	cur, err := d.IterKeys(ctx)
//	...
//	defer cur.Close()
//	for cur.Next() {
//		k := cur.Key()
//	}
//	if err := cur.Err(); err != nil { ... }
type KeyCursor[K any] struct {
	cursor repository.Cursor
	index  *index[K]
	key    K
	err    error
}

// Next advances to the next key, returning false at the end or on error
func (c *KeyCursor[K]) Next() bool {
	if c.err != nil {
		return false
	}
	if !c.cursor.Next() {
		if err := c.cursor.Err(); err != nil {
			c.err = c.index.storeError("iterate", err)
		}
		return false
	}

	key, err := c.index.decodeKey(c.cursor.Row())
	if err != nil {
		c.err = err
		return false
	}
	c.key = key
	return true
}

// Key returns the key at the current position
func (c *KeyCursor[K]) Key() K {
	return c.key
}

// Err returns the error that stopped iteration, if any
func (c *KeyCursor[K]) Err() error {
	return c.err
}

// Close releases the underlying cursor
func (c *KeyCursor[K]) Close() error {
	return c.cursor.Close()
}
