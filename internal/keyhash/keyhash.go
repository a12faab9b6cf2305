// Package keyhash maps encoded keys onto the signed 64-bit integers stored in
// the hash column.
//
// A Hasher must return the same value for the same bytes across processes and
// releases; changing it orphans every existing row. It does not need to be
// collision free.
package keyhash

import (
	"encoding/binary"
	"hash/fnv"

	"golang.org/x/crypto/blake2b"
)

// Hasher computes bucket hashes
type Hasher interface {
	Sum(data []byte) int64
	Name() string
}

// Default is the hasher used by collections when none is configured
var Default Hasher = Blake2b{}

// ByName returns a built-in hasher
func ByName(name string) (Hasher, bool) {
	switch name {
	case "blake2b":
		return Blake2b{}, true
	case "fnv":
		return FNV{}, true
	default:
		return nil, false
	}
}

// Blake2b takes the first 8 bytes of BLAKE2b-256, big endian
type Blake2b struct{}

func (Blake2b) Sum(data []byte) int64 {
	sum := blake2b.Sum256(data)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

func (Blake2b) Name() string { return "blake2b" }

// FNV is 64-bit FNV-1a. Faster than Blake2b, weaker spread on similar keys.
type FNV struct{}

func (FNV) Sum(data []byte) int64 {
	h := fnv.New64a()
	h.Write(data)
	return int64(h.Sum64())
}

func (FNV) Name() string { return "fnv" }
