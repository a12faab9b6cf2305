// Package codec turns keys and values into the opaque byte sequences stored
// by the collections, and back.
//
// Changing the codec of an existing table is a breaking change: rows written
// by one codec generally do not decode under another. Wrap codecs in an
// Envelope to have the mismatch reported instead of silently misread.
package codec

import (
	"fmt"
	"strings"
)

// Codec encodes/decodes values.
//
// Equal logical values must encode to identical bytes, since the encoded key
// is what gets hashed. Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used by collections when none is configured.
// JSONv2 fails on invalid UTF-8 where JSON would merge distinct strings.
var Default Codec = Envelope{Codec: JSONv2{}}

// ByName returns a built-in codec by its stable name.
//
// A "+zstd" or "+lz4" suffix wraps the base codec in Compressed, e.g.
// "json-v2+zstd".
func ByName(name string) (Codec, bool) {
	base, algorithm, compressed := strings.Cut(name, "+")

	var c Codec
	switch base {
	case "json":
		c = JSON{}
	case "json-v2":
		c = JSONv2{}
	case "yaml":
		c = YAML{}
	default:
		return nil, false
	}

	if !compressed {
		return c, true
	}

	switch Algorithm(algorithm) {
	case Zstd, LZ4:
		return Compressed{Codec: c, Algorithm: Algorithm(algorithm)}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests and benchmarks
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
