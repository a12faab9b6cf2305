package codec

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm names a compression scheme
type Algorithm string

const (
	Zstd Algorithm = "zstd"
	LZ4  Algorithm = "lz4"
)

// Compressed compresses the output of another codec. Worth it for large
// values; keys are usually too small to benefit.
type Compressed struct {
	Codec     Codec
	Algorithm Algorithm
}

// Name returns "<inner>+<algorithm>"
func (c Compressed) Name() string {
	return c.Codec.Name() + "+" + string(c.Algorithm)
}

// Marshal encodes with the inner codec and compresses the result
func (c Compressed) Marshal(v any) ([]byte, error) {
	raw, err := c.Codec.Marshal(v)
	if err != nil {
		return nil, err
	}

	switch c.Algorithm {
	case Zstd:
		enc, err := zstdEncoder()
		if err != nil {
			return nil, err
		}
		return enc.EncodeAll(raw, make([]byte, 0, len(raw))), nil
	case LZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", c.Algorithm)
	}
}

// Unmarshal decompresses data and decodes it with the inner codec
func (c Compressed) Unmarshal(data []byte, v any) error {
	var raw []byte

	switch c.Algorithm {
	case Zstd:
		dec, err := zstdDecoder()
		if err != nil {
			return err
		}
		raw, err = dec.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("zstd decompress: %w", err)
		}
	case LZ4:
		var err error
		raw, err = io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return fmt.Errorf("lz4 decompress: %w", err)
		}
	default:
		return fmt.Errorf("unknown compression %q", c.Algorithm)
	}

	return c.Codec.Unmarshal(raw, v)
}

// EncodeAll and DecodeAll are safe for concurrent use, so one of each is shared.
var (
	zstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd encoder: %w", err)
		}
		return enc, nil
	})
	zstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		return dec, nil
	})
)
