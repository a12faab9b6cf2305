package codec

import (
	"errors"
	"fmt"
)

// EnvelopeVersion is the framing version written by Envelope
const EnvelopeVersion byte = 1

var (
	// ErrUnsupportedVersion is returned for envelopes with an unknown version byte
	ErrUnsupportedVersion = errors.New("unsupported envelope version")
	// ErrCodecMismatch is returned when the stored codec name differs from the configured one
	ErrCodecMismatch = errors.New("codec mismatch")
	// ErrTruncated is returned when the envelope header is cut short
	ErrTruncated = errors.New("truncated envelope")
)

// Envelope frames the inner codec's output with a version byte and the codec
// name, so stored bytes say how they were produced:
//
//	[version][len(name)][name][payload]
type Envelope struct {
	Codec Codec
}

// Name returns the inner codec's name
func (e Envelope) Name() string {
	return e.Codec.Name()
}

// Marshal encodes v and prepends the header
func (e Envelope) Marshal(v any) ([]byte, error) {
	name := e.Codec.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("codec name too long: %d bytes", len(name))
	}

	payload, err := e.Codec.Marshal(v)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 2+len(name)+len(payload))
	out = append(out, EnvelopeVersion, byte(len(name)))
	out = append(out, name...)
	out = append(out, payload...)
	return out, nil
}

// Unmarshal validates the header and decodes the payload into v
func (e Envelope) Unmarshal(data []byte, v any) error {
	name, payload, err := Open(data)
	if err != nil {
		return err
	}
	if want := e.Codec.Name(); name != want {
		return fmt.Errorf("%w: stored %q, configured %q", ErrCodecMismatch, name, want)
	}
	return e.Codec.Unmarshal(payload, v)
}

// Open splits an envelope into the codec name and payload
func Open(data []byte) (string, []byte, error) {
	if len(data) < 2 {
		return "", nil, ErrTruncated
	}
	if data[0] != EnvelopeVersion {
		return "", nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data[0])
	}

	n := int(data[1])
	if len(data) < 2+n {
		return "", nil, ErrTruncated
	}
	return string(data[2 : 2+n]), data[2+n:], nil
}
