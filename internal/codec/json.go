package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Map keys are sorted on output, so equal maps encode identically. Numbers
// decoded into an interface{} come back as float64. Invalid UTF-8 is replaced
// with U+FFFD, so distinct strings can encode to the same bytes; prefer JSONv2
// for keys that may carry arbitrary bytes.
type JSON struct{}

// Marshal encodes the value to JSON
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json"
func (JSON) Name() string { return "json" }
