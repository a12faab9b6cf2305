package codec

import (
	jsonv2 "github.com/go-json-experiment/json"
)

// JSONv2 encodes with github.com/go-json-experiment/json in deterministic
// mode. Unlike JSON it rejects invalid UTF-8 and duplicate object names.
type JSONv2 struct{}

// Marshal encodes the value to JSON
func (JSONv2) Marshal(v any) ([]byte, error) {
	return jsonv2.Marshal(v, jsonv2.Deterministic(true))
}

// Unmarshal decodes the JSON data into v
func (JSONv2) Unmarshal(data []byte, v any) error {
	return jsonv2.Unmarshal(data, v)
}

// Name returns "json-v2"
func (JSONv2) Name() string { return "json-v2" }
