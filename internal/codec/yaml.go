package codec

import (
	"gopkg.in/yaml.v3"
)

// YAML handles values as YAML documents. Handy when stored keys and values
// are meant to be read by people through the debug dump.
type YAML struct{}

// Marshal encodes the value to YAML
func (YAML) Marshal(v any) ([]byte, error) { return yaml.Marshal(v) }

// Unmarshal decodes the YAML data into v
func (YAML) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

// Name returns "yaml"
func (YAML) Name() string { return "yaml" }
