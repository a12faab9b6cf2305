package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version int         `yaml:"version"`
	Store   StoreConfig `yaml:"store"`
	Set     SetConfig   `yaml:"set"`
	Dict    DictConfig  `yaml:"dict"`
	Codec   CodecConfig `yaml:"codec"`
	Hash    string      `yaml:"hash"` // blake2b, fnv
	Log     LogConfig   `yaml:"log"`
}

// StoreConfig locates and tunes the SQLite file
type StoreConfig struct {
	Path        string   `yaml:"path"`
	BusyTimeout Duration `yaml:"busy_timeout"`
	JournalMode string   `yaml:"journal_mode"` // WAL, DELETE, TRUNCATE, MEMORY, OFF
}

// SetConfig configures the persistent set
type SetConfig struct {
	Table string `yaml:"table"`
}

// DictConfig configures the persistent dict
type DictConfig struct {
	Table      string `yaml:"table"`
	AutoCommit *bool  `yaml:"auto_commit,omitempty"` // nil = true
}

// CodecConfig selects how keys and values are serialized
type CodecConfig struct {
	Name        string `yaml:"name"`               // json-v2, json, yaml
	Compression string `yaml:"compression"`        // none, zstd, lz4
	Envelope    *bool  `yaml:"envelope,omitempty"` // nil = true
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Duration wraps time.Duration for YAML serialization
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
