// Package config provides configuration management for hashstore.
//
// Config file locations (priority order):
//  1. $HASHSTORE_CONFIG
//  2. ./hashstore.yaml
//  3. $XDG_CONFIG_HOME/hashstore/config.yaml
//  4. ~/.config/hashstore/config.yaml
//  5. /etc/hashstore/config.yaml
//
// A missing file is not an error; defaults apply. A relative store.path in a
// file is resolved against the directory of that file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"hashstore/internal/codec"
	"hashstore/internal/collection"
	"hashstore/internal/keyhash"
	"hashstore/internal/repository"
	"hashstore/internal/repository/sqlite"
)

const (
	defaultPath        = "./hashstore.db"
	defaultBusyTimeout = 5 * time.Second
	defaultJournalMode = "WAL"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.Store.Path = resolveStorePath(path, cfg.Store.Path)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Store.Path == "" {
		c.Store.Path = defaultPath
	}
	if c.Store.BusyTimeout == 0 {
		c.Store.BusyTimeout = Duration(defaultBusyTimeout)
	}
	if c.Store.JournalMode == "" {
		c.Store.JournalMode = defaultJournalMode
	}
	if c.Set.Table == "" {
		c.Set.Table = collection.DefaultSetTable
	}
	if c.Dict.Table == "" {
		c.Dict.Table = collection.DefaultDictTable
	}
	if c.Dict.AutoCommit == nil {
		on := true
		c.Dict.AutoCommit = &on
	}
	if c.Codec.Name == "" {
		c.Codec.Name = "json-v2"
	}
	if c.Codec.Compression == "" {
		c.Codec.Compression = "none"
	}
	if c.Codec.Envelope == nil {
		on := true
		c.Codec.Envelope = &on
	}
	if c.Hash == "" {
		c.Hash = keyhash.Default.Name()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks that every named component exists
func (c *Config) Validate() error {
	if err := repository.ValidateTableName(c.Set.Table); err != nil {
		return fmt.Errorf("set.table: %w", err)
	}
	if err := repository.ValidateTableName(c.Dict.Table); err != nil {
		return fmt.Errorf("dict.table: %w", err)
	}
	if _, err := c.BuildCodec(); err != nil {
		return err
	}
	if _, err := c.Hasher(); err != nil {
		return err
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}
	return nil
}

// BuildCodec resolves the configured codec chain
func (c *Config) BuildCodec() (codec.Codec, error) {
	name := c.Codec.Name
	if comp := c.Codec.Compression; comp != "" && comp != "none" {
		name += "+" + comp
	}

	cd, ok := codec.ByName(name)
	if !ok {
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
	if c.Codec.Envelope == nil || *c.Codec.Envelope {
		cd = codec.Envelope{Codec: cd}
	}
	return cd, nil
}

// Hasher resolves the configured hash function
func (c *Config) Hasher() (keyhash.Hasher, error) {
	h, ok := keyhash.ByName(c.Hash)
	if !ok {
		return nil, fmt.Errorf("hash: unknown hasher %q", c.Hash)
	}
	return h, nil
}

// SQLiteOptions returns the connection settings for the store
func (c *Config) SQLiteOptions() sqlite.Options {
	return sqlite.Options{
		BusyTimeout: c.Store.BusyTimeout.Duration(),
		JournalMode: c.Store.JournalMode,
	}
}

// AutoCommit reports whether dict writes commit immediately
func (c *Config) AutoCommit() bool {
	return c.Dict.AutoCommit == nil || *c.Dict.AutoCommit
}

// CollectionOptions returns the options shared by sets and dicts.
// The table name is left to the caller.
func (c *Config) CollectionOptions(logger *slog.Logger) ([]collection.Option, error) {
	cd, err := c.BuildCodec()
	if err != nil {
		return nil, err
	}
	h, err := c.Hasher()
	if err != nil {
		return nil, err
	}
	return []collection.Option{
		collection.WithCodec(cd),
		collection.WithHasher(h),
		collection.WithLogger(logger),
		collection.WithSQLiteOptions(c.SQLiteOptions()),
	}, nil
}

// Logger builds a slog logger writing to stderr
func (l LogConfig) Logger() (*slog.Logger, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Store: %s (journal %s, busy timeout %s)\n",
		c.Store.Path, c.Store.JournalMode, c.Store.BusyTimeout.Duration())
	summary += fmt.Sprintf("Tables: set=%s dict=%s, auto-commit: %v\n",
		c.Set.Table, c.Dict.Table, c.AutoCommit())
	summary += fmt.Sprintf("Codec: %s, compression: %s, hash: %s",
		c.Codec.Name, c.Codec.Compression, c.Hash)
	return summary
}
