package collection

import (
	"log/slog"

	"hashstore/internal/codec"
	"hashstore/internal/keyhash"
	"hashstore/internal/repository/sqlite"
)

const (
	DefaultSetTable  = "persistent_set"
	DefaultDictTable = "persistent_dict"
)

type options struct {
	table  string
	codec  codec.Codec
	hasher keyhash.Hasher
	logger *slog.Logger
	sqlite sqlite.Options
}

// Option configures a Set or Dict
type Option func(*options)

// WithTableName selects the table backing the collection
func WithTableName(name string) Option {
	return func(o *options) { o.table = name }
}

// WithCodec sets the codec for keys and values
func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithHasher sets the bucket hash function
func WithHasher(h keyhash.Hasher) Option {
	return func(o *options) { o.hasher = h }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSQLiteOptions tunes the connection opened by OpenSet and OpenDict
func WithSQLiteOptions(opts sqlite.Options) Option {
	return func(o *options) { o.sqlite = opts }
}

func buildOptions(table string, opts []Option) options {
	o := options{
		table:  table,
		codec:  codec.Default,
		hasher: keyhash.Default,
		logger: slog.Default(),
		sqlite: sqlite.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
