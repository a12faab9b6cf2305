package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hashstore/internal/codec"
	"hashstore/internal/keyhash"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Store.Path != "./hashstore.db" {
		t.Errorf("Store.Path = %s, want ./hashstore.db", cfg.Store.Path)
	}
	if cfg.Store.BusyTimeout.Duration() != 5*time.Second {
		t.Errorf("Store.BusyTimeout = %s, want 5s", cfg.Store.BusyTimeout.Duration())
	}
	if cfg.Set.Table != "persistent_set" || cfg.Dict.Table != "persistent_dict" {
		t.Errorf("tables = %s/%s, want persistent_set/persistent_dict", cfg.Set.Table, cfg.Dict.Table)
	}
	if !cfg.AutoCommit() {
		t.Error("AutoCommit() should default to true")
	}
	if cfg.Codec.Name != "json-v2" {
		t.Errorf("Codec.Name = %s, want json-v2", cfg.Codec.Name)
	}
	if cfg.Hash != "blake2b" {
		t.Errorf("Hash = %s, want blake2b", cfg.Hash)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := writeConfig(t, `
store:
  path: /tmp/data.db
  busy_timeout: 250ms
  journal_mode: DELETE
dict:
  table: settings
  auto_commit: false
codec:
  name: yaml
  compression: zstd
hash: fnv
log:
  level: debug
  format: json
`)

	cfg, got, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if got != path {
		t.Errorf("path = %s, want %s", got, path)
	}

	if cfg.Store.BusyTimeout.Duration() != 250*time.Millisecond {
		t.Errorf("BusyTimeout = %s, want 250ms", cfg.Store.BusyTimeout.Duration())
	}
	if cfg.Dict.Table != "settings" {
		t.Errorf("Dict.Table = %s, want settings", cfg.Dict.Table)
	}
	if cfg.Set.Table != "persistent_set" {
		t.Errorf("Set.Table = %s, want default", cfg.Set.Table)
	}
	if cfg.AutoCommit() {
		t.Error("AutoCommit() should be false")
	}

	opts := cfg.SQLiteOptions()
	if opts.JournalMode != "DELETE" || opts.BusyTimeout != 250*time.Millisecond {
		t.Errorf("SQLiteOptions() = %+v", opts)
	}

	cd, err := cfg.BuildCodec()
	if err != nil {
		t.Fatalf("BuildCodec() error: %v", err)
	}
	if cd.Name() != "yaml+zstd" {
		t.Errorf("codec = %s, want yaml+zstd (enveloped)", cd.Name())
	}
	if _, ok := cd.(codec.Envelope); !ok {
		t.Errorf("codec should be wrapped in an envelope, got %T", cd)
	}

	h, err := cfg.Hasher()
	if err != nil {
		t.Fatalf("Hasher() error: %v", err)
	}
	if h != keyhash.Hasher(keyhash.FNV{}) {
		t.Errorf("Hasher() = %T, want FNV", h)
	}

	if _, err := cfg.Log.Logger(); err != nil {
		t.Errorf("Logger() error: %v", err)
	}
}

func TestLoadFromPathErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "store: [", "parse config"},
		{"bad table", "dict:\n  table: \"drop table\"\n", "dict.table"},
		{"bad codec", "codec:\n  name: gob\n", "codec"},
		{"bad compression", "codec:\n  compression: snappy\n", "codec"},
		{"bad hash", "hash: md5\n", "hash"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"bad duration", "store:\n  busy_timeout: soon\n", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := LoadFromPath(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("LoadFromPath() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}

	if _, _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFromPath() should fail for a missing file")
	}
}

func TestBuildCodecWithoutEnvelope(t *testing.T) {
	cfg := DefaultConfig()
	off := false
	cfg.Codec.Envelope = &off

	cd, err := cfg.BuildCodec()
	if err != nil {
		t.Fatalf("BuildCodec() error: %v", err)
	}
	if _, ok := cd.(codec.JSONv2); !ok {
		t.Errorf("BuildCodec() = %T, want codec.JSONv2", cd)
	}
}

func TestCollectionOptions(t *testing.T) {
	cfg := DefaultConfig()
	logger, err := cfg.Log.Logger()
	if err != nil {
		t.Fatalf("Logger() error: %v", err)
	}

	opts, err := cfg.CollectionOptions(logger)
	if err != nil {
		t.Fatalf("CollectionOptions() error: %v", err)
	}
	if len(opts) != 4 {
		t.Errorf("len(opts) = %d, want 4", len(opts))
	}

	cfg.Hash = "md5"
	if _, err := cfg.CollectionOptions(logger); err == nil {
		t.Error("CollectionOptions() should fail for an unknown hasher")
	}
}

func TestSaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Store.Path = "/var/lib/hashstore/data.db"
	cfg.Store.BusyTimeout = Duration(time.Minute)
	off := false
	cfg.Dict.AutoCommit = &off

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, _, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if loaded.Store.Path != cfg.Store.Path {
		t.Errorf("Store.Path = %s, want %s", loaded.Store.Path, cfg.Store.Path)
	}
	if loaded.Store.BusyTimeout != cfg.Store.BusyTimeout {
		t.Errorf("BusyTimeout = %s, want 1m", loaded.Store.BusyTimeout.Duration())
	}
	if loaded.AutoCommit() {
		t.Error("AutoCommit() should survive a round trip as false")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	t.Setenv(EnvConfigPath, "")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	if got := FindConfigPath(); got != "" && !strings.HasPrefix(got, "/etc/") {
		t.Errorf("FindConfigPath() = %s, want none", got)
	}

	explicit := writeConfig(t, "hash: fnv\n")
	t.Setenv(EnvConfigPath, explicit)
	if got := FindConfigPath(); got != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", got, explicit)
	}

	// a missing explicit path falls through to XDG
	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	xdg := filepath.Join(tmpDir, "xdg", ConfigDirName, "config.yaml")
	if err := DefaultConfig().Save(xdg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if got := FindConfigPath(); got != xdg {
		t.Errorf("FindConfigPath() = %s, want %s", got, xdg)
	}

	// the working directory wins over XDG and comes back absolute
	if err := os.WriteFile(ConfigFileName, []byte("hash: fnv\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	got := FindConfigPath()
	if !filepath.IsAbs(got) || filepath.Base(got) != ConfigFileName {
		t.Errorf("FindConfigPath() = %s, want absolute ./%s", got, ConfigFileName)
	}
}

func TestResolveStorePath(t *testing.T) {
	tests := []struct {
		store string
		want  string
	}{
		{"data.db", "/etc/hashstore/data.db"},
		{"./sub/data.db", "/etc/hashstore/sub/data.db"},
		{"/var/lib/data.db", "/var/lib/data.db"},
		{":memory:", ":memory:"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := resolveStorePath("/etc/hashstore/config.yaml", tt.store); got != tt.want {
			t.Errorf("resolveStorePath(%q) = %q, want %q", tt.store, got, tt.want)
		}
	}
}

func TestLoadResolvesRelativeStorePath(t *testing.T) {
	path := writeConfig(t, "store:\n  path: data/hashstore.db\n")

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	want := filepath.Join(filepath.Dir(path), "data", "hashstore.db")
	if cfg.Store.Path != want {
		t.Errorf("Store.Path = %s, want %s", cfg.Store.Path, want)
	}

	// the default is not anchored
	cfg, _, err = LoadFromPath(writeConfig(t, "hash: fnv\n"))
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Store.Path != "./hashstore.db" {
		t.Errorf("Store.Path = %s, want ./hashstore.db", cfg.Store.Path)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}

func TestSummary(t *testing.T) {
	summary := DefaultConfig().Summary()

	for _, want := range []string{"./hashstore.db", "persistent_dict", "json-v2", "blake2b"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary() = %q, want it to mention %q", summary, want)
		}
	}
}
