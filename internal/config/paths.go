package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "HASHSTORE_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "hashstore.yaml"
	// ConfigDirName is the directory under XDG and /etc
	ConfigDirName = "hashstore"
)

// configCandidates lists config file locations, most specific first
func configCandidates() []string {
	var paths []string

	if path := os.Getenv(EnvConfigPath); path != "" {
		paths = append(paths, path)
	}
	paths = append(paths, ConfigFileName)

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, ConfigDirName, "config.yaml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}

	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

// FindConfigPath returns the first existing config file, made absolute, or
// "" when there is none. A missing $HASHSTORE_CONFIG falls through to the
// other locations.
func FindConfigPath() string {
	for _, path := range configCandidates() {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// resolveStorePath anchors a relative store path at the directory of the
// config file that named it, so the database does not move with the
// working directory.
func resolveStorePath(configPath, storePath string) string {
	if storePath == "" || storePath == ":memory:" || filepath.IsAbs(storePath) {
		return storePath
	}
	return filepath.Join(filepath.Dir(configPath), storePath)
}

// EnsureConfigDir creates the directory that will hold configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}
