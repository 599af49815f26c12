package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".histsheet"

// XDGConfigFile is the configuration file name inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .histsheet configuration file.
type File struct {
	// Encoding forces the input charset, e.g. "windows-1251".
	Encoding string `yaml:"encoding,omitempty"`

	// AllowedEncodings restricts detected charsets.
	AllowedEncodings []string `yaml:"allowedEncodings,omitempty"`

	// MinConfidence is the lowest accepted detection confidence.
	MinConfidence int `yaml:"minConfidence,omitempty"`

	// Strict makes incomplete entries fatal.
	Strict bool `yaml:"strict,omitempty"`

	// History enables or disables the history database.
	// A pointer distinguishes "false" from "not set".
	History *bool `yaml:"history,omitempty"`

	// DBDir overrides the history database directory.
	DBDir string `yaml:"dbDir,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .histsheet in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .histsheet in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	for _, path := range configSearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// configSearchPaths returns the implicit configuration file locations in
// search order. Directories that cannot be determined are left out.
func configSearchPaths() []string {
	paths := make([]string, 0, 3)

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}

	paths = append(paths, filepath.Join(XDGConfigDir(), XDGConfigFile))

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}

	return paths
}
