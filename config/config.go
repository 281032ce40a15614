package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for arcutil.
type Config struct {
	Walk     WalkConfig     `yaml:"walk"`
	Pack     PackConfig     `yaml:"pack"`
	Manifest ManifestConfig `yaml:"manifest"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// WalkConfig holds include/exclude patterns applied to walked entries.
type WalkConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// PackConfig holds archive writing configuration.
type PackConfig struct {
	Compression      string `yaml:"compression"` // "none", "gzip", "zstd", "lz4"
	Level            int    `yaml:"level"`       // 0 = library default
	// MaterializeLimit is in bytes. Negative streams every file, 0 uses the
	// 1 MiB default.
	MaterializeLimit int64  `yaml:"materialize_limit"`
	Prefix           string `yaml:"prefix"`
	Date             string `yaml:"date"` // fixed mtime for every entry, empty keeps file times
}

// ManifestConfig controls the on-disk manifest of archived files.
type ManifestConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Walk: WalkConfig{
			Includes: []string{"**/*"},
			Excludes: []string{"**/.git/**", "**/.arcutil/**", "**/node_modules/**"},
		},
		Pack: PackConfig{
			Compression:      "gzip",
			MaterializeLimit: 1 << 20,
		},
		Manifest: ManifestConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for arcutil.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "arcutil.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".arcutil", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ManifestDBPath returns the path to the manifest database.
func ManifestDBPath(dir string) string {
	return filepath.Join(dir, ".arcutil", "manifest.db")
}

// EnsureStateDir ensures the .arcutil directory exists.
func EnsureStateDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".arcutil"), 0755)
}
