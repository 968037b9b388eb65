// Package config loads the shoplist settings from a YAML file with
// SHOPLIST_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
	DriverMemory = "memory"
)

var (
	ValidDrivers = []string{DriverSQLite, DriverJSON, DriverMemory}
	ValidLevels  = []string{"debug", "info", "warn", "error"}
	ValidFormats = []string{"console", "json"}
	ValidThemes  = []string{"classic", "neon", "mono"}
)

type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Transfer TransferConfig `yaml:"transfer"`
	Logging  LoggingConfig  `yaml:"logging"`
	UI       UIConfig       `yaml:"ui"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite, json, memory
	Path   string `yaml:"path"`
}

// TransferConfig names the files used by import and export.
type TransferConfig struct {
	ImportPath string `yaml:"import_path"`
	ExportPath string `yaml:"export_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
	File   string `yaml:"file"`
}

type UIConfig struct {
	Theme string `yaml:"theme"` // classic, neon, mono
}

// Dir is ~/.shoplist, where the config file and default data live.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".shoplist"), nil
}

// DefaultPath is the config file used when --config is not given.
func DefaultPath() string {
	dir, err := Dir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "config.yaml")
}

func DefaultConfig() *Config {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	return &Config{
		Storage: StorageConfig{
			Driver: DriverSQLite,
			Path:   filepath.Join(dir, "shoplist.db"),
		},
		Transfer: TransferConfig{
			ImportPath: filepath.Join(dir, "shoplist_import.txt"),
			ExportPath: filepath.Join(dir, "shoplist_export.txt"),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		UI: UIConfig{Theme: "classic"},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SHOPLIST_DRIVER"); v != "" {
		c.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("SHOPLIST_DB"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SHOPLIST_IMPORT"); v != "" {
		c.Transfer.ImportPath = v
	}
	if v := os.Getenv("SHOPLIST_EXPORT"); v != "" {
		c.Transfer.ExportPath = v
	}
	if v := os.Getenv("SHOPLIST_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SHOPLIST_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	// Same variable the old todo CLI honoured.
	if v := os.Getenv("TODO_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
	if v := os.Getenv("SHOPLIST_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
}

func (c *Config) Validate() error {
	if !slices.Contains(ValidDrivers, c.Storage.Driver) {
		return fmt.Errorf("invalid storage driver: %q (valid: %v)", c.Storage.Driver, ValidDrivers)
	}
	if c.Storage.Driver != DriverMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage path is empty for driver %s", c.Storage.Driver)
	}
	if !slices.Contains(ValidLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q (valid: %v)", c.Logging.Level, ValidLevels)
	}
	if !slices.Contains(ValidFormats, c.Logging.Format) {
		return fmt.Errorf("invalid log format: %q (valid: %v)", c.Logging.Format, ValidFormats)
	}
	if c.UI.Theme != "" && !slices.Contains(ValidThemes, c.UI.Theme) {
		return fmt.Errorf("invalid theme: %q (valid: %v)", c.UI.Theme, ValidThemes)
	}
	return nil
}
