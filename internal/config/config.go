package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the erd configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the erd configuration directory
const ConfigDirName = ".erd"

// Config holds all erd configuration
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	Legacy   LegacyConfig   `yaml:"legacy"`
	Server   ServerConfig   `yaml:"server"`
	Library  LibraryConfig  `yaml:"library"`
}

// DefaultsConfig holds the shape sizes applied when a document omits them
type DefaultsConfig struct {
	EntityWidth        float64 `yaml:"entity_width"`
	EntityHeight       float64 `yaml:"entity_height"`
	RelationshipWidth  float64 `yaml:"relationship_width"`
	RelationshipHeight float64 `yaml:"relationship_height"`
}

// LegacyConfig holds the sizes assumed for shapes the legacy dialect stores
// only a center point for
type LegacyConfig struct {
	EntityWidth        float64 `yaml:"entity_width"`
	EntityHeight       float64 `yaml:"entity_height"`
	RelationshipWidth  float64 `yaml:"relationship_width"`
	RelationshipHeight float64 `yaml:"relationship_height"`
}

// ServerConfig holds configuration for the editor HTTP server
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	AssetDir string `yaml:"asset_dir"`
}

// LibraryConfig holds configuration for the local diagram library
type LibraryConfig struct {
	Path         string `yaml:"path"`
	SnapshotKeep int    `yaml:"snapshot_keep"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .erd/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Merge with defaults
	merged := Merge(loaded, DefaultConfig())

	// Validate the merged config
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .erd directory by walking up from startDir.
// Returns the path to the .erd directory if found.
func FindConfigDir(startDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		// Move to parent directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .erd directory if it doesn't exist.
// Returns the path to the .erd directory.
func EnsureConfigDir(workDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	// Check if it already exists
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	// Create the directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	// Validate default shape sizes (must be positive)
	sizes := []struct {
		name  string
		value float64
	}{
		{"defaults.entity_width", cfg.Defaults.EntityWidth},
		{"defaults.entity_height", cfg.Defaults.EntityHeight},
		{"defaults.relationship_width", cfg.Defaults.RelationshipWidth},
		{"defaults.relationship_height", cfg.Defaults.RelationshipHeight},
		{"legacy.entity_width", cfg.Legacy.EntityWidth},
		{"legacy.entity_height", cfg.Legacy.EntityHeight},
		{"legacy.relationship_width", cfg.Legacy.RelationshipWidth},
		{"legacy.relationship_height", cfg.Legacy.RelationshipHeight},
	}
	for _, s := range sizes {
		if s.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %f",
				ErrInvalidConfig, s.name, s.value)
		}
	}

	// Validate server address (must be non-empty)
	if cfg.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr must not be empty", ErrInvalidConfig)
	}

	// Validate snapshot retention (must be positive)
	if cfg.Library.SnapshotKeep <= 0 {
		return fmt.Errorf("%w: snapshot_keep must be positive, got %d",
			ErrInvalidConfig, cfg.Library.SnapshotKeep)
	}

	return nil
}

// SaveDefault writes the default configuration to .erd/config.yaml in workDir.
// Creates the .erd directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	// Add header comment
	header := "# erd configuration\n# See https://github.com/hargabyte/erd for documentation\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
