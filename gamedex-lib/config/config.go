package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration.
type Config struct {
	DBPath         string  `yaml:"db_path"`
	BlobDir        string  `yaml:"blob_dir"`
	SteamGridDBKey string  `yaml:"steamgriddb_key"`
	SteamAPIKey    string  `yaml:"steam_api_key"`
	HTTPTimeoutSec int     `yaml:"http_timeout_seconds"`
	Port           string  `yaml:"port"`
	Workers        int     `yaml:"workers"`
	Logging        Logging `yaml:"logging"`
}

// Logging configures log output.
type Logging struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		DBPath:         "gamedex.db",
		BlobDir:        "blobs",
		HTTPTimeoutSec: 30,
		Port:           "8080",
		Workers:        4,
		Logging:        Logging{Format: "text", Level: "info"},
	}
}

// configPaths returns the list of paths to search for config file.
func configPaths() []string {
	paths := []string{
		".gamedex.yaml",
		".gamedex.yml",
	}

	// Check home config dir
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "gamedex", "config.yaml"),
			filepath.Join(home, ".config", "gamedex", "config.yml"),
			filepath.Join(home, ".gamedex.yaml"),
		)
	}

	return paths
}

// Load loads configuration from file or returns defaults.
// Priority: env GAMEDEX_CONFIG > search paths > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Check env for explicit config path
	if envPath := os.Getenv("GAMEDEX_CONFIG"); envPath != "" {
		if err := cfg.loadFromFile(envPath); err != nil {
			return nil, err
		}
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	// Search for config file
	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFromFile(path); err != nil {
				return nil, err
			}
			break
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvOverrides() {
	if dbPath := os.Getenv("GAMEDEX_DB"); dbPath != "" {
		c.DBPath = dbPath
	}
	if blobDir := os.Getenv("GAMEDEX_BLOB_DIR"); blobDir != "" {
		c.BlobDir = blobDir
	}
	if key := os.Getenv("STEAMGRIDDB_KEY"); key != "" {
		c.SteamGridDBKey = key
	}
	if key := os.Getenv("STEAM_API_KEY"); key != "" {
		c.SteamAPIKey = key
	}
	if port := os.Getenv("GAMEDEX_PORT"); port != "" {
		c.Port = port
	}
	if workers := os.Getenv("GAMEDEX_WORKERS"); workers != "" {
		if n, err := strconv.Atoi(workers); err == nil && n > 0 {
			c.Workers = n
		}
	}
}

// GetDBPath returns the database path, applying defaults.
func (c *Config) GetDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return "gamedex.db"
}

// GetBlobDir returns the blob storage directory, applying defaults.
func (c *Config) GetBlobDir() string {
	if c.BlobDir != "" {
		return c.BlobDir
	}
	return "blobs"
}

// GetHTTPTimeout returns the timeout applied to every external network
// call. External APIs specify no timeout of their own, so a bound here
// prevents indefinite suspension.
func (c *Config) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeoutSec > 0 {
		return time.Duration(c.HTTPTimeoutSec) * time.Second
	}
	return 30 * time.Second
}

// GetWorkers returns the ingest worker count, applying defaults.
func (c *Config) GetWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return 4
}
