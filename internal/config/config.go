// ABOUTME: Application configuration loaded from YAML with environment overrides.
// ABOUTME: Follows XDG paths for config and data directories.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const appName = "tigercub"

const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

type Config struct {
	// Backend selects the document store: badger, sqlite, or charm.
	Backend string `yaml:"backend"`

	// DataDir holds the local store. Defaults to $XDG_DATA_HOME/tigercub.
	DataDir string `yaml:"data_dir"`

	LogLevel string `yaml:"log_level"`

	// WriteTimeout bounds every store round-trip made by a repository.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// PollInterval refreshes live subscriptions so changes made by other
	// processes show up. Zero disables polling.
	PollInterval time.Duration `yaml:"poll_interval"`

	// Catalog optionally replaces the embedded activity catalog.
	Catalog string `yaml:"catalog"`

	Auth  AuthConfig  `yaml:"auth"`
	Charm CharmConfig `yaml:"charm"`
}

type AuthConfig struct {
	SessionTTL time.Duration `yaml:"session_ttl"`
}

type CharmConfig struct {
	Host           string        `yaml:"host"`
	AutoSync       bool          `yaml:"auto_sync"`
	StaleThreshold time.Duration `yaml:"stale_threshold"`
}

func Default() *Config {
	return &Config{
		Backend:      BackendBadger,
		DataDir:      DefaultDataDir(),
		LogLevel:     "info",
		WriteTimeout: 10 * time.Second,
		Auth: AuthConfig{
			SessionTTL: 30 * 24 * time.Hour,
		},
		Charm: CharmConfig{
			Host:     "charm.2389.dev",
			AutoSync: true,
		},
	}
}

// Dir returns the configuration directory path.
func Dir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName)
}

// Path returns the path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultDataDir returns $XDG_DATA_HOME/tigercub.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, appName)
}

// Load reads the config file at Path, falling back to defaults when it does
// not exist, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFile(Path())
}

func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // config path comes from XDG or the user
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.Catalog = expandPath(cfg.Catalog)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("TIGERCUB_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("TIGERCUB_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("TIGERCUB_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("TIGERCUB_CHARM_HOST"); v != "" {
		c.Charm.Host = v
	}
	if v := os.Getenv("TIGERCUB_CATALOG"); v != "" {
		c.Catalog = v
	}
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendBadger, BackendSQLite, BackendCharm:
	default:
		return fmt.Errorf("unknown backend %q (want %s, %s or %s)", c.Backend, BackendBadger, BackendSQLite, BackendCharm)
	}
	if c.DataDir == "" && c.Backend != BackendCharm {
		return errors.New("data_dir must be set")
	}
	if c.WriteTimeout < 0 || c.PollInterval < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

// BadgerDir is where the badger backend keeps its files.
func (c *Config) BadgerDir() string {
	return filepath.Join(c.DataDir, "badger")
}

// SQLitePath is the database file used by the sqlite backend.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "tigercub.db")
}

// SessionPath is where the signed-in session token is kept.
func (c *Config) SessionPath() string {
	return filepath.Join(Dir(), "session.yaml")
}

// Save writes cfg to path, creating the directory if needed.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
