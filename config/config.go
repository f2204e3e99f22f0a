// ABOUTME: Application configuration from env vars plus a persisted JSON file
// ABOUTME: Env wins over file, file wins over defaults
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	// AppName names the XDG data directory.
	AppName = "fieldfolio"

	// ConfigFileName is where persisted overrides live.
	ConfigFileName = "config.json"
)

// Config holds the connection and storage settings for a session.
type Config struct {
	// BaseURL is the remote API root, e.g. https://api.fieldfolio.dev
	BaseURL string `json:"baseUrl,omitempty" env:"BASE_URL"`

	// AnonKey is the anonymous API key used when no session token exists.
	AnonKey string `json:"anonKey,omitempty" env:"ANON_KEY"`

	// Token is an explicit session bearer token, usually injected by the
	// environment rather than persisted.
	Token string `json:"-" env:"TOKEN"`

	// AccountID namespaces the local replica.
	AccountID string `json:"accountId,omitempty" env:"ACCOUNT_ID"`

	// DataDir overrides the XDG default for the local replica store.
	DataDir string `json:"dataDir,omitempty" env:"DATA_DIR"`

	// RequestTimeout bounds each remote request.
	RequestTimeout time.Duration `json:"requestTimeout,omitempty" env:"REQUEST_TIMEOUT"`
}

// Default returns the config used when nothing is set.
func Default() *Config {
	return &Config{
		BaseURL:        "http://localhost:8787",
		RequestTimeout: 30 * time.Second,
	}
}

// dataDir returns the XDG data directory, creating it if needed.
func dataDir() (string, error) {
	dir := filepath.Join(xdg.DataHome, AppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// configPath returns the path to the persisted config file.
func configPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load assembles the effective config: defaults, then the persisted file,
// then FIELDFOLIO_-prefixed environment variables. A .env file in the
// working directory is read first so local development needs no exports.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path, err := configPath(); err == nil {
		if data, err := os.ReadFile(path); err == nil {
			// Invalid persisted config falls back to defaults.
			_ = json.Unmarshal(data, cfg)
		}
	}

	if err := env.Parse(cfg, env.Options{Prefix: "FIELDFOLIO_"}); err != nil {
		return nil, err
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	return cfg, nil
}

// Save persists the config to the XDG data directory.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// ReplicaDir resolves where the local replica store lives.
func (c *Config) ReplicaDir() (string, error) {
	if c.DataDir != "" {
		if err := os.MkdirAll(c.DataDir, 0700); err != nil {
			return "", err
		}
		return c.DataDir, nil
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	replica := filepath.Join(dir, "replica")
	if err := os.MkdirAll(replica, 0700); err != nil {
		return "", err
	}
	return replica, nil
}
