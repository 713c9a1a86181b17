// Package config loads the browsion server's own settings from
// ~/.browsion/config.json, overridable with CLI flags. Grounded on the
// original browsion product's config/schema.rs AppConfig/McpConfig, trimmed
// to what the HTTP front end needs (profile storage itself lives in
// internal/profile, not folded into this struct, matching the original's
// own note that AppConfig.profiles is legacy).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPort is the control plane's default HTTP bind port, matching the
// original's default_mcp_port().
const DefaultPort = 38472

// Config holds the server's persisted settings.
type Config struct {
	BindAddr        string `json:"bind_addr"`
	Port            int    `json:"port"`
	APIKey          string `json:"api_key,omitempty"`
	HeadlessDefault bool   `json:"headless_default"`
	CleanupInterval int    `json:"cleanup_interval_seconds"`
}

const fileName = "config.json"

// Default returns the built-in defaults, used when no config file exists.
func Default() Config {
	return Config{
		BindAddr:        "127.0.0.1",
		Port:            DefaultPort,
		HeadlessDefault: false,
		CleanupInterval: 2,
	}
}

// Load reads the config file under stateDir, returning defaults if it
// does not exist.
func Load(stateDir string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(filepath.Join(stateDir, fileName))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// Save atomically rewrites the config file.
func Save(stateDir string, cfg Config) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	path := filepath.Join(stateDir, fileName)
	tmp, err := os.CreateTemp(stateDir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config file: %w", err)
	}
	return nil
}

// Addr returns the "host:port" string to bind the HTTP server to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.BindAddr, c.Port)
}
