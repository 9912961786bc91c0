// Package config loads the missionctl configuration: a YAML file with an
// optional .env overlay for the values people most often override per
// machine (gateway URL, workspace).
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level missionctl configuration.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Logging   LoggingConfig   `yaml:"logging"`
	Feed      FeedConfig      `yaml:"feed"`
}

// GatewayConfig points at the orchestrator gateway.
type GatewayConfig struct {
	// URL is the WebSocket endpoint (ws:// or wss://).
	URL string `yaml:"url"`
}

// WorkspaceConfig selects the workspace shown on startup.
type WorkspaceConfig struct {
	ID string `yaml:"id"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// FeedConfig controls the watch command's feed output.
type FeedConfig struct {
	// Filter narrows the feed ("all", "comments", "tasks", "status").
	Filter string `yaml:"filter"`
	// Agent narrows the feed to one agent role id.
	Agent string `yaml:"agent"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gateway:   GatewayConfig{URL: "ws://localhost:7180/ws"},
		Workspace: WorkspaceConfig{ID: "default"},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Feed:      FeedConfig{Filter: "all"},
	}
}

// Load reads the config file at path, falling back to defaults when path is
// empty or the file does not exist. A .env file in the working directory and
// MISSIONCTL_* environment variables overlay the file values.
func Load(path string) (*Config, error) {
	// Best-effort: a missing .env is fine.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("config file not found: %s", path)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overlays MISSIONCTL_* variables onto the config.
func applyEnv(cfg *Config) {
	if v := os.Getenv("MISSIONCTL_GATEWAY_URL"); v != "" {
		cfg.Gateway.URL = v
	}
	if v := os.Getenv("MISSIONCTL_WORKSPACE"); v != "" {
		cfg.Workspace.ID = v
	}
	if v := os.Getenv("MISSIONCTL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MISSIONCTL_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
