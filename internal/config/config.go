package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models arvyax.yml.
type Config struct {
	Server struct {
		Listen   string `yaml:"listen"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
	Workspace string `yaml:"workspace"`
	Auth      struct {
		JWTSecret       string `yaml:"jwt_secret"`
		SessionTTLHours int    `yaml:"session_ttl_hours"`
	} `yaml:"auth"`
	Dashboard struct {
		UpcomingWindowDays int `yaml:"upcoming_window_days"`
		AnalyticsDays      int `yaml:"analytics_days"`
	} `yaml:"dashboard"`
	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"redis"`
}

// Default returns the baseline configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Listen = "127.0.0.1:8787"
	cfg.Server.BasePath = "/v1"
	cfg.Workspace = "."
	cfg.Auth.SessionTTLHours = 24
	cfg.Dashboard.UpcomingWindowDays = 3
	cfg.Dashboard.AnalyticsDays = 30
	cfg.Redis.TTLSeconds = 60
	return cfg
}

// Path returns the config file location for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "arvyax.yml")
}

// Load reads and validates config from workspace, falling back to
// defaults when the file is absent.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			cfg.Workspace = workspace
			return cfg, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates a config document.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("config.server.listen is required")
	}
	if c.Server.BasePath == "" || c.Server.BasePath[0] != '/' {
		return fmt.Errorf("config.server.base_path must start with /")
	}
	if c.Auth.SessionTTLHours <= 0 {
		return fmt.Errorf("config.auth.session_ttl_hours must be positive")
	}
	if c.Dashboard.UpcomingWindowDays <= 0 {
		return fmt.Errorf("config.dashboard.upcoming_window_days must be positive")
	}
	if c.Dashboard.AnalyticsDays <= 0 {
		return fmt.Errorf("config.dashboard.analytics_days must be positive")
	}
	if c.Redis.Addr != "" && c.Redis.TTLSeconds <= 0 {
		return fmt.Errorf("config.redis.ttl_seconds must be positive when redis is enabled")
	}
	return nil
}
