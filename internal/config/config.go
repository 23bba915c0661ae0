// Package config loads daemon configuration. Deployment concerns come
// from the environment and an optional YAML file; runtime-mutable
// behavior lives in the persisted settings document instead.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults for a local single-user deployment.
const (
	DefaultHost = "127.0.0.1"
	DefaultPort = "8766"
)

// DefaultCORSOrigins admit the browser-extension surfaces.
var DefaultCORSOrigins = []string{"chrome-extension://*", "moz-extension://*"}

// Config holds daemon configuration
type Config struct {
	Host           string   `yaml:"host"`
	Port           string   `yaml:"port"`
	DataDir        string   `yaml:"data_dir"`
	AnkiConnectURL string   `yaml:"anki_connect_url"`
	CORSOrigins    []string `yaml:"cors_origins"`
	RateLimit      string   `yaml:"rate_limit"`
	DebugMode      bool     `yaml:"debug_mode"`
}

// Load builds configuration: defaults, then the YAML file named by
// AMBIENTD_CONFIG when set, then environment variables on top.
func Load() (*Config, error) {
	cfg := &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		CORSOrigins: append([]string(nil), DefaultCORSOrigins...),
	}

	if path := os.Getenv("AMBIENTD_CONFIG"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve data directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".ambientd")
	}

	return cfg, nil
}

// ListenAddr is the host:port the daemon binds.
func (c *Config) ListenAddr() string {
	return c.Host + ":" + c.Port
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Host = getEnv("AMBIENTD_HOST", cfg.Host)
	cfg.Port = getEnv("AMBIENTD_PORT", cfg.Port)
	cfg.DataDir = getEnv("AMBIENTD_DATA_DIR", cfg.DataDir)
	cfg.AnkiConnectURL = getEnv("AMBIENTD_ANKI_URL", cfg.AnkiConnectURL)
	cfg.RateLimit = getEnv("AMBIENTD_RATE_LIMIT", cfg.RateLimit)
	cfg.DebugMode = getEnvBool("AMBIENTD_DEBUG", cfg.DebugMode)

	if origins := os.Getenv("AMBIENTD_CORS_ORIGINS"); origins != "" {
		parts := strings.Split(origins, ",")
		cfg.CORSOrigins = cfg.CORSOrigins[:0]
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, trimmed)
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
