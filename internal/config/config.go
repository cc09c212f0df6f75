// Package config loads service configuration from the environment, with an
// optional YAML file overlay for non-secret settings.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config holds everything the composition root needs to wire the engine.
type Config struct {
	Adapter  AdapterConfig  `yaml:"adapter"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Ops      OpsConfig      `yaml:"ops"`
	LogLevel string         `yaml:"log_level" env:"LOG_LEVEL"`
}

// AdapterConfig configures the remote adapter client.
type AdapterConfig struct {
	BaseURL        string `yaml:"base_url" env:"ADAPTER_URL"`
	BearerToken    string `yaml:"-" env:"ADAPTER_TOKEN"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"ADAPTER_TIMEOUT_SECONDS"`
}

// Timeout returns the adapter request timeout as a duration.
func (c AdapterConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DatabaseConfig configures the shadow store. An empty DSN selects the
// in-memory store, which loses fallback writes on restart.
type DatabaseConfig struct {
	DSN           string `yaml:"dsn" env:"SHADOW_DATABASE_URL"`
	MigrationsURL string `yaml:"migrations_url" env:"SHADOW_MIGRATIONS_URL"`
}

// RedisConfig configures the scope draft session store. An empty address
// selects the in-memory draft store.
type RedisConfig struct {
	Addr            string `yaml:"addr" env:"REDIS_ADDR"`
	Password        string `yaml:"-" env:"REDIS_PASSWORD"`
	DB              int    `yaml:"db" env:"REDIS_DB"`
	DraftTTLMinutes int    `yaml:"draft_ttl_minutes" env:"DRAFT_TTL_MINUTES"`
}

// DraftTTL returns the draft session TTL as a duration.
func (c RedisConfig) DraftTTL() time.Duration {
	return time.Duration(c.DraftTTLMinutes) * time.Minute
}

// OpsConfig configures the operational HTTP endpoint.
type OpsConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"OPS_LISTEN_ADDR"`
}

// Load reads configuration: the YAML file at path first (when path is
// non-empty), then environment variables on top. Environment wins so secrets
// never need to live in the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Defaults are applied after decoding, not via envdecode default tags:
	// a tag default would overwrite file values whenever the variable is
	// absent from the environment.
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	applyDefaults(&cfg)

	if cfg.Adapter.BaseURL == "" {
		return nil, fmt.Errorf("adapter base URL is required (ADAPTER_URL)")
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Adapter.TimeoutSeconds <= 0 {
		cfg.Adapter.TimeoutSeconds = 30
	}
	if cfg.Database.MigrationsURL == "" {
		cfg.Database.MigrationsURL = "file://migrations"
	}
	if cfg.Redis.DraftTTLMinutes <= 0 {
		cfg.Redis.DraftTTLMinutes = 60
	}
	if cfg.Ops.ListenAddr == "" {
		cfg.Ops.ListenAddr = ":9090"
	}
}
