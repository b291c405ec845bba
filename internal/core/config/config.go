package config

import (
	"time"

	"github.com/vietddude/topup/internal/infra/cache"
	redisclient "github.com/vietddude/topup/internal/infra/redis"
	"github.com/vietddude/topup/internal/infra/transport"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	API     transport.Config      `yaml:"api"`
	Retry   transport.RetryConfig `yaml:"retry"`
	Cache   cache.Config          `yaml:"cache"`
	Batch   BatchConfig           `yaml:"batch"`
	Tokens  TokensConfig          `yaml:"tokens"`
	Redis   redisclient.Config    `yaml:"redis"`
	Logging LoggingConfig         `yaml:"logging"`
	Server  ServerConfig          `yaml:"server"`
	Sentry  SentryConfig          `yaml:"sentry"`
}

// Transport returns the API settings with the retry section applied.
func (c *AppConfig) Transport() transport.Config {
	cfg := c.API
	cfg.Retry = c.Retry
	return cfg
}

// ServerConfig holds the health/metrics HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

type BatchConfig struct {
	Size int `yaml:"size"`
}

// Token store kinds.
const (
	TokenStoreFile   = "file"
	TokenStoreRedis  = "redis"
	TokenStoreMemory = "memory"
)

// TokensConfig selects where the session token pair is kept.
type TokensConfig struct {
	Store string `yaml:"store"` // file, redis, memory
	Path  string `yaml:"path"`  // file store only; empty uses ~/.config/topup/session.json
	// Proactive refresh while serving; zero values use the worker defaults.
	CheckInterval time.Duration `yaml:"check_interval"`
	RefreshLead   time.Duration `yaml:"refresh_lead"`
}

type SentryConfig struct {
	DSN         string  `yaml:"dsn"`
	Environment string  `yaml:"environment"`
	SampleRate  float64 `yaml:"sample_rate"`
}

// Defaults applied by Load.
const (
	DefaultPort          = 8080
	DefaultClientVersion = "1.0.0"
	DefaultLogLevel      = "info"
	DefaultTimeout       = 30 * time.Second
)
