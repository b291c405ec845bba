package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/topup/internal/core/batch"
	"github.com/vietddude/topup/internal/infra/cache"
	"github.com/vietddude/topup/internal/infra/transport"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content after expanding environment variables, then
// applies defaults and validates.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	expandedData := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expandedData, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// max_retries: 0 is a valid setting, so presence decides the default.
	var explicit struct {
		Retry struct {
			MaxRetries *int `yaml:"max_retries"`
		} `yaml:"retry"`
	}
	if err := yaml.Unmarshal(expandedData, &explicit); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if explicit.Retry.MaxRetries == nil {
		cfg.Retry.MaxRetries = transport.DefaultRetryConfig.MaxRetries
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.API.ClientVersion == "" {
		c.API.ClientVersion = DefaultClientVersion
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = transport.DefaultRetryConfig.BaseDelay
	}
	if c.Retry.MaxDelay == 0 {
		c.Retry.MaxDelay = transport.DefaultRetryConfig.MaxDelay
	}
	if c.Retry.BackoffMultiple == 0 {
		c.Retry.BackoffMultiple = transport.DefaultRetryConfig.BackoffMultiple
	}
	if c.Cache.DefaultTTL == 0 {
		c.Cache.DefaultTTL = cache.DefaultTTL
	}
	if c.Cache.SweepInterval == 0 {
		c.Cache.SweepInterval = cache.DefaultSweepInterval
	}
	if c.Batch.Size == 0 {
		c.Batch.Size = batch.DefaultSize
	}
	if c.Tokens.Store == "" {
		c.Tokens.Store = TokenStoreFile
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Sentry.SampleRate == 0 {
		c.Sentry.SampleRate = 1.0
	}
}

// Validate reports settings that cannot work.
func (c *AppConfig) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	switch c.Tokens.Store {
	case TokenStoreFile, TokenStoreMemory:
	case TokenStoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis.url is required when tokens.store is redis")
		}
	default:
		return fmt.Errorf("unknown tokens.store %q", c.Tokens.Store)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	return nil
}
