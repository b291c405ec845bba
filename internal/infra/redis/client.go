package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis connection shared by CLI sessions.
type Client struct {
	rdb    *redis.Client
	prefix string
}

// Config holds Redis connection configuration.
type Config struct {
	URL       string `yaml:"url"`
	Password  string `yaml:"password"`
	KeyPrefix string `yaml:"key_prefix"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb, prefix: cfg.KeyPrefix}, nil
}

// NewClientFrom wraps an existing go-redis client.
func NewClientFrom(rdb *redis.Client, prefix string) *Client {
	return &Client{rdb: rdb, prefix: prefix}
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func (c *Client) key(name string) string {
	return c.prefix + name
}

// Storage keys for the token pair.
const (
	AccessTokenKey  = "admin_token"
	RefreshTokenKey = "admin_refresh_token"
)

// TokenStore keeps the access/refresh pair in Redis so several operator
// processes share one session.
type TokenStore struct {
	client *Client
}

// NewTokenStore creates a Redis-backed token store.
func NewTokenStore(client *Client) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, AccessTokenKey)
}

func (s *TokenStore) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, RefreshTokenKey)
}

// SetTokens writes both keys in one transaction.
func (s *TokenStore) SetTokens(ctx context.Context, access, refresh string) error {
	_, err := s.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.client.key(AccessTokenKey), access, 0)
		if refresh == "" {
			pipe.Del(ctx, s.client.key(RefreshTokenKey))
		} else {
			pipe.Set(ctx, s.client.key(RefreshTokenKey), refresh, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set tokens failed: %w", err)
	}
	return nil
}

// Clear removes both keys.
func (s *TokenStore) Clear(ctx context.Context) error {
	err := s.client.rdb.Del(ctx, s.client.key(AccessTokenKey), s.client.key(RefreshTokenKey)).Err()
	if err != nil {
		return fmt.Errorf("del tokens failed: %w", err)
	}
	return nil
}

func (s *TokenStore) get(ctx context.Context, name string) (string, error) {
	val, err := s.client.rdb.Get(ctx, s.client.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s failed: %w", name, err)
	}
	return val, nil
}
