package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/vietddude/topup/internal/infra/metrics"
)

// RetryConfig defines network retry behavior.
type RetryConfig struct {
	MaxRetries      int           `yaml:"max_retries"`
	BaseDelay       time.Duration `yaml:"base_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
	BackoffMultiple float64       `yaml:"backoff_multiple"`
}

// DefaultRetryConfig retries three times, waiting 1s, 2s and 4s.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:      3,
	BaseDelay:       1 * time.Second,
	MaxDelay:        30 * time.Second,
	BackoffMultiple: 2.0,
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultRetryConfig.BaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultRetryConfig.MaxDelay
	}
	if c.BackoffMultiple <= 0 {
		c.BackoffMultiple = DefaultRetryConfig.BackoffMultiple
	}
	return c
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WithRetry resends a request that received no response, up to MaxRetries times
// with exponential backoff. Any response, whatever its status, is final here.
func WithRetry(config RetryConfig, sleep Sleeper) Middleware {
	config = config.withDefaults()
	if sleep == nil {
		sleep = SleepContext
	}
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			for {
				resp, err := next(ctx, req)
				if err == nil || !IsNetworkError(err) {
					return resp, err
				}
				if ctx.Err() != nil {
					return nil, err
				}
				if req.attempt >= config.MaxRetries {
					if req.attempt == 0 {
						return nil, err
					}
					return nil, fmt.Errorf("failed after %d attempts: %w", req.attempt+1, err)
				}

				req.attempt++
				delay := calculateBackoff(req.attempt, config)
				metrics.RetriesTotal.WithLabelValues("network").Inc()
				slog.Debug("Retrying request after network error",
					"method", req.Method,
					"path", req.Path,
					"attempt", req.attempt,
					"delay", delay,
					"error", err,
				)

				if serr := sleep(ctx, delay); serr != nil {
					return nil, errors.Join(err, serr)
				}
			}
		}
	}
}

// calculateBackoff returns BaseDelay * multiple^(attempt-1), capped at MaxDelay.
func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(config.BaseDelay) * math.Pow(config.BackoffMultiple, float64(attempt-1))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
