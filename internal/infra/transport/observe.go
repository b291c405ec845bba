package transport

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/vietddude/topup/internal/infra/metrics"
)

// WithLogging logs each logical request with its final status and latency.
func WithLogging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			latency := time.Since(start)

			if err != nil {
				logger.Warn("API request failed",
					"method", req.Method,
					"path", req.Path,
					"duration_ms", latency.Milliseconds(),
					"error", err,
				)
				return resp, err
			}

			level := slog.LevelDebug
			if resp.StatusCode >= 500 {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "API request",
				"method", req.Method,
				"path", req.Path,
				"status", resp.StatusCode,
				"request_id", req.Header.Get(HeaderRequestID),
				"duration_ms", latency.Milliseconds(),
			)
			return resp, nil
		}
	}
}

// WithMetrics records request counts and latency.
func WithMetrics() Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			status := "error"
			if err == nil {
				status = strconv.Itoa(resp.StatusCode)
			}
			metrics.HTTPRequestsTotal.WithLabelValues(req.Method, status).Inc()
			metrics.HTTPLatency.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
