package transport

import (
	"context"

	"golang.org/x/time/rate"
)

// WithRateLimit holds every physical send until the limiter admits it.
// Placed below the retry layer, retries are throttled too.
func WithRateLimit(requestsPerSecond float64, burst int) Middleware {
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
			return next(ctx, req)
		}
	}
}
