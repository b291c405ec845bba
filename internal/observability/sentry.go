// Package observability reports errors to Sentry.
package observability

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/vietddude/topup/internal/infra/transport"
)

// Init configures the Sentry client. An empty dsn disables reporting.
func Init(dsn, environment, release string, sampleRate float64) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		SampleRate:       sampleRate,
		AttachStacktrace: true,
	})
}

func Flush() {
	sentry.Flush(2 * time.Second)
}

// Capture reports err with the given tags. It is a no-op when Init was not
// called with a DSN.
func Capture(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// WithErrorReporting is a transport middleware that reports network
// failures and 5xx responses. Session expiry is expected and not reported.
func WithErrorReporting() transport.Middleware {
	return func(next transport.SendFunc) transport.SendFunc {
		return func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
			resp, err := next(ctx, req)
			switch {
			case err != nil && !errors.Is(err, transport.ErrSessionExpired) && !errors.Is(err, context.Canceled):
				Capture(err, map[string]string{"method": req.Method, "path": req.Path})
			case err == nil && resp.StatusCode >= 500:
				sentry.WithScope(func(scope *sentry.Scope) {
					scope.SetTags(map[string]string{"method": req.Method, "path": req.Path})
					scope.SetExtra("status", resp.StatusCode)
					scope.SetExtra("request_id", req.Header.Get(transport.HeaderRequestID))
					sentry.CaptureMessage("admin api server error")
				})
			}
			return resp, err
		}
	}
}
