package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Header names set on every outgoing request.
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	HeaderRequestTime   = "X-Request-Time"
	HeaderClientVersion = "X-Client-Version"
)

// requestTimeLayout is ISO-8601 with millisecond precision in UTC.
const requestTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// WithHeaders attaches the bearer token, a fresh request id, the request time and
// the client version. It runs on every physical send made above it, so a request
// resent after a token refresh picks up the new token.
func WithHeaders(store TokenStore, clientVersion string, now func() time.Time) Middleware {
	return WithHeadersAgent(store, clientVersion, "", now)
}

// WithHeadersAgent is WithHeaders with a User-Agent override.
func WithHeadersAgent(store TokenStore, clientVersion, userAgent string, now func() time.Time) Middleware {
	if now == nil {
		now = time.Now
	}
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if req.Header == nil {
				req.Header = make(map[string][]string)
			}

			if store != nil {
				token, err := store.AccessToken(ctx)
				if err != nil {
					slog.Warn("Failed to read access token", "error", err)
				}
				if token != "" {
					req.Header.Set(HeaderAuthorization, "Bearer "+token)
				} else {
					req.Header.Del(HeaderAuthorization)
				}
			}

			ts := now()
			req.Header.Set(HeaderRequestID, NewRequestID(ts))
			req.Header.Set(HeaderRequestTime, ts.UTC().Format(requestTimeLayout))
			if clientVersion != "" {
				req.Header.Set(HeaderClientVersion, clientVersion)
			}
			if userAgent != "" {
				req.Header.Set("User-Agent", userAgent)
			}
			if req.Header.Get("Accept") == "" {
				req.Header.Set("Accept", "application/json")
			}

			return next(ctx, req)
		}
	}
}

// NewRequestID formats req_<epochms>_<random9> where random9 is nine base36 chars.
func NewRequestID(ts time.Time) string {
	return fmt.Sprintf("req_%d_%s", ts.UnixMilli(), random9())
}

func random9() string {
	id := uuid.New()
	s := strconv.FormatUint(binary.BigEndian.Uint64(id[:8]), 36)
	if len(s) < 9 {
		s = strings.Repeat("0", 9-len(s)) + s
	}
	return s[:9]
}
