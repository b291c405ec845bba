// Package transport implements the HTTP pipeline used to talk to the storefront API.
//
// This package contains:
//   - Request/Response: the per-call request descriptor and the raw response
//   - Middleware: ordered (next) => (request) => response wrappers
//   - WithHeaders, WithAuthRefresh, WithRetry, WithRateLimit, WithLogging, WithMetrics
//   - HTTPSender: the base send function over net/http
//   - Client: the assembled chain
package transport

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Request describes a single logical API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is JSON encoded unless it is already a []byte.
	Body any

	// SkipAuthRefresh disables 401 handling, used for the refresh call itself.
	SkipAuthRefresh bool

	attempt     int
	authRetried bool
}

// NewRequest creates a request descriptor with an empty header set.
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
}

// Attempt returns how many network retries have been made for this request.
func (r *Request) Attempt() int {
	return r.attempt
}

// AuthRetried reports whether the request was already resent after a 401.
func (r *Request) AuthRetried() bool {
	return r.authRetried
}

// Clone returns a copy that can be resent without sharing header or query maps.
func (r *Request) Clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if r.Query != nil {
		c.Query = make(url.Values, len(r.Query))
		for k, v := range r.Query {
			c.Query[k] = append([]string(nil), v...)
		}
	}
	return &c
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// SendFunc sends a request and returns the response. A non-nil error means no
// usable response was received; non-2xx statuses are returned as responses.
type SendFunc func(ctx context.Context, req *Request) (*Response, error)

// Middleware wraps a SendFunc.
type Middleware func(next SendFunc) SendFunc

// Chain composes middlewares around base. The first middleware is outermost.
func Chain(base SendFunc, mws ...Middleware) SendFunc {
	send := base
	for i := len(mws) - 1; i >= 0; i-- {
		send = mws[i](send)
	}
	return send
}

// Config holds transport settings.
type Config struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	ClientVersion string        `yaml:"client_version"`
	UserAgent     string        `yaml:"user_agent"`
	Retry         RetryConfig   `yaml:"-"`
	// RateLimit caps physical sends per second; 0 disables it.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// DefaultTimeout is used when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second
