package transport

import (
	"context"
	"log/slog"
	"time"
)

// Client is the assembled transport pipeline.
type Client struct {
	send      SendFunc
	sender    *HTTPSender
	store     TokenStore
	refresher Refresher
}

// Option customises a Client.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	sleep     Sleeper
	now       func() time.Time
	refresher Refresher
	base      SendFunc
	extra     []Middleware
}

// WithLogger sets the logger used by the logging middleware.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSleeper overrides the backoff sleeper.
func WithSleeper(s Sleeper) Option {
	return func(o *options) { o.sleep = s }
}

// WithClock overrides the clock used for request headers.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRefresher replaces the HTTP refresher.
func WithRefresher(r Refresher) Option {
	return func(o *options) { o.refresher = r }
}

// WithBaseSender replaces the net/http sender, mostly for tests.
func WithBaseSender(send SendFunc) Option {
	return func(o *options) { o.base = send }
}

// WithMiddleware appends middlewares between the metrics and auth layers.
func WithMiddleware(mws ...Middleware) Option {
	return func(o *options) { o.extra = append(o.extra, mws...) }
}

// New builds the pipeline:
//
//	logging -> metrics -> [extra] -> auth refresh -> headers -> network retry -> [rate limit] -> HTTP
func New(cfg Config, store TokenStore, session SessionHandler, opts ...Option) *Client {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	c := &Client{store: store}
	base := o.base
	if base == nil {
		c.sender = NewHTTPSender(cfg.BaseURL, cfg.Timeout)
		base = c.sender.Send
	}

	retryCfg := cfg.Retry
	if retryCfg == (RetryConfig{}) {
		retryCfg = DefaultRetryConfig
	}

	headers := WithHeadersAgent(store, cfg.ClientVersion, cfg.UserAgent, o.now)
	retry := WithRetry(retryCfg, o.sleep)

	refresher := o.refresher
	if refresher == nil {
		refresher = NewHTTPRefresher(Chain(base, WithHeadersAgent(nil, cfg.ClientVersion, cfg.UserAgent, o.now), retry), DefaultRefreshPath)
	}

	c.refresher = refresher

	mws := []Middleware{WithLogging(o.logger), WithMetrics()}
	mws = append(mws, o.extra...)
	mws = append(mws, WithAuthRefresh(store, refresher, session), headers, retry)
	if cfg.RateLimit > 0 {
		mws = append(mws, WithRateLimit(cfg.RateLimit, cfg.RateBurst))
	}

	c.send = Chain(base, mws...)
	return c
}

// Do sends req through the pipeline.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	return c.send(ctx, req)
}

// Tokens returns the store backing this client.
func (c *Client) Tokens() TokenStore {
	return c.store
}

// Refresher returns the refresher used after a 401.
func (c *Client) Refresher() Refresher {
	return c.refresher
}

// Close releases idle connections.
func (c *Client) Close() error {
	if c.sender != nil {
		return c.sender.Close()
	}
	return nil
}
