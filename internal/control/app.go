// Package control wires configuration into a running admin client: token
// store, transport, services, cache sweeper and health server.
package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/topup/internal/core/batch"
	"github.com/vietddude/topup/internal/core/config"
	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/core/worker"
	"github.com/vietddude/topup/internal/health"
	"github.com/vietddude/topup/internal/infra/cache"
	redisclient "github.com/vietddude/topup/internal/infra/redis"
	"github.com/vietddude/topup/internal/infra/tokenstore"
	"github.com/vietddude/topup/internal/infra/transport"
	"github.com/vietddude/topup/internal/observability"
	"github.com/vietddude/topup/internal/service"
)

// App is the assembled client and its background workers.
type App struct {
	cfg          *config.AppConfig
	Tokens       transport.TokenStore
	Client       *transport.Client
	Cache        *cache.Cache
	Services     *service.Registry
	healthMon    *health.Monitor
	healthServer *health.Server
	keeper       *worker.SessionKeeper
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// Option customizes NewApp.
type Option func(*appOptions)

type appOptions struct {
	tokens    transport.TokenStore
	transport []transport.Option
}

// WithTokenStore overrides the store selected by config.
func WithTokenStore(s transport.TokenStore) Option {
	return func(o *appOptions) { o.tokens = s }
}

// WithTransportOptions passes options through to transport.New.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *appOptions) { o.transport = append(o.transport, opts...) }
}

// NewApp builds the application from configuration.
func NewApp(cfg *config.AppConfig, opts ...Option) (*App, error) {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{cfg: cfg, log: slog.Default().With("component", "app")}

	tokens := o.tokens
	if tokens == nil {
		var err error
		tokens, err = a.openTokenStore()
		if err != nil {
			return nil, err
		}
	}
	a.Tokens = tokens

	session := transport.SessionHandlerFunc(func(ctx context.Context, cause error) {
		a.log.Warn("Session expired, run `topup login` to sign in again", "error", cause)
	})

	topts := []transport.Option{
		transport.WithLogger(slog.Default()),
		transport.WithMiddleware(observability.WithErrorReporting()),
	}
	topts = append(topts, o.transport...)
	a.Client = transport.New(cfg.Transport(), tokens, session, topts...)

	a.Cache = cache.New(cfg.Cache)
	a.Services = service.NewRegistry(a.Client, tokens, a.Cache)

	a.healthMon = health.NewMonitor(
		health.BackendChecker(a.Client),
		health.SessionChecker(tokens),
		health.CacheChecker(a.Cache),
	)
	a.healthServer = health.NewServer(a.healthMon, cfg.Server.Port)
	a.keeper = worker.NewSessionKeeper(tokens, a.Client.Refresher(), cfg.Tokens.CheckInterval, cfg.Tokens.RefreshLead)

	return a, nil
}

func (a *App) openTokenStore() (transport.TokenStore, error) {
	switch a.cfg.Tokens.Store {
	case config.TokenStoreMemory:
		return tokenstore.NewMemory("", ""), nil
	case config.TokenStoreRedis:
		client, err := redisclient.NewClient(a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redisClient = client
		return redisclient.NewTokenStore(client), nil
	default:
		path := a.cfg.Tokens.Path
		if path == "" {
			var err error
			if path, err = tokenstore.DefaultPath(); err != nil {
				return nil, err
			}
		}
		return tokenstore.NewFile(path), nil
	}
}

// Start runs the cache sweeper, the session keeper and the health server.
// It does not block.
func (a *App) Start(ctx context.Context) error {
	go func() {
		a.log.Info("Health server listening", "port", a.cfg.Server.Port)
		if err := a.healthServer.Start(); err != nil {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	go a.Cache.Start(ctx)
	go a.keeper.Start(ctx)

	return nil
}

// Stop shuts down the health server and releases connections.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping app...")

	if err := a.Client.Close(); err != nil {
		a.log.Warn("Failed to close transport", "error", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}

	return a.healthServer.Stop(ctx)
}

// Health runs the health checks once.
func (a *App) Health(ctx context.Context) health.HealthReport {
	return a.healthMon.CheckHealth(ctx)
}

// UpdateOrderStatuses applies one status to many orders through the batch
// manager. Failures carry the index of the id in ids.
func (a *App) UpdateOrderStatuses(ctx context.Context, ids []string, status domain.OrderStatus, note string) (batch.Result[domain.Order], error) {
	if !status.Valid() {
		return batch.Result[domain.Order]{}, fmt.Errorf("invalid order status %q", status)
	}

	m := batch.NewManager[domain.Order](a.cfg.Batch.Size)
	for _, id := range ids {
		m.Add(func(ctx context.Context) (domain.Order, error) {
			return a.Services.Orders.UpdateStatus(ctx, id, status, note)
		})
	}

	res := m.Execute(ctx)
	a.log.Info("Order status batch finished",
		"status", status,
		"succeeded", len(res.Successes),
		"failed", len(res.Failures),
	)
	return res, nil
}
