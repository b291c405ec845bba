// Package service exposes one typed client per admin API resource.
package service

import (
	"context"
	"net/url"
	"time"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/api"
	"github.com/vietddude/topup/internal/infra/cache"
	"github.com/vietddude/topup/internal/infra/transport"
)

const dateLayout = "2006-01-02"

// Registry groups every service built on one transport client.
type Registry struct {
	Auth      *Auth
	Users     *Users
	Games     *Games
	Products  *Products
	Orders    *Orders
	Resellers *Resellers
	Messages  *Messages
	Analytics *Analytics
}

// NewRegistry wires all services. When c is non-nil, slow-changing reads
// (game categories, dashboard numbers) are served from it.
func NewRegistry(client api.Doer, tokens transport.TokenStore, c *cache.Cache) *Registry {
	return &Registry{
		Auth:      NewAuth(client, tokens),
		Users:     NewUsers(client),
		Games:     NewGames(client, c),
		Products:  NewProducts(client),
		Orders:    NewOrders(client),
		Resellers: NewResellers(client),
		Messages:  NewMessages(client),
		Analytics: NewAnalytics(client, c),
	}
}

func rangeQuery(r domain.DateRange) url.Values {
	q := url.Values{}
	if !r.From.IsZero() {
		q.Set("from", r.From.Format(dateLayout))
	}
	if !r.To.IsZero() {
		q.Set("to", r.To.Format(dateLayout))
	}
	return q
}

func rangeKey(prefix string, r domain.DateRange) string {
	return prefix + ":" + r.From.Format(dateLayout) + ":" + r.To.Format(dateLayout)
}

// cached reads through c when it is set.
func cached[T any](ctx context.Context, c *cache.Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	return cache.GetOrLoad(ctx, c, key, ttl, load)
}
