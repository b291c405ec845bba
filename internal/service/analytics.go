package service

import (
	"context"
	"strconv"
	"time"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/api"
	"github.com/vietddude/topup/internal/infra/cache"
)

const dashboardTTL = time.Minute

// Analytics has no collection of its own; it only reads reports.
type Analytics struct {
	res   *api.Resource[struct{}]
	cache *cache.Cache
}

func NewAnalytics(client api.Doer, c *cache.Cache) *Analytics {
	return &Analytics{res: api.NewResource[struct{}](client, "/analytics"), cache: c}
}

func (s *Analytics) Dashboard(ctx context.Context, r domain.DateRange) (domain.Dashboard, error) {
	return cached(ctx, s.cache, rangeKey("analytics:dashboard", r), dashboardTTL, func(ctx context.Context) (domain.Dashboard, error) {
		var out domain.Dashboard
		err := s.res.Get(ctx, "dashboard", rangeQuery(r), &out)
		return out, err
	})
}

func (s *Analytics) Revenue(ctx context.Context, r domain.DateRange) ([]domain.RevenuePoint, error) {
	var out []domain.RevenuePoint
	err := s.res.Get(ctx, "revenue", rangeQuery(r), &out)
	return out, err
}

func (s *Analytics) TopProducts(ctx context.Context, r domain.DateRange, limit int) ([]domain.TopProduct, error) {
	q := rangeQuery(r)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []domain.TopProduct
	err := s.res.Get(ctx, "top-products", q, &out)
	return out, err
}
