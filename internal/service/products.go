package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/api"
)

type Products struct {
	*api.Resource[domain.Product]
}

func NewProducts(client api.Doer) *Products {
	return &Products{Resource: api.NewResource[domain.Product](client, "/products")}
}

// ByGame lists the products sold for one game.
func (s *Products) ByGame(ctx context.Context, gameID string, params api.ListParams) (domain.Page[domain.Product], error) {
	filters := make(map[string]string, len(params.Filters)+1)
	for k, v := range params.Filters {
		filters[k] = v
	}
	filters["gameId"] = gameID
	params.Filters = filters
	return s.GetPaginated(ctx, params)
}

func (s *Products) AdjustStock(ctx context.Context, id string, delta int, reason string) (domain.Product, error) {
	var out domain.Product
	err := s.Post(ctx, api.Action(id, "stock"), domain.StockAdjustment{Delta: delta, Reason: reason}, &out)
	return out, err
}

func (s *Products) UpdatePrice(ctx context.Context, id string, price decimal.Decimal) (domain.Product, error) {
	var out domain.Product
	err := s.Patch(ctx, api.Action(id, "price"), map[string]any{"price": price}, &out)
	return out, err
}
