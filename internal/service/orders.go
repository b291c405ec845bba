package service

import (
	"context"
	"fmt"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/api"
)

type Orders struct {
	*api.Resource[domain.Order]
}

func NewOrders(client api.Doer) *Orders {
	return &Orders{Resource: api.NewResource[domain.Order](client, "/orders")}
}

// UpdateStatus moves an order to status. Unknown statuses are rejected
// before any request is made.
func (s *Orders) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, note string) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("invalid order status %q", status)
	}
	var out domain.Order
	body := map[string]any{"status": status}
	if note != "" {
		body["note"] = note
	}
	err := s.Patch(ctx, api.Action(id, "status"), body, &out)
	return out, err
}

func (s *Orders) Refund(ctx context.Context, id, reason string) (domain.Order, error) {
	var out domain.Order
	err := s.Post(ctx, api.Action(id, "refund"), map[string]any{"reason": reason}, &out)
	return out, err
}

func (s *Orders) Stats(ctx context.Context, r domain.DateRange) (domain.OrderStats, error) {
	var out domain.OrderStats
	err := s.Get(ctx, "stats", rangeQuery(r), &out)
	return out, err
}
