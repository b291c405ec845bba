package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/api"
)

type Resellers struct {
	*api.Resource[domain.Reseller]
}

func NewResellers(client api.Doer) *Resellers {
	return &Resellers{Resource: api.NewResource[domain.Reseller](client, "/resellers")}
}

func (s *Resellers) Approve(ctx context.Context, id string) (domain.Reseller, error) {
	var out domain.Reseller
	err := s.Post(ctx, api.Action(id, "approve"), nil, &out)
	return out, err
}

func (s *Resellers) Suspend(ctx context.Context, id, reason string) (domain.Reseller, error) {
	var out domain.Reseller
	err := s.Post(ctx, api.Action(id, "suspend"), map[string]any{"reason": reason}, &out)
	return out, err
}

// AdjustBalance credits a positive amount or debits a negative one.
func (s *Resellers) AdjustBalance(ctx context.Context, id string, amount decimal.Decimal, note string) (domain.Reseller, error) {
	var out domain.Reseller
	err := s.Post(ctx, api.Action(id, "balance"), domain.BalanceAdjustment{Amount: amount, Note: note}, &out)
	return out, err
}
