package service

import (
	"context"
	"time"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/api"
	"github.com/vietddude/topup/internal/infra/cache"
)

const categoriesTTL = 30 * time.Minute

type Games struct {
	*api.Resource[domain.Game]
	cache *cache.Cache
}

func NewGames(client api.Doer, c *cache.Cache) *Games {
	return &Games{Resource: api.NewResource[domain.Game](client, "/games"), cache: c}
}

func (s *Games) ToggleActive(ctx context.Context, id string, active bool) (domain.Game, error) {
	var out domain.Game
	err := s.Patch(ctx, api.Action(id, "toggle"), map[string]any{"isActive": active}, &out)
	return out, err
}

// Categories lists the distinct game categories.
func (s *Games) Categories(ctx context.Context) ([]string, error) {
	return cached(ctx, s.cache, "games:categories", categoriesTTL, func(ctx context.Context) ([]string, error) {
		var out []string
		err := s.Get(ctx, "categories", nil, &out)
		return out, err
	})
}
