package service

import (
	"context"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/api"
)

type Messages struct {
	*api.Resource[domain.Message]
}

func NewMessages(client api.Doer) *Messages {
	return &Messages{Resource: api.NewResource[domain.Message](client, "/messages")}
}

func (s *Messages) MarkRead(ctx context.Context, id string) error {
	return s.Patch(ctx, api.Action(id, "read"), nil, nil)
}

func (s *Messages) Reply(ctx context.Context, id, body string) (domain.Reply, error) {
	var out domain.Reply
	err := s.Post(ctx, api.Action(id, "reply"), map[string]any{"body": body}, &out)
	return out, err
}

func (s *Messages) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := s.Get(ctx, "unread-count", nil, &out)
	return out.Count, err
}
