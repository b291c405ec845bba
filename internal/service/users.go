package service

import (
	"context"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/api"
)

type Users struct {
	*api.Resource[domain.User]
}

func NewUsers(client api.Doer) *Users {
	return &Users{Resource: api.NewResource[domain.User](client, "/users")}
}

// UpdateStatus activates, deactivates or suspends a user.
func (s *Users) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) (domain.User, error) {
	var out domain.User
	err := s.Patch(ctx, api.Action(id, "status"), map[string]any{"status": status}, &out)
	return out, err
}

// ResetPassword triggers a password reset email for the user.
func (s *Users) ResetPassword(ctx context.Context, id string) error {
	return s.Post(ctx, api.Action(id, "reset-password"), nil, nil)
}
