package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/api"
	"github.com/vietddude/topup/internal/infra/transport"
)

// ErrNoTokens is returned when a login response carries no access token.
var ErrNoTokens = errors.New("login response has no access token")

// Auth signs the admin in and out and persists the token pair.
type Auth struct {
	res    *api.Resource[domain.User]
	tokens transport.TokenStore
}

func NewAuth(client api.Doer, tokens transport.TokenStore) *Auth {
	return &Auth{res: api.NewResource[domain.User](client, "/auth"), tokens: tokens}
}

// Login exchanges credentials for a token pair and stores it. A 401 here
// means bad credentials, so the refresh path is skipped.
func (s *Auth) Login(ctx context.Context, username, password string) (domain.User, error) {
	req := s.res.NewRequest(http.MethodPost, "login")
	req.Body = map[string]string{"username": username, "password": password}
	req.SkipAuthRefresh = true

	var raw []byte
	if err := s.res.SendRequest(ctx, req, &raw); err != nil {
		return domain.User{}, err
	}

	var tokens transport.Tokens
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return domain.User{}, fmt.Errorf("decode login response: %w", err)
	}
	if tokens.AccessToken == "" {
		return domain.User{}, ErrNoTokens
	}
	if err := s.tokens.SetTokens(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return domain.User{}, fmt.Errorf("store tokens: %w", err)
	}

	return userOf(raw), nil
}

// Logout revokes the refresh token on the backend and always clears the
// local session, even when the backend call fails.
func (s *Auth) Logout(ctx context.Context) error {
	refresh, err := s.tokens.RefreshToken(ctx)
	if err == nil && refresh != "" {
		req := s.res.NewRequest(http.MethodPost, "logout")
		req.Body = map[string]string{"refresh_token": refresh}
		req.SkipAuthRefresh = true
		if err := s.res.SendRequest(ctx, req, nil); err != nil {
			slog.Warn("Logout request failed", "error", err)
		}
	}
	return s.tokens.Clear(ctx)
}

// Me returns the signed-in admin.
func (s *Auth) Me(ctx context.Context) (domain.User, error) {
	var out domain.User
	err := s.res.Get(ctx, "me", nil, &out)
	return out, err
}

func userOf(raw []byte) domain.User {
	var body struct {
		User domain.User `json:"user"`
		Data *struct {
			User domain.User `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.User{}
	}
	if body.Data != nil {
		return body.Data.User
	}
	return body.User
}
