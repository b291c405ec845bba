package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vietddude/topup/internal/infra/transport"
)

// Claims is what the client can read from an access token without the
// signing secret.
type Claims struct {
	Subject   string
	Type      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is past its exp claim at now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ErrNotLoggedIn is returned when the store holds no access token.
var ErrNotLoggedIn = errors.New("not logged in")

// ParseClaims decodes an access token without verifying its signature. The
// backend remains the authority; this is for status display only.
func ParseClaims(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("parse access token: %w", err)
	}

	var out Claims
	out.Subject, _ = claims.GetSubject()
	out.Type, _ = claims["typ"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	return out, nil
}

// Inspect reads the stored access token and returns its claims.
func Inspect(ctx context.Context, store transport.TokenStore) (Claims, error) {
	token, err := store.AccessToken(ctx)
	if err != nil {
		return Claims{}, err
	}
	if token == "" {
		return Claims{}, ErrNotLoggedIn
	}
	return ParseClaims(token)
}
