package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vietddude/topup/internal/infra/metrics"
)

// TokenStore holds the persisted access/refresh token pair.
type TokenStore interface {
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetTokens(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
}

// Tokens is the token pair returned by login and refresh.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
}

// UnmarshalJSON accepts both snake_case and camelCase token payloads, bare or
// inside a {"data": ...} envelope.
func (t *Tokens) UnmarshalJSON(data []byte) error {
	var raw struct {
		AccessToken     string          `json:"access_token"`
		RefreshToken    string          `json:"refresh_token"`
		TokenType       string          `json:"token_type"`
		ExpiresIn       int64           `json:"expires_in"`
		Token           string          `json:"token"`
		AccessTokenAlt  string          `json:"accessToken"`
		RefreshTokenAlt string          `json:"refreshToken"`
		Data            json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw.Data) > 0 && raw.Data[0] == '{' {
		return t.UnmarshalJSON(raw.Data)
	}

	t.AccessToken = firstNonEmpty(raw.AccessToken, raw.AccessTokenAlt, raw.Token)
	t.RefreshToken = firstNonEmpty(raw.RefreshToken, raw.RefreshTokenAlt)
	t.TokenType = raw.TokenType
	t.ExpiresIn = raw.ExpiresIn
	return nil
}

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

// SessionHandler is notified when the session cannot be recovered, e.g. to send
// the user back to the login entry point.
type SessionHandler interface {
	SessionExpired(ctx context.Context, cause error)
}

// SessionHandlerFunc adapts a function to SessionHandler.
type SessionHandlerFunc func(ctx context.Context, cause error)

func (f SessionHandlerFunc) SessionExpired(ctx context.Context, cause error) { f(ctx, cause) }

var (
	// ErrNoRefreshToken is returned when a 401 arrives and no refresh token is stored.
	ErrNoRefreshToken = errors.New("no refresh token available")

	// ErrSessionExpired marks failures after which the stored tokens were cleared.
	ErrSessionExpired = errors.New("session expired")
)

// SessionExpiredError carries the refresh failure that ended the session.
type SessionExpiredError struct {
	Cause error
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired: %v", e.Cause)
}

func (e *SessionExpiredError) Unwrap() []error { return []error{ErrSessionExpired, e.Cause} }

// DefaultRefreshPath is the backend endpoint for token refresh.
const DefaultRefreshPath = "/auth/refresh"

// HTTPRefresher posts the refresh token to the backend.
type HTTPRefresher struct {
	send SendFunc
	path string
}

// NewHTTPRefresher uses send for the refresh call. send must not include the
// auth refresh middleware.
func NewHTTPRefresher(send SendFunc, path string) *HTTPRefresher {
	if path == "" {
		path = DefaultRefreshPath
	}
	return &HTTPRefresher{send: send, path: path}
}

// Refresh calls POST /auth/refresh with {"refresh_token": ...}.
func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	req := NewRequest(http.MethodPost, r.path)
	req.Body = map[string]string{"refresh_token": refreshToken}
	req.SkipAuthRefresh = true

	resp, err := r.send(ctx, req)
	if err != nil {
		return Tokens{}, fmt.Errorf("refresh call: %w", err)
	}
	if !resp.OK() {
		return Tokens{}, fmt.Errorf("refresh rejected: http %d: %s", resp.StatusCode, string(resp.Body))
	}

	var tokens Tokens
	if err := json.Unmarshal(resp.Body, &tokens); err != nil {
		return Tokens{}, fmt.Errorf("parse refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		return Tokens{}, errors.New("refresh response has no access token")
	}
	return tokens, nil
}

// WithAuthRefresh performs one refresh-and-resend when a request gets a 401.
// When the refresh cannot happen the stored tokens are cleared, session is
// notified, and the refresh failure is returned.
func WithAuthRefresh(store TokenStore, refresher Refresher, session SessionHandler) Middleware {
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			resp, err := next(ctx, req)
			if err != nil || resp.StatusCode != http.StatusUnauthorized {
				return resp, err
			}
			if req.SkipAuthRefresh || req.authRetried {
				return resp, nil
			}
			req.authRetried = true

			_, rerr := RefreshTokens(ctx, store, refresher)
			if rerr != nil {
				metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
				expired := &SessionExpiredError{Cause: rerr}
				if cerr := store.Clear(ctx); cerr != nil {
					slog.Error("Failed to clear tokens", "error", cerr)
				}
				if session != nil {
					session.SessionExpired(ctx, expired)
				}
				return nil, expired
			}
			metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
			metrics.RetriesTotal.WithLabelValues("auth").Inc()

			// The resend gets its own network retry budget.
			retry := req.Clone()
			retry.attempt = 0
			retry.Header.Del(HeaderAuthorization)
			return next(ctx, retry)
		}
	}
}

// RefreshTokens exchanges the stored refresh token for a new pair and stores
// it. A response without a refresh token keeps the current one.
func RefreshTokens(ctx context.Context, store TokenStore, refresher Refresher) (Tokens, error) {
	refreshToken, err := store.RefreshToken(ctx)
	if err != nil {
		return Tokens{}, fmt.Errorf("read refresh token: %w", err)
	}
	if refreshToken == "" {
		return Tokens{}, ErrNoRefreshToken
	}

	tokens, err := refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return Tokens{}, err
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	if err := store.SetTokens(ctx, tokens.AccessToken, tokens.RefreshToken); err != nil {
		return Tokens{}, fmt.Errorf("store refreshed tokens: %w", err)
	}
	slog.Debug("Access token refreshed")
	return tokens, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
