package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type memStore struct {
	access, refresh string
	cleared         bool
}

func (m *memStore) AccessToken(ctx context.Context) (string, error)  { return m.access, nil }
func (m *memStore) RefreshToken(ctx context.Context) (string, error) { return m.refresh, nil }
func (m *memStore) SetTokens(ctx context.Context, a, r string) error {
	m.access, m.refresh = a, r
	return nil
}
func (m *memStore) Clear(ctx context.Context) error {
	m.access, m.refresh, m.cleared = "", "", true
	return nil
}

type sessionRecorder struct {
	calls int
	cause error
}

func (s *sessionRecorder) SessionExpired(ctx context.Context, cause error) {
	s.calls++
	s.cause = cause
}

// newAPI returns a server that accepts only "Bearer fresh" on /users and
// answers /auth/refresh with refreshStatus.
func newAPI(t *testing.T, refreshStatus int, userCalls, refreshCalls *int32, seen *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			atomic.AddInt32(refreshCalls, 1)
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["refresh_token"] != "refresh-1" {
				t.Errorf("expected refresh_token refresh-1, got %q", body["refresh_token"])
			}
			if refreshStatus != http.StatusOK {
				w.WriteHeader(refreshStatus)
				_, _ = w.Write([]byte(`{"error":"invalid refresh token"}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "fresh",
				"refresh_token": "refresh-2",
				"token_type":    "Bearer",
				"expires_in":    900,
			})
		case "/users":
			atomic.AddInt32(userCalls, 1)
			*seen = append(*seen, r.Header.Get("Authorization"))
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"token expired"}`))
				return
			}
			_, _ = w.Write([]byte(`{"data":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestAuthRefresh_RetriesOnceWithNewToken(t *testing.T) {
	var userCalls, refreshCalls int32
	var seen []string
	server := newAPI(t, http.StatusOK, &userCalls, &refreshCalls, &seen)
	defer server.Close()

	store := &memStore{access: "stale", refresh: "refresh-1"}
	session := &sessionRecorder{}
	client := New(Config{BaseURL: server.URL, Timeout: 5 * time.Second}, store, session)
	defer client.Close()

	resp, err := client.Do(context.Background(), NewRequest(http.MethodGet, "/users"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after refresh, got %d", resp.StatusCode)
	}
	if userCalls != 2 {
		t.Errorf("expected 2 /users calls, got %d", userCalls)
	}
	if refreshCalls != 1 {
		t.Errorf("expected 1 refresh call, got %d", refreshCalls)
	}
	if len(seen) != 2 || seen[0] != "Bearer stale" || seen[1] != "Bearer fresh" {
		t.Errorf("unexpected authorization headers: %v", seen)
	}
	if store.access != "fresh" || store.refresh != "refresh-2" {
		t.Errorf("store not updated: %+v", store)
	}
	if session.calls != 0 {
		t.Errorf("session handler should not be called, got %d", session.calls)
	}
}

func TestAuthRefresh_FailureClearsTokens(t *testing.T) {
	var userCalls, refreshCalls int32
	var seen []string
	server := newAPI(t, http.StatusUnauthorized, &userCalls, &refreshCalls, &seen)
	defer server.Close()

	store := &memStore{access: "stale", refresh: "refresh-1"}
	session := &sessionRecorder{}
	client := New(Config{BaseURL: server.URL}, store, session)
	defer client.Close()

	_, err := client.Do(context.Background(), NewRequest(http.MethodGet, "/users"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if !store.cleared || store.access != "" || store.refresh != "" {
		t.Errorf("expected tokens cleared, got %+v", store)
	}
	if session.calls != 1 {
		t.Errorf("expected session handler once, got %d", session.calls)
	}
	if userCalls != 1 {
		t.Errorf("original request must not be resent, got %d calls", userCalls)
	}
}

func TestAuthRefresh_NoRefreshToken(t *testing.T) {
	base := func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{StatusCode: http.StatusUnauthorized}, nil
	}
	store := &memStore{access: "stale"}
	session := &sessionRecorder{}
	refresher := refresherFunc(func(ctx context.Context, token string) (Tokens, error) {
		t.Error("refresher must not be called without a refresh token")
		return Tokens{}, nil
	})
	send := Chain(base, WithAuthRefresh(store, refresher, session))

	_, err := send(context.Background(), NewRequest(http.MethodGet, "/orders"))
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("expected ErrNoRefreshToken, got %v", err)
	}
	if session.calls != 1 || !store.cleared {
		t.Errorf("expected sign-out, session=%d cleared=%v", session.calls, store.cleared)
	}
}

func TestAuthRefresh_SecondUnauthorizedIsFinal(t *testing.T) {
	sends := 0
	base := func(ctx context.Context, req *Request) (*Response, error) {
		sends++
		return &Response{StatusCode: http.StatusUnauthorized}, nil
	}
	refreshes := 0
	refresher := refresherFunc(func(ctx context.Context, token string) (Tokens, error) {
		refreshes++
		return Tokens{AccessToken: "fresh"}, nil
	})
	store := &memStore{access: "stale", refresh: "r"}
	send := Chain(base, WithAuthRefresh(store, refresher, nil))

	resp, err := send(context.Background(), NewRequest(http.MethodGet, "/users"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected final 401, got %d", resp.StatusCode)
	}
	if sends != 2 || refreshes != 1 {
		t.Errorf("expected 2 sends and 1 refresh, got %d and %d", sends, refreshes)
	}
	if store.refresh != "r" {
		t.Errorf("refresh token should be kept when not rotated, got %q", store.refresh)
	}
}

func TestAuthRefresh_NetworkErrorNotTreatedAsAuth(t *testing.T) {
	base := func(ctx context.Context, req *Request) (*Response, error) {
		return nil, &NetworkError{Err: errors.New("timeout")}
	}
	refresher := refresherFunc(func(ctx context.Context, token string) (Tokens, error) {
		t.Error("refresher must not be called on network errors")
		return Tokens{}, nil
	})
	send := Chain(base, WithAuthRefresh(&memStore{refresh: "r"}, refresher, nil))

	if _, err := send(context.Background(), NewRequest(http.MethodGet, "/users")); !IsNetworkError(err) {
		t.Fatalf("expected network error, got %v", err)
	}
}

type refresherFunc func(ctx context.Context, token string) (Tokens, error)

func (f refresherFunc) Refresh(ctx context.Context, token string) (Tokens, error) { return f(ctx, token) }

func TestTokens_UnmarshalEnvelope(t *testing.T) {
	var tokens Tokens
	raw := `{"data":{"accessToken":"a","refreshToken":"b"}}`
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens.AccessToken != "a" || tokens.RefreshToken != "b" {
		t.Errorf("unexpected tokens: %+v", tokens)
	}
}

func TestAuthRefresh_ResendHasFullRetryBudget(t *testing.T) {
	// Three network failures exhaust the first send's retries before the 401;
	// the resend after refresh must survive three more.
	var calls int
	base := func(ctx context.Context, req *Request) (*Response, error) {
		calls++
		switch {
		case calls <= 3:
			return nil, &NetworkError{Err: errors.New("reset")}
		case calls == 4:
			return &Response{StatusCode: http.StatusUnauthorized}, nil
		case calls <= 7:
			return nil, &NetworkError{Err: errors.New("reset")}
		}
		return &Response{StatusCode: http.StatusOK}, nil
	}
	refresher := refresherFunc(func(ctx context.Context, token string) (Tokens, error) {
		return Tokens{AccessToken: "fresh"}, nil
	})
	noSleep := func(ctx context.Context, d time.Duration) error { return nil }
	cfg := RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond}
	send := Chain(base,
		WithAuthRefresh(&memStore{access: "stale", refresh: "r"}, refresher, nil),
		WithRetry(cfg, noSleep),
	)

	resp, err := send(context.Background(), NewRequest(http.MethodGet, "/users"))
	if err != nil {
		t.Fatalf("expected success after refresh, got %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if calls != 8 {
		t.Errorf("expected 8 physical sends, got %d", calls)
	}
}
