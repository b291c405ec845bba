package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/tokenstore"
	"github.com/vietddude/topup/internal/infra/transport"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newClient(t *testing.T, handler http.HandlerFunc) (*transport.Client, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := transport.New(
		transport.Config{BaseURL: server.URL},
		tokenstore.NewMemory("tok", "ref"),
		nil,
	)
	return client, func() {
		client.Close()
		server.Close()
	}
}

func TestResource_GetPaginated(t *testing.T) {
	client, done := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/games" {
			t.Errorf("expected path /games, got %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "5" || q.Get("search") != "genshin" || q.Get("category") != "rpg" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"g1","name":"Genshin"}],"pagination":{"page":2,"limit":5,"total":6,"totalPages":2}}`))
	})
	defer done()

	res := NewResource[item](client, "games")
	page, err := res.GetPaginated(context.Background(), ListParams{
		Page:    2,
		Limit:   5,
		Search:  "genshin",
		Filters: map[string]string{"category": "rpg"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.Page[item]{
		Data:       []item{{ID: "g1", Name: "Genshin"}},
		Pagination: domain.Pagination{Page: 2, Limit: 5, Total: 6, TotalPages: 2},
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("page mismatch (-want +got):\n%s", diff)
	}
	if page.HasNext() {
		t.Error("expected last page")
	}
}

func TestResource_GetByIDUnwrapsData(t *testing.T) {
	client, done := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/users/u%201" {
			t.Errorf("expected escaped id, got %s", r.URL.EscapedPath())
		}
		_, _ = w.Write([]byte(`{"data":{"id":"u 1","name":"Ann"},"message":"ok"}`))
	})
	defer done()

	got, err := NewResource[item](client, "/users").GetByID(context.Background(), "u 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "u 1" || got.Name != "Ann" {
		t.Errorf("unexpected item: %+v", got)
	}
}

func TestResource_CreateSendsJSON(t *testing.T) {
	client, done := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token: %q", r.Header.Get("Authorization"))
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "p1", "name": body["name"]})
	})
	defer done()

	got, err := NewResource[item](client, "/products").Create(context.Background(), map[string]string{"name": "100 Gems"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "100 Gems" {
		t.Errorf("unexpected item: %+v", got)
	}
}

func TestResource_BulkDelete(t *testing.T) {
	client, done := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/orders/bulk" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			IDs []string `json:"ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if diff := cmp.Diff([]string{"a", "b"}, body.IDs); diff != "" {
			t.Errorf("ids mismatch (-want +got):\n%s", diff)
		}
		w.WriteHeader(http.StatusNoContent)
	})
	defer done()

	if err := NewResource[item](client, "/orders").BulkDelete(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResource_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   APIError
	}{
		{
			name:   "full envelope",
			status: http.StatusUnprocessableEntity,
			body:   `{"message":"Stock cannot be negative","code":"INVALID_STOCK","details":{"field":"stock"}}`,
			want: APIError{
				Message: "Stock cannot be negative",
				Status:  422,
				Code:    "INVALID_STOCK",
				Details: map[string]any{"field": "stock"},
			},
		},
		{
			name:   "error key",
			status: http.StatusNotFound,
			body:   `{"error":"product not found"}`,
			want:   APIError{Message: "product not found", Status: 404},
		},
		{
			name:   "no envelope",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			want:   APIError{Message: "request failed with status code 502 (Bad Gateway)", Status: 502},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, done := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			defer done()

			_, err := NewResource[item](client, "/products").GetByID(context.Background(), "p1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T %v", err, err)
			}
			if diff := cmp.Diff(tt.want, *apiErr, cmp.AllowUnexported(APIError{})); diff != "" {
				t.Errorf("error mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type doerFunc func(ctx context.Context, req *transport.Request) (*transport.Response, error)

func (f doerFunc) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	return f(ctx, req)
}

func TestResource_TransportErrorFallsBackToMessage(t *testing.T) {
	netErr := &transport.NetworkError{Method: "GET", URL: "/users", Err: errors.New("dial tcp: connection refused")}
	doer := doerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		return nil, netErr
	})

	_, err := NewResource[item](doer, "/users").GetByID(context.Background(), "1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != 0 || apiErr.Message != netErr.Error() {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
	if !transport.IsNetworkError(err) {
		t.Error("APIError should unwrap to the NetworkError")
	}
}

func TestResource_SessionExpiredIsUnauthorized(t *testing.T) {
	doer := doerFunc(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		return nil, &transport.SessionExpiredError{Cause: transport.ErrNoRefreshToken}
	})

	err := NewResource[item](doer, "/users").DeleteByID(context.Background(), "1")
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if !errors.Is(err, transport.ErrNoRefreshToken) {
		t.Errorf("expected cause to be preserved, got %v", err)
	}
}

func TestListParams_Query(t *testing.T) {
	q := ListParams{Page: 1, SortBy: "createdAt", SortOrder: "desc", Filters: map[string]string{"status": "", "gameId": "g1"}}.Query()
	if got := q.Encode(); got != "gameId=g1&page=1&sortBy=createdAt&sortOrder=desc" {
		t.Errorf("unexpected query: %s", got)
	}
}
