package transport

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestWithRateLimit(t *testing.T) {
	base := func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{StatusCode: http.StatusOK}, nil
	}
	send := Chain(base, WithRateLimit(20, 1))

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := send(context.Background(), NewRequest(http.MethodGet, "/x")); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}
	// first request uses the burst, the next two wait ~50ms each
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("expected throttling, 3 sends took %v", elapsed)
	}
}

func TestWithRateLimit_ContextCancelled(t *testing.T) {
	base := func(ctx context.Context, req *Request) (*Response, error) {
		return &Response{StatusCode: http.StatusOK}, nil
	}
	send := Chain(base, WithRateLimit(0.1, 1))
	_, _ = send(context.Background(), NewRequest(http.MethodGet, "/x"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := send(ctx, NewRequest(http.MethodGet, "/x")); err == nil {
		t.Error("expected wait to fail when the context ends first")
	}
}
