package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vietddude/topup/internal/infra/metrics"
	"github.com/vietddude/topup/internal/infra/tokenstore"
	"github.com/vietddude/topup/internal/infra/transport"
)

// Defaults for SessionKeeper.
const (
	DefaultCheckInterval = time.Minute
	DefaultRefreshLead   = 2 * time.Minute
)

// SessionKeeper refreshes the access token shortly before it expires so a
// long-running process does not hit a 401 on its next call.
type SessionKeeper struct {
	store     transport.TokenStore
	refresher transport.Refresher
	interval  time.Duration
	lead      time.Duration
	now       func() time.Time
}

// NewSessionKeeper creates a keeper. Zero durations use the defaults.
func NewSessionKeeper(store transport.TokenStore, refresher transport.Refresher, interval, lead time.Duration) *SessionKeeper {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	if lead <= 0 {
		lead = DefaultRefreshLead
	}
	return &SessionKeeper{
		store:     store,
		refresher: refresher,
		interval:  interval,
		lead:      lead,
		now:       time.Now,
	}
}

// Start runs the check loop until ctx is done.
func (k *SessionKeeper) Start(ctx context.Context) {
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	// Initial check
	k.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.Check(ctx)
		}
	}
}

// Check refreshes the session when the access token expires within the lead
// time. It reports whether a refresh happened.
func (k *SessionKeeper) Check(ctx context.Context) bool {
	claims, err := tokenstore.Inspect(ctx, k.store)
	if errors.Is(err, tokenstore.ErrNotLoggedIn) {
		return false
	}
	if err != nil {
		slog.Warn("[SessionKeeper] cannot read access token", "error", err)
		return false
	}
	if claims.ExpiresAt.IsZero() || claims.ExpiresAt.Sub(k.now()) > k.lead {
		return false
	}

	if _, err := transport.RefreshTokens(ctx, k.store, k.refresher); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("failure").Inc()
		slog.Error("[SessionKeeper] proactive refresh failed", "error", err)
		return false
	}
	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	slog.Info("[SessionKeeper] access token refreshed", "expired_at", claims.ExpiresAt)
	return true
}
