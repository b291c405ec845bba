package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vietddude/topup/internal/infra/api"
	"github.com/vietddude/topup/internal/infra/cache"
	"github.com/vietddude/topup/internal/infra/tokenstore"
	"github.com/vietddude/topup/internal/infra/transport"
)

const (
	probeTimeout     = 2 * time.Second
	slowProbe        = time.Second
	minCheckInterval = 10 * time.Second
)

// Checker checks one component.
type Checker interface {
	Check(ctx context.Context) ComponentHealth
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) ComponentHealth

func (f CheckerFunc) Check(ctx context.Context) ComponentHealth { return f(ctx) }

// Monitor aggregates health status from various system components.
type Monitor struct {
	checkers   []Checker
	now        func() time.Time
	lastCheck  time.Time
	lastReport HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(checkers ...Checker) *Monitor {
	return &Monitor{checkers: checkers, now: time.Now}
}

// CheckHealth runs every checker. Results are reused for 10s so a busy
// health endpoint does not hammer the backend.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.now().Sub(m.lastCheck) < minCheckInterval && m.lastReport.Components != nil {
		return m.lastReport
	}

	report := HealthReport{SystemStatus: StatusHealthy, Components: make(map[string]ComponentHealth)}
	for _, c := range m.checkers {
		h := c.Check(ctx)
		report.Components[h.Name] = h
		report.SystemStatus = worst(report.SystemStatus, h.Status)
	}

	m.lastCheck = m.now()
	m.lastReport = report
	return report
}

// BackendChecker probes GET /health on the admin API.
func BackendChecker(client api.Doer) Checker {
	return CheckerFunc(func(ctx context.Context) ComponentHealth {
		h := ComponentHealth{Name: "backend", Status: StatusHealthy}

		ctx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		req := transport.NewRequest(http.MethodGet, "/health")
		req.SkipAuthRefresh = true

		start := time.Now()
		resp, err := client.Do(ctx, req)
		h.LatencyMs = time.Since(start).Milliseconds()

		switch {
		case err != nil:
			h.Status = StatusCritical
			h.Error = err.Error()
		case resp.StatusCode >= 500:
			h.Status = StatusCritical
			h.Error = fmt.Sprintf("status %d", resp.StatusCode)
		case time.Duration(h.LatencyMs)*time.Millisecond > slowProbe:
			h.Status = StatusDegraded
			h.Detail = "slow response"
		}
		return h
	})
}

// SessionChecker reports whether a usable access token is stored. An
// expired or missing token degrades health; it does not make it critical.
func SessionChecker(store transport.TokenStore) Checker {
	return CheckerFunc(func(ctx context.Context) ComponentHealth {
		h := ComponentHealth{Name: "session", Status: StatusHealthy}
		claims, err := tokenstore.Inspect(ctx, store)
		switch {
		case errors.Is(err, tokenstore.ErrNotLoggedIn):
			h.Status = StatusDegraded
			h.Detail = "not logged in"
		case err != nil:
			h.Status = StatusDegraded
			h.Error = err.Error()
		case claims.Expired(time.Now()):
			h.Status = StatusDegraded
			h.Detail = "access token expired"
		default:
			h.Detail = "subject " + claims.Subject
		}
		return h
	})
}

// CacheChecker reports the number of cached entries.
func CacheChecker(c *cache.Cache) Checker {
	return CheckerFunc(func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Name: "cache", Status: StatusHealthy, Detail: fmt.Sprintf("%d entries", c.Len())}
	})
}
