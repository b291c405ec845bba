// Package tokenstore provides local TokenStore implementations and helpers for
// inspecting stored access tokens.
package tokenstore

import (
	"context"
	"sync"
)

// Storage keys for the token pair, shared by every store.
const (
	AccessTokenKey  = "admin_token"
	RefreshTokenKey = "admin_refresh_token"
)

// Memory is an in-process token store.
type Memory struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemory creates a store seeded with the given tokens.
func NewMemory(access, refresh string) *Memory {
	return &Memory{access: access, refresh: refresh}
}

func (m *Memory) AccessToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access, nil
}

func (m *Memory) RefreshToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh, nil
}

func (m *Memory) SetTokens(ctx context.Context, access, refresh string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = access
	m.refresh = refresh
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = ""
	m.refresh = ""
	return nil
}
