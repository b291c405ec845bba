package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// File persists the token pair as a small JSON document keyed by
// admin_token / admin_refresh_token.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a file-backed store. The file is created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultPath returns ~/.config/topup/session.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "topup", "session.json"), nil
}

func (f *File) AccessToken(ctx context.Context) (string, error) {
	data, err := f.read()
	if err != nil {
		return "", err
	}
	return data[AccessTokenKey], nil
}

func (f *File) RefreshToken(ctx context.Context) (string, error) {
	data, err := f.read()
	if err != nil {
		return "", err
	}
	return data[RefreshTokenKey], nil
}

func (f *File) SetTokens(ctx context.Context, access, refresh string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	payload := map[string]string{AccessTokenKey: access}
	if refresh != "" {
		payload[RefreshTokenKey] = refresh
	}
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tokens: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write tokens: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (f *File) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (f *File) read() (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}

	data := make(map[string]string)
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return data, nil
}
