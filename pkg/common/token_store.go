package common

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Tokens are the two credentials the console persists.
type Tokens struct {
	AccessToken  string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

type TokenStore interface {
	Tokens(ctx context.Context) (Tokens, bool)
	Save(ctx context.Context, t Tokens) error
	Clear(ctx context.Context) error
}

type storeKey struct{}

// WithTokenStore binds a store to ctx; the client prefers it over its default.
func WithTokenStore(ctx context.Context, s TokenStore) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

func tokenStoreFrom(ctx context.Context) TokenStore {
	s, _ := ctx.Value(storeKey{}).(TokenStore)
	return s
}

type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens Tokens
}

func NewMemoryTokenStore(t Tokens) *MemoryTokenStore {
	return &MemoryTokenStore{tokens: t}
}

func (m *MemoryTokenStore) Tokens(context.Context) (Tokens, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens, m.tokens.AccessToken != ""
}

func (m *MemoryTokenStore) Save(_ context.Context, t Tokens) error {
	m.mu.Lock()
	m.tokens = t
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokenStore) Clear(context.Context) error {
	m.mu.Lock()
	m.tokens = Tokens{}
	m.mu.Unlock()
	return nil
}

// FileTokenStore keeps the tokens in a small JSON file, readable only by
// the owner.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (f *FileTokenStore) Tokens(context.Context) (Tokens, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return Tokens{}, false
	}
	var t Tokens
	if err := json.Unmarshal(raw, &t); err != nil {
		return Tokens{}, false
	}
	return t, t.AccessToken != ""
}

func (f *FileTokenStore) Save(_ context.Context, t Tokens) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileTokenStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
