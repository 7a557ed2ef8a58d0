package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// Keys under which the tokens are persisted.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)

// ErrNotAuthenticated is returned by Token when no access token is held.
var ErrNotAuthenticated = errors.New("not logged in")

// Store is the persistence a session needs.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Session holds the auth tokens shared by every outgoing request. It has a
// single writer (login, logout, a 401) and many readers; the last write wins.
// Session satisfies oauth2.TokenSource so it can back an oauth2.Transport.
type Session struct {
	mu      sync.RWMutex
	store   Store
	access  string
	refresh string
}

var _ oauth2.TokenSource = (*Session)(nil)

// New returns an empty session persisting to store. A nil store keeps the
// tokens in memory only.
func New(store Store) *Session {
	return &Session{store: store}
}

// Load returns a session primed with any tokens persisted in store.
func Load(ctx context.Context, store Store) (*Session, error) {
	s := New(store)
	if store == nil {
		return s, nil
	}

	access, err := store.Get(ctx, AccessTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}
	refresh, err := store.Get(ctx, RefreshTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}

	s.access = access
	s.refresh = refresh
	return s, nil
}

// Token implements oauth2.TokenSource.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.access == "" {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{
		AccessToken:  s.access,
		TokenType:    "Bearer",
		RefreshToken: s.refresh,
	}, nil
}

// Authenticated reports whether an access token is held.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != ""
}

// Set stores a new token pair after a successful login.
func (s *Session) Set(ctx context.Context, access, refresh string) error {
	if s.store != nil {
		err := s.store.SetMany(ctx, map[string]string{
			AccessTokenKey:  access,
			RefreshTokenKey: refresh,
		})
		if err != nil {
			return fmt.Errorf("persist tokens: %w", err)
		}
	}

	s.mu.Lock()
	s.access = access
	s.refresh = refresh
	s.mu.Unlock()
	return nil
}

// Clear forgets both tokens. The in-memory copy is always cleared, even
// when removing the persisted tokens fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.access = ""
	s.refresh = ""
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(ctx, AccessTokenKey, RefreshTokenKey); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
