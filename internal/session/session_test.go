package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"hub/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "hub.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestToken_Unauthenticated(t *testing.T) {
	s := New(nil)

	if s.Authenticated() {
		t.Error("new session should not be authenticated")
	}
	if _, err := s.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestSetAndToken(t *testing.T) {
	s := New(nil)
	if err := s.Set(context.Background(), "acc", "ref"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	tok, err := s.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok.AccessToken != "acc" || tok.RefreshToken != "ref" || tok.Type() != "Bearer" {
		t.Errorf("unexpected token %+v", tok)
	}
	if !tok.Valid() {
		t.Error("token without expiry should be valid")
	}
}

func TestLoadPersistedTokens(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := New(store)
	if err := first.Set(ctx, "acc", "ref"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	second, err := Load(ctx, store)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !second.Authenticated() {
		t.Fatal("expected tokens to be loaded from the store")
	}

	if err := second.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	third, _ := Load(ctx, store)
	if third.Authenticated() {
		t.Error("cleared tokens should not be reloaded")
	}
	if val, _ := store.Get(ctx, RefreshTokenKey); val != "" {
		t.Errorf("refresh token should be removed, got %q", val)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) { return "", nil }
func (failingStore) SetMany(context.Context, map[string]string) error {
	return errors.New("disk full")
}
func (failingStore) Delete(context.Context, ...string) error { return errors.New("disk full") }

func TestStoreFailures(t *testing.T) {
	s := New(failingStore{})
	ctx := context.Background()

	if err := s.Set(ctx, "acc", "ref"); err == nil {
		t.Fatal("expected persist error")
	}
	if s.Authenticated() {
		t.Error("failed Set must not leave a token in memory")
	}

	s.access = "acc"
	if err := s.Clear(ctx); err == nil {
		t.Error("expected clear error")
	}
	if s.Authenticated() {
		t.Error("Clear must drop the in-memory token even when the store fails")
	}
}
