// Package token persists the access and refresh token pair used by the
// request pipeline.
package token

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campus-eats/appkit/internal/kvstore"
)

// Storage keys shared with the web front end.
const (
	accessKey  = "ws_access_token"
	refreshKey = "ws_refresh_token"
)

// Store reads and writes the token pair through a kvstore.Store.
// Setting a blank token removes the stored value, so a present token is
// always non-empty.
type Store struct {
	kv kvstore.Store
}

// NewStore creates a token store over the given key-value backend.
func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv}
}

// Access returns the access token and whether one is stored.
func (s *Store) Access(ctx context.Context) (string, bool, error) {
	return s.get(ctx, accessKey)
}

// Refresh returns the refresh token and whether one is stored.
func (s *Store) Refresh(ctx context.Context) (string, bool, error) {
	return s.get(ctx, refreshKey)
}

// SetAccess stores the access token. A blank or whitespace-only token clears
// the slot instead.
func (s *Store) SetAccess(ctx context.Context, tok string) error {
	return s.set(ctx, accessKey, tok)
}

// SetRefresh stores the refresh token, clearing the slot when blank.
func (s *Store) SetRefresh(ctx context.Context, tok string) error {
	return s.set(ctx, refreshKey, tok)
}

// ClearAll removes both tokens. It is called when a refresh cycle fails and
// the session is no longer recoverable.
func (s *Store) ClearAll(ctx context.Context) error {
	errAccess := s.kv.Delete(ctx, accessKey)
	errRefresh := s.kv.Delete(ctx, refreshKey)
	return errors.Join(errAccess, errRefresh)
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}

	v = strings.TrimSpace(v)
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}

func (s *Store) set(ctx context.Context, key, tok string) error {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
		return nil
	}

	if err := s.kv.Set(ctx, key, tok); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
