package token

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-eats/appkit/internal/kvstore"
)

func newStore(t *testing.T) (*Store, kvstore.Store) {
	t.Helper()
	kv := kvstore.NewMemory()
	return NewStore(kv), kv
}

func TestStore_EmptyByDefault(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, ok, err := s.Access(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SetAndGet(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetAccess(ctx, "acc-1"))
	require.NoError(t, s.SetRefresh(ctx, "ref-1"))

	acc, ok, err := s.Access(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "acc-1", acc)

	ref, ok, err := s.Refresh(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "ref-1", ref)
}

func TestStore_TrimsWhitespace(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetAccess(ctx, "  acc-2\n"))

	acc, ok, err := s.Access(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "acc-2", acc)
}

func TestStore_BlankSetClears(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetAccess(ctx, "acc-3"))
	require.NoError(t, s.SetAccess(ctx, "   "))

	_, ok, err := s.Access(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

// A whitespace-only value written directly to the backend still reads as absent.
func TestStore_WhitespaceValueReadsAsAbsent(t *testing.T) {
	s, kv := newStore(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "ws_access_token", "  \t"))

	_, ok, err := s.Access(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ClearAll(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetAccess(ctx, "acc"))
	require.NoError(t, s.SetRefresh(ctx, "ref"))

	require.NoError(t, s.ClearAll(ctx))

	_, ok, err := s.Access(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ClearAllIdempotent(t *testing.T) {
	s, _ := newStore(t)
	assert.NoError(t, s.ClearAll(context.Background()))
}
