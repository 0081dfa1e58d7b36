package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gebeta-eats/payflow/adapters/store"
	"github.com/gebeta-eats/payflow/ports"
)

func TestMemoryStoreSetGet(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	require.NoError(t, s.Set(ctx, ports.ScopeAttempt, "k", "v", 0))

	val, err := s.Get(ctx, ports.ScopeAttempt, "k")
	require.NoError(t, err)
	require.Equal(t, "v", val)
}

func TestMemoryStoreScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	require.NoError(t, s.Set(ctx, ports.ScopePersistent, "k", "long-lived", 0))
	require.NoError(t, s.Set(ctx, ports.ScopeAttempt, "k", "attempt", 0))

	val, err := s.Get(ctx, ports.ScopePersistent, "k")
	require.NoError(t, err)
	require.Equal(t, "long-lived", val)

	require.NoError(t, s.Delete(ctx, ports.ScopeAttempt, "k"))

	_, err = s.Get(ctx, ports.ScopeAttempt, "k")
	require.ErrorIs(t, err, ports.ErrNotFound)

	val, err = s.Get(ctx, ports.ScopePersistent, "k")
	require.NoError(t, err)
	require.Equal(t, "long-lived", val)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	now := time.Now()
	s.SetNowFunc(func() time.Time { return now })

	require.NoError(t, s.Set(ctx, ports.ScopeAttempt, "k", "v", time.Minute))

	val, err := s.Get(ctx, ports.ScopeAttempt, "k")
	require.NoError(t, err)
	require.Equal(t, "v", val)

	s.SetNowFunc(func() time.Time { return now.Add(2 * time.Minute) })

	_, err = s.Get(ctx, ports.ScopeAttempt, "k")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestMemoryStoreDeleteMissingKey(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	require.NoError(t, s.Delete(ctx, ports.ScopeAttempt, "missing"))
}
