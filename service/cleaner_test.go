package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gebeta-eats/payflow/adapters/store"
	"github.com/gebeta-eats/payflow/service"
)

func TestCleanupErasesPaymentScopedStorage(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	log := zerolog.Nop()

	vault := service.NewTokenVault(ctx, mem, log)
	sessions := service.NewPaymentSessionStore(mem, log)
	cleaner := service.NewSessionCleaner(vault, mem, log)

	require.NoError(t, vault.Store(ctx, "login-token", service.StoreOptions{Persistent: true, Obfuscate: true}))
	require.NoError(t, vault.StoreSnapshot(ctx, "login-token"))
	_, err := sessions.Begin(ctx, "o1", "100.00")
	require.NoError(t, err)
	sessions.CacheError(ctx, "boom")
	sessions.RememberReturnPath(ctx, "/checkout")
	sessions.MarkPendingVerification(ctx, "o1")

	require.NoError(t, cleaner.Cleanup(ctx))

	snap, err := vault.RetrieveSnapshot(ctx)
	require.NoError(t, err)
	require.Nil(t, snap)

	session, err := sessions.Current(ctx)
	require.NoError(t, err)
	require.Nil(t, session)

	require.Empty(t, sessions.CachedError(ctx))
	require.Empty(t, sessions.ReturnPath(ctx))
	require.Empty(t, sessions.PendingVerification(ctx))

	// The long-lived credential survives cleanup.
	status := vault.AuthStatus(ctx)
	require.True(t, status.Authenticated)
	require.Equal(t, "login-token", status.Token)
}

func TestCleanupIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	log := zerolog.Nop()

	vault := service.NewTokenVault(ctx, mem, log)
	cleaner := service.NewSessionCleaner(vault, mem, log)

	// Nothing stored: still no error.
	require.NoError(t, cleaner.Cleanup(ctx))
	require.NoError(t, cleaner.Cleanup(ctx))
}
