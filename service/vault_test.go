package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gebeta-eats/payflow/adapters/store"
	"github.com/gebeta-eats/payflow/core"
	"github.com/gebeta-eats/payflow/ports"
	"github.com/gebeta-eats/payflow/service"
)

// unavailableStore fails the construction probe.
type unavailableStore struct{}

func (unavailableStore) Set(ctx context.Context, scope ports.Scope, key, value string, ttl time.Duration) error {
	return errors.New("storage disabled")
}

func (unavailableStore) Get(ctx context.Context, scope ports.Scope, key string) (string, error) {
	return "", errors.New("storage disabled")
}

func (unavailableStore) Delete(ctx context.Context, scope ports.Scope, key string) error {
	return errors.New("storage disabled")
}

func (unavailableStore) Ping(ctx context.Context) error {
	return errors.New("storage disabled")
}

func newVault(t *testing.T) (*service.TokenVault, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	return service.NewTokenVault(context.Background(), mem, zerolog.Nop()), mem
}

func TestVaultObfuscationRoundTrip(t *testing.T) {
	ctx := context.Background()
	vault, mem := newVault(t)

	tokens := []string{
		"simple-token",
		"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.payload.signature",
		"with spaces and !@#$%^&*()_+-=[]{}|;':\",./<>?",
		"qz-81",
	}

	for _, token := range tokens {
		require.NoError(t, vault.Store(ctx, token, service.StoreOptions{Persistent: true, Obfuscate: true}))

		// The raw record must not contain the plaintext token.
		raw, err := mem.Get(ctx, ports.ScopePersistent, "auth_token")
		require.NoError(t, err)
		require.NotContains(t, raw, token)

		cred, err := vault.Retrieve(ctx, service.RetrieveOptions{Persistent: true, ValidateExpiry: true})
		require.NoError(t, err)
		require.NotNil(t, cred)
		require.Equal(t, token, cred.Token)
		require.False(t, cred.Obfuscated)
	}
}

func TestVaultStorePlain(t *testing.T) {
	ctx := context.Background()
	vault, _ := newVault(t)

	require.NoError(t, vault.Store(ctx, "plain-token", service.StoreOptions{Persistent: true}))

	cred, err := vault.Retrieve(ctx, service.RetrieveOptions{Persistent: true})
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, "plain-token", cred.Token)
}

func TestVaultExpiredCredentialPurgedOnRead(t *testing.T) {
	ctx := context.Background()
	vault, mem := newVault(t)

	now := time.Now()
	vault.SetNowFunc(func() time.Time { return now })

	require.NoError(t, vault.Store(ctx, "short-lived", service.StoreOptions{Persistent: true, Obfuscate: true, TTL: time.Minute}))

	vault.SetNowFunc(func() time.Time { return now.Add(2 * time.Minute) })

	cred, err := vault.Retrieve(ctx, service.RetrieveOptions{Persistent: true, ValidateExpiry: true})
	require.NoError(t, err)
	require.Nil(t, cred)

	// Lazy eviction removed the record itself.
	_, err = mem.Get(ctx, ports.ScopePersistent, "auth_token")
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestVaultAuthStatus(t *testing.T) {
	ctx := context.Background()
	vault, _ := newVault(t)

	status := vault.AuthStatus(ctx)
	require.False(t, status.Authenticated)
	require.Equal(t, core.ReasonNoToken, status.Reason)

	require.NoError(t, vault.Store(ctx, "active", service.StoreOptions{Persistent: true, Obfuscate: true}))
	status = vault.AuthStatus(ctx)
	require.True(t, status.Authenticated)
	require.Equal(t, "active", status.Token)

	now := time.Now()
	vault.SetNowFunc(func() time.Time { return now })
	require.NoError(t, vault.Store(ctx, "stale", service.StoreOptions{Persistent: true, TTL: time.Minute}))
	vault.SetNowFunc(func() time.Time { return now.Add(2 * time.Minute) })

	status = vault.AuthStatus(ctx)
	require.False(t, status.Authenticated)
	require.Equal(t, core.ReasonExpired, status.Reason)
}

func TestVaultClearAll(t *testing.T) {
	ctx := context.Background()
	vault, _ := newVault(t)

	require.NoError(t, vault.Store(ctx, "token-a", service.StoreOptions{Persistent: true, Obfuscate: true}))
	require.NoError(t, vault.Store(ctx, "token-b", service.StoreOptions{Persistent: false, Obfuscate: true}))
	require.NoError(t, vault.StoreSnapshot(ctx, "token-c"))

	require.NoError(t, vault.Clear(ctx, service.ClearOptions{ClearAll: true}))

	cred, err := vault.Retrieve(ctx, service.RetrieveOptions{Persistent: true})
	require.NoError(t, err)
	require.Nil(t, cred)

	cred, err = vault.Retrieve(ctx, service.RetrieveOptions{Persistent: false})
	require.NoError(t, err)
	require.Nil(t, cred)

	snap, err := vault.RetrieveSnapshot(ctx)
	require.NoError(t, err)
	require.Nil(t, snap)
}

func TestVaultSnapshotLifetime(t *testing.T) {
	ctx := context.Background()
	vault, _ := newVault(t)

	now := time.Now()
	vault.SetNowFunc(func() time.Time { return now })

	require.NoError(t, vault.StoreSnapshot(ctx, "pre-payment"))

	snap, err := vault.RetrieveSnapshot(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Equal(t, "pre-payment", snap.Token)

	// Past the fixed 30-minute lifetime the snapshot is gone.
	vault.SetNowFunc(func() time.Time { return now.Add(31 * time.Minute) })

	snap, err = vault.RetrieveSnapshot(ctx)
	require.NoError(t, err)
	require.Nil(t, snap)
}

func TestVaultDegradesWhenStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	vault := service.NewTokenVault(ctx, unavailableStore{}, zerolog.Nop())

	require.False(t, vault.Available())
	require.NoError(t, vault.Store(ctx, "token", service.StoreOptions{Persistent: true}))

	cred, err := vault.Retrieve(ctx, service.RetrieveOptions{Persistent: true})
	require.NoError(t, err)
	require.Nil(t, cred)

	status := vault.AuthStatus(ctx)
	require.False(t, status.Authenticated)
	require.Equal(t, core.ReasonNoToken, status.Reason)
}
