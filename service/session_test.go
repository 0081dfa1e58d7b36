package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gebeta-eats/payflow/adapters/store"
	"github.com/gebeta-eats/payflow/service"
)

func newSessions(t *testing.T) *service.PaymentSessionStore {
	t.Helper()
	return service.NewPaymentSessionStore(store.NewMemoryStore(), zerolog.Nop())
}

func TestBeginProducesDistinctTxRefs(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)

	first, err := sessions.Begin(ctx, "o1", "100.00")
	require.NoError(t, err)

	second, err := sessions.Begin(ctx, "o1", "100.00")
	require.NoError(t, err)

	require.NotEqual(t, first.TxRef, second.TxRef)
	require.NotEqual(t, first.AttemptID, second.AttemptID)
	require.Contains(t, first.TxRef, "order-o1-")
	require.Contains(t, second.TxRef, "order-o1-")
}

func TestCurrentReflectsLatestBegin(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)

	current, err := sessions.Current(ctx)
	require.NoError(t, err)
	require.Nil(t, current)

	started, err := sessions.Begin(ctx, "o2", "42.50")
	require.NoError(t, err)

	current, err = sessions.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	require.Equal(t, started.TxRef, current.TxRef)
	require.Equal(t, "o2", current.OrderID)
	require.Equal(t, "42.50", current.Amount)
}

func TestEndDestroysSession(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)

	_, err := sessions.Begin(ctx, "o3", "10.00")
	require.NoError(t, err)

	require.NoError(t, sessions.End(ctx))

	current, err := sessions.Current(ctx)
	require.NoError(t, err)
	require.Nil(t, current)

	// Ending again is a no-op.
	require.NoError(t, sessions.End(ctx))
}

func TestErrorCache(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)

	require.Empty(t, sessions.CachedError(ctx))

	sessions.CacheError(ctx, "provider timeout")
	require.Equal(t, "provider timeout", sessions.CachedError(ctx))
}

func TestPendingVerificationMarker(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)

	require.Empty(t, sessions.PendingVerification(ctx))

	sessions.MarkPendingVerification(ctx, "o4")
	require.Equal(t, "o4", sessions.PendingVerification(ctx))
}

func TestReturnPathMemo(t *testing.T) {
	ctx := context.Background()
	sessions := newSessions(t)

	require.Empty(t, sessions.ReturnPath(ctx))

	sessions.RememberReturnPath(ctx, "/checkout")
	require.Equal(t, "/checkout", sessions.ReturnPath(ctx))
}
