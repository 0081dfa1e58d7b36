package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gebeta-eats/payflow/core"
)

func TestPaymentStatusTransient(t *testing.T) {
	assert.True(t, core.StatusPending.Transient())
	assert.True(t, core.StatusProcessing.Transient())

	for _, s := range []core.PaymentStatus{
		core.StatusPaid, core.StatusCompleted, core.StatusFailed,
		core.StatusCancelled, core.StatusError,
	} {
		assert.True(t, s.Terminal(), "expected %s to be terminal", s)
		assert.False(t, s.Transient(), "expected %s not to be transient", s)
	}
}

func TestPaymentStatusSuccess(t *testing.T) {
	assert.True(t, core.StatusPaid.Success())
	assert.True(t, core.StatusCompleted.Success())
	assert.False(t, core.StatusFailed.Success())
	assert.False(t, core.StatusPending.Success())
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, core.StatusPaid, core.ParseStatus("paid"))
	assert.Equal(t, core.StatusProcessing, core.ParseStatus("processing"))
	assert.Equal(t, core.StatusError, core.ParseStatus(""))
	assert.Equal(t, core.StatusError, core.ParseStatus("settled"))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, core.IsRetryable(core.ErrNetwork))
	assert.False(t, core.IsRetryable(core.ErrVerificationFailed))
	assert.False(t, core.IsRetryable(nil))
}
