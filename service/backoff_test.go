package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gebeta-eats/payflow/service"
)

func TestBackoffProviderSuggestionWins(t *testing.T) {
	policy := service.DefaultBackoffPolicy()

	assert.Equal(t, 50*time.Millisecond, policy.Delay(1, 50))
	assert.Equal(t, 7*time.Second, policy.Delay(5, 7000))
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	policy := service.BackoffPolicy{
		MaxVerifyAttempts: 10,
		MaxNetworkRetries: 3,
		BaseDelay:         time.Second,
		MaxDelay:          5 * time.Second,
	}

	assert.Equal(t, time.Second, policy.Delay(1, 0))
	assert.Equal(t, 2*time.Second, policy.Delay(2, 0))
	assert.Equal(t, 4*time.Second, policy.Delay(3, 0))
	assert.Equal(t, 5*time.Second, policy.Delay(4, 0))
	assert.Equal(t, 5*time.Second, policy.Delay(9, 0))
}

func TestBackoffGuardsDegenerateAttempt(t *testing.T) {
	policy := service.DefaultBackoffPolicy()

	assert.Equal(t, policy.BaseDelay, policy.Delay(0, 0))
	assert.Equal(t, policy.BaseDelay, policy.Delay(-3, 0))
}
