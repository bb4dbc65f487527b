package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterLocksAfterMaxFailures(t *testing.T) {
	rl := newLoginRateLimiter()

	for i := 0; i < maxFailures-1; i++ {
		rl.recordFailure("0001")
		blocked, _ := rl.check("0001")
		assert.False(t, blocked, "should not lock before maxFailures")
	}

	rl.recordFailure("0001")
	blocked, retryAfter := rl.check("0001")
	assert.True(t, blocked)
	assert.Greater(t, retryAfter.Seconds(), 0.0)
}

func TestRateLimiterSuccessResets(t *testing.T) {
	rl := newLoginRateLimiter()
	for i := 0; i < maxFailures; i++ {
		rl.recordFailure("0001")
	}
	rl.recordSuccess("0001")

	blocked, _ := rl.check("0001")
	assert.False(t, blocked)
}

func TestRateLimiterIsPerUser(t *testing.T) {
	rl := newLoginRateLimiter()
	for i := 0; i < maxFailures; i++ {
		rl.recordFailure("0001")
	}

	blocked, _ := rl.check("0002")
	assert.False(t, blocked)
}
