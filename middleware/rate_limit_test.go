package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("user-1")
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, remaining := rl.Allow("user-1")
	assert.False(t, allowed)
	assert.Zero(t, remaining)
}

func TestRateLimiterRemainingCountsDown(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	_, remaining := rl.Allow("user-1")
	assert.Equal(t, 2, remaining)
	_, remaining = rl.Allow("user-1")
	assert.Equal(t, 1, remaining)
	_, remaining = rl.Allow("user-1")
	assert.Equal(t, 0, remaining)
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	allowed, _ := rl.Allow("user-1")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("user-1")
	assert.False(t, allowed)

	allowed, _ = rl.Allow("user-2")
	assert.True(t, allowed, "another client keeps its own allowance")
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter(1, 10*time.Millisecond)

	allowed, _ := rl.Allow("user-1")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("user-1")
	assert.False(t, allowed)

	time.Sleep(20 * time.Millisecond)

	allowed, _ = rl.Allow("user-1")
	assert.True(t, allowed, "allowance resets after the window passes")
}
