package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)

	for i := 0; i < 5; i++ {
		assert.True(t, rl.allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.allow("10.0.0.1"))
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := newRateLimiter(60, time.Second)

	for i := 0; i < 60; i++ {
		rl.allow("10.0.0.1")
	}
	assert.False(t, rl.allow("10.0.0.1"))

	time.Sleep(50 * time.Millisecond)
	assert.True(t, rl.allow("10.0.0.1"))
}
