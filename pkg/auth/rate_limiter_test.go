package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter_EnforcesLimit(t *testing.T) {
	limiter := NewSlidingWindowLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "player:1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
	}

	allowed, err := limiter.Allow(ctx, "player:1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestSlidingWindowLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, time.Minute)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "player:1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "player:2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestSlidingWindowLimiter_WindowSlides(t *testing.T) {
	limiter := NewSlidingWindowLimiter(1, 10*time.Millisecond)
	ctx := context.Background()

	allowed, err := limiter.Allow(ctx, "player:1")
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "player:1")
	require.NoError(t, err)
	require.False(t, allowed)

	time.Sleep(15 * time.Millisecond)

	allowed, err = limiter.Allow(ctx, "player:1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestDistributedRateLimiter_NoClientAllows(t *testing.T) {
	limiter := NewDistributedRateLimiter(nil, "table", 1, time.Minute, "SCAN")

	allowed, err := limiter.Allow(context.Background(), "player:1")
	require.NoError(t, err)
	assert.True(t, allowed)
}
