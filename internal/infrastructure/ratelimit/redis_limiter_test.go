package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisLimiter_Cooldown(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, Config{Prefix: "otp:send", Limit: 5, Window: time.Hour, Cooldown: time.Minute})
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "+15551234567"))

	err := limiter.Allow(ctx, "+15551234567")
	require.ErrorIs(t, err, domain.ErrRateLimited)
	var rle *domain.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, time.Minute, rle.RetryAfter)

	// Other subjects are independent
	require.NoError(t, limiter.Allow(ctx, "+15557654321"))

	mr.FastForward(61 * time.Second)
	assert.NoError(t, limiter.Allow(ctx, "+15551234567"))
}

func TestRedisLimiter_WindowLimit(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, Config{Prefix: "otp:redeem", Limit: 3, Window: 10 * time.Minute})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(ctx, "+15551234567"), "attempt %d", i+1)
	}

	err := limiter.Allow(ctx, "+15551234567")
	var rle *domain.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, 10*time.Minute, rle.RetryAfter)
	assert.True(t, domain.IsTransient(err))

	mr.FastForward(10 * time.Minute)
	assert.NoError(t, limiter.Allow(ctx, "+15551234567"))
}

func TestRedisLimiter_Reset(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisLimiter(client, Config{Prefix: "otp:redeem", Limit: 1, Window: time.Hour, Cooldown: time.Minute})
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "+15551234567"))
	require.ErrorIs(t, limiter.Allow(ctx, "+15551234567"), domain.ErrRateLimited)

	require.NoError(t, limiter.Reset(ctx, "+15551234567"))
	assert.NoError(t, limiter.Allow(ctx, "+15551234567"))
}

func TestRedisLimiter_StorageDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, Config{Prefix: "otp:send", Limit: 1, Window: time.Hour})
	mr.Close()

	err := limiter.Allow(context.Background(), "+15551234567")
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestRedisLimiter_ReleaseKeepsWindowCount(t *testing.T) {
	client, _ := setupTestRedis(t)
	limiter := NewRedisLimiter(client, Config{Prefix: "otp:send", Limit: 2, Window: time.Hour, Cooldown: time.Minute})
	ctx := context.Background()

	require.NoError(t, limiter.Allow(ctx, "+15551234567"))
	require.NoError(t, limiter.Release(ctx, "+15551234567"))
	require.NoError(t, limiter.Allow(ctx, "+15551234567"))
	require.NoError(t, limiter.Release(ctx, "+15551234567"))

	// Released calls still count against the window
	err := limiter.Allow(ctx, "+15551234567")
	var rle *domain.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, time.Hour, rle.RetryAfter)
}

func TestRedisLimiter_CounterWithoutExpiryIsRepaired(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, Config{Prefix: "otp:redeem", Limit: 5, Window: 10 * time.Minute})
	ctx := context.Background()

	// Left behind by an increment whose EXPIRE never ran
	require.NoError(t, mr.Set("otp:redeem:count:+15551234567", "5"))
	assert.Zero(t, mr.TTL("otp:redeem:count:+15551234567"))

	err := limiter.Allow(ctx, "+15551234567")
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 10*time.Minute, mr.TTL("otp:redeem:count:+15551234567"))

	mr.FastForward(10 * time.Minute)
	assert.NoError(t, limiter.Allow(ctx, "+15551234567"))
}

func TestRedisLimiter_FirstCallSetsWindow(t *testing.T) {
	client, mr := setupTestRedis(t)
	limiter := NewRedisLimiter(client, Config{Prefix: "otp:send", Limit: 5, Window: time.Hour})

	require.NoError(t, limiter.Allow(context.Background(), "+15551234567"))
	assert.Equal(t, time.Hour, mr.TTL("otp:send:count:+15551234567"))
}
