package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
)

// Config describes one throttle
type Config struct {
	Prefix   string        // Key prefix, e.g. "otp:send"
	Limit    int           // Maximum number of calls per window
	Window   time.Duration // Counting window
	Cooldown time.Duration // Minimum gap between calls, zero disables it
}

// RedisLimiter implements domain.Limiter with Redis counters
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
}

// NewRedisLimiter creates a new Redis backed limiter
func NewRedisLimiter(client *redis.Client, cfg Config) *RedisLimiter {
	return &RedisLimiter{client: client, cfg: cfg}
}

func (l *RedisLimiter) cooldownKey(subject string) string {
	return fmt.Sprintf("%s:cd:%s", l.cfg.Prefix, subject)
}

func (l *RedisLimiter) countKey(subject string) string {
	return fmt.Sprintf("%s:count:%s", l.cfg.Prefix, subject)
}

// Allow implements domain.Limiter. Every allowed call counts against the window.
func (l *RedisLimiter) Allow(ctx context.Context, subject string) error {
	if l.cfg.Cooldown > 0 {
		set, err := l.client.SetNX(ctx, l.cooldownKey(subject), 1, l.cfg.Cooldown).Result()
		if err != nil {
			return domain.StorageError("rate limit cooldown", err)
		}
		if !set {
			return l.limited(ctx, l.cooldownKey(subject), l.cfg.Cooldown)
		}
	}

	if l.cfg.Limit <= 0 {
		return nil
	}

	key := l.countKey(subject)
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return domain.StorageError("rate limit count", err)
	}
	count := incr.Val()
	// A counter without expiry (first call, or an earlier EXPIRE that failed) gets the window
	if ttl.Val() < 0 {
		if err := l.client.Expire(ctx, key, l.cfg.Window).Err(); err != nil {
			return domain.StorageError("rate limit expire", err)
		}
	}

	if count > int64(l.cfg.Limit) {
		return l.limited(ctx, key, l.cfg.Window)
	}
	return nil
}

// Reset implements domain.Limiter
func (l *RedisLimiter) Reset(ctx context.Context, subject string) error {
	if err := l.client.Del(ctx, l.countKey(subject), l.cooldownKey(subject)).Err(); err != nil {
		return domain.StorageError("rate limit reset", err)
	}
	return nil
}

// Release clears the cooldown for subject and keeps the window count. It is
// used when the throttled operation failed before taking effect.
func (l *RedisLimiter) Release(ctx context.Context, subject string) error {
	if l.cfg.Cooldown <= 0 {
		return nil
	}
	if err := l.client.Del(ctx, l.cooldownKey(subject)).Err(); err != nil {
		return domain.StorageError("rate limit release", err)
	}
	return nil
}

// limited builds the rate limit error from the remaining TTL of key
func (l *RedisLimiter) limited(ctx context.Context, key string, fallback time.Duration) error {
	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return domain.StorageError("rate limit ttl", err)
	}
	if ttl <= 0 {
		ttl = fallback
	}
	return &domain.RateLimitError{RetryAfter: ttl}
}
