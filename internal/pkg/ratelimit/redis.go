package ratelimit

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const (
	attemptsKeyPrefix = "rl:attempts:"
	lockoutKeyPrefix  = "rl:lockout:"
)

// Redis is a Limiter backed by Redis so the window and lockout state are
// shared across instances.
type Redis struct {
	cfg    Config
	client *redis.Client
}

// NewRedis creates a Redis-backed limiter.
func NewRedis(client *redis.Client, cfg Config) *Redis {
	return &Redis{
		cfg:    cfg,
		client: client,
	}
}

// Allow records one attempt. The counter key carries the window TTL, the
// lockout key the lockout TTL; INCR keeps the count atomic across
// concurrent requests and instances.
func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	lockoutKey := lockoutKeyPrefix + key

	ttl, err := r.client.PTTL(ctx, lockoutKey).Result()
	if err != nil {
		return Decision{}, err
	}
	if ttl > 0 {
		return Decision{Allowed: false, RetryAfter: ttl}, nil
	}

	attemptsKey := attemptsKeyPrefix + key
	n, err := r.client.Incr(ctx, attemptsKey).Result()
	if err != nil {
		return Decision{}, err
	}
	if n == 1 {
		if err := r.client.PExpire(ctx, attemptsKey, r.cfg.Window).Err(); err != nil {
			return Decision{}, err
		}
	}

	if n >= int64(r.cfg.MaxAttempts) {
		// Threshold reached: open the lockout and drop the counter so the
		// window restarts fresh once the lockout elapses.
		if err := r.client.Set(ctx, lockoutKey, 1, r.cfg.Lockout).Err(); err != nil {
			return Decision{}, err
		}
		if err := r.client.Del(ctx, attemptsKey).Err(); err != nil {
			return Decision{}, err
		}
	}

	if n > int64(r.cfg.MaxAttempts) {
		return Decision{Allowed: false, RetryAfter: r.cfg.Lockout}, nil
	}

	return Decision{Allowed: true}, nil
}

// Reset clears all state for the key.
func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, attemptsKeyPrefix+key, lockoutKeyPrefix+key).Err()
}
