// Package ratelimit guards authentication endpoints against brute-force
// attempts with a sliding window plus lockout state machine, keyed by
// client IP and endpoint.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single attempt.
type Decision struct {
	// Allowed is false when the key is locked out.
	Allowed bool
	// RetryAfter is the remaining lockout time when Allowed is false.
	RetryAfter time.Duration
}

// Limiter is the attempt store. It is injected into the middleware so the
// in-process implementation can be swapped for a Redis-backed one in
// multi-instance deployments.
type Limiter interface {
	// Allow records one attempt for the key and decides whether it may
	// proceed.
	Allow(ctx context.Context, key string) (Decision, error)

	// Reset clears all state for the key.
	Reset(ctx context.Context, key string) error
}

// Config holds the state-machine parameters.
type Config struct {
	// MaxAttempts within Window before the key transitions to locked-out.
	MaxAttempts int
	// Window is the rolling accumulation window.
	Window time.Duration
	// Lockout is how long a locked-out key is rejected before its window
	// resets.
	Lockout time.Duration
}
