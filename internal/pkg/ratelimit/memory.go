package ratelimit

import (
	"context"
	"sync"
	"time"
)

// entry is the per-key state machine.
type entry struct {
	windowStart time.Time
	attempts    int
	lockedUntil time.Time
}

// Memory is an in-process Limiter. All state is lost on restart and is
// not shared across instances; suitable for single-instance deployments
// only.
type Memory struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewMemory creates an in-process limiter.
func NewMemory(cfg Config) *Memory {
	return &Memory{
		cfg:     cfg,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Allow records one attempt under the lock so the read-update-write of
// the window state is atomic across concurrent requests for the same key.
func (m *Memory) Allow(ctx context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()

	e, ok := m.entries[key]
	if !ok {
		e = &entry{}
		m.entries[key] = e
	}

	// Locked out: reject until the lockout elapses, then start fresh.
	if !e.lockedUntil.IsZero() {
		if now.Before(e.lockedUntil) {
			return Decision{Allowed: false, RetryAfter: e.lockedUntil.Sub(now)}, nil
		}
		*e = entry{}
	}

	// Window expired without reaching the threshold: restart from the
	// offending request.
	if e.attempts > 0 && now.Sub(e.windowStart) > m.cfg.Window {
		*e = entry{}
	}

	if e.attempts == 0 {
		e.windowStart = now
	}
	e.attempts++

	if e.attempts >= m.cfg.MaxAttempts {
		e.lockedUntil = now.Add(m.cfg.Lockout)
	}

	// The attempt that reaches the threshold is still allowed; only the
	// next one is rejected.
	if e.attempts > m.cfg.MaxAttempts {
		return Decision{Allowed: false, RetryAfter: e.lockedUntil.Sub(now)}, nil
	}

	return Decision{Allowed: true}, nil
}

// Reset clears all state for the key.
func (m *Memory) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
