package ratelimit

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestLimiter(cfg Config) (*Memory, *time.Time) {
	m := NewMemory(cfg)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemory_LockoutStateMachine(t *testing.T) {
	cfg := Config{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		Lockout:     30 * time.Minute,
	}
	ctx := context.Background()
	key := "203.0.113.7:/api/v1/auth/login"

	Convey("Attempts accumulate inside the window and trip the lockout", t, func() {
		m, now := newTestLimiter(cfg)

		Convey("the first MaxAttempts requests are allowed", func() {
			for i := 0; i < cfg.MaxAttempts; i++ {
				d, err := m.Allow(ctx, key)
				So(err, ShouldBeNil)
				So(d.Allowed, ShouldBeTrue)
			}

			Convey("the next request is rejected with the full lockout as retry hint", func() {
				d, err := m.Allow(ctx, key)
				So(err, ShouldBeNil)
				So(d.Allowed, ShouldBeFalse)
				So(d.RetryAfter, ShouldEqual, 30*time.Minute)
			})

			Convey("the rejection persists for the whole lockout", func() {
				*now = now.Add(29 * time.Minute)
				d, err := m.Allow(ctx, key)
				So(err, ShouldBeNil)
				So(d.Allowed, ShouldBeFalse)
				So(d.RetryAfter, ShouldEqual, time.Minute)
			})

			Convey("after the lockout elapses the counter restarts at 1", func() {
				*now = now.Add(31 * time.Minute)
				d, err := m.Allow(ctx, key)
				So(err, ShouldBeNil)
				So(d.Allowed, ShouldBeTrue)

				// Four more before tripping again proves the count restarted.
				for i := 0; i < cfg.MaxAttempts-1; i++ {
					d, err = m.Allow(ctx, key)
					So(err, ShouldBeNil)
					So(d.Allowed, ShouldBeTrue)
				}
				d, err = m.Allow(ctx, key)
				So(err, ShouldBeNil)
				So(d.Allowed, ShouldBeFalse)
			})
		})
	})
}

func TestMemory_WindowExpiry(t *testing.T) {
	cfg := Config{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		Lockout:     30 * time.Minute,
	}
	ctx := context.Background()
	key := "203.0.113.7:/api/v1/auth/login"

	Convey("A window that expires below the threshold restarts cleanly", t, func() {
		m, now := newTestLimiter(cfg)

		for i := 0; i < cfg.MaxAttempts-1; i++ {
			d, err := m.Allow(ctx, key)
			So(err, ShouldBeNil)
			So(d.Allowed, ShouldBeTrue)
		}

		*now = now.Add(16 * time.Minute)

		// The window restarted, so five fresh attempts fit again.
		for i := 0; i < cfg.MaxAttempts; i++ {
			d, err := m.Allow(ctx, key)
			So(err, ShouldBeNil)
			So(d.Allowed, ShouldBeTrue)
		}

		d, err := m.Allow(ctx, key)
		So(err, ShouldBeNil)
		So(d.Allowed, ShouldBeFalse)
	})
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	cfg := Config{
		MaxAttempts: 2,
		Window:      time.Minute,
		Lockout:     time.Minute,
	}
	ctx := context.Background()

	Convey("Locking out one key leaves the others untouched", t, func() {
		m, _ := newTestLimiter(cfg)

		for i := 0; i < 3; i++ {
			_, _ = m.Allow(ctx, "a:/login")
		}
		d, err := m.Allow(ctx, "a:/login")
		So(err, ShouldBeNil)
		So(d.Allowed, ShouldBeFalse)

		d, err = m.Allow(ctx, "b:/login")
		So(err, ShouldBeNil)
		So(d.Allowed, ShouldBeTrue)
	})
}

func TestMemory_Reset(t *testing.T) {
	cfg := Config{
		MaxAttempts: 2,
		Window:      time.Minute,
		Lockout:     time.Minute,
	}
	ctx := context.Background()

	Convey("Reset clears a lockout", t, func() {
		m, _ := newTestLimiter(cfg)

		for i := 0; i < 3; i++ {
			_, _ = m.Allow(ctx, "a:/login")
		}
		d, _ := m.Allow(ctx, "a:/login")
		So(d.Allowed, ShouldBeFalse)

		So(m.Reset(ctx, "a:/login"), ShouldBeNil)

		d, err := m.Allow(ctx, "a:/login")
		So(err, ShouldBeNil)
		So(d.Allowed, ShouldBeTrue)
	})
}
