package jwt

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func newTestManager(expiry time.Duration) *Manager {
	return NewManager("test-secret", "ikhtibar", "ikhtibar-api", expiry)
}

func TestManager_GenerateAndValidate(t *testing.T) {
	Convey("GenerateToken followed by ValidateToken round-trips the claims", t, func() {
		m := newTestManager(15 * time.Minute)

		token, err := m.GenerateToken("user-1", "amal", "amal@example.com", []string{"admin", "reviewer"})
		So(err, ShouldBeNil)
		So(token, ShouldNotBeEmpty)

		claims, err := m.ValidateToken(token)
		So(err, ShouldBeNil)
		So(claims.UserID, ShouldEqual, "user-1")
		So(claims.Username, ShouldEqual, "amal")
		So(claims.Email, ShouldEqual, "amal@example.com")
		So(claims.Roles, ShouldResemble, []string{"admin", "reviewer"})
		So(claims.Subject, ShouldEqual, "user-1")

		So(m.IsValid(token), ShouldBeTrue)
		So(m.IsExpired(token), ShouldBeFalse)
	})
}

func TestManager_ExpiredToken(t *testing.T) {
	Convey("An already-expired token is rejected but detectable", t, func() {
		m := newTestManager(-1 * time.Minute)

		token, err := m.GenerateToken("user-1", "amal", "amal@example.com", nil)
		So(err, ShouldBeNil)

		_, err = m.ValidateToken(token)
		So(err, ShouldEqual, ErrExpiredToken)
		So(m.IsValid(token), ShouldBeFalse)

		Convey("IsExpired sees the expiry without needing a valid state", func() {
			So(m.IsExpired(token), ShouldBeTrue)
		})

		Convey("UserIDFromToken still extracts the subject", func() {
			userID, ok := m.UserIDFromToken(token)
			So(ok, ShouldBeTrue)
			So(userID, ShouldEqual, "user-1")
		})
	})
}

func TestManager_InvalidTokens(t *testing.T) {
	Convey("Malformed or tampered tokens never panic and never validate", t, func() {
		m := newTestManager(15 * time.Minute)

		Convey("garbage input", func() {
			_, err := m.ValidateToken("not-a-token")
			So(err, ShouldEqual, ErrInvalidToken)
			So(m.IsValid("not-a-token"), ShouldBeFalse)
			So(m.IsExpired("not-a-token"), ShouldBeFalse)

			_, ok := m.UserIDFromToken("not-a-token")
			So(ok, ShouldBeFalse)
		})

		Convey("empty input", func() {
			So(m.IsValid(""), ShouldBeFalse)

			_, ok := m.UserIDFromToken("")
			So(ok, ShouldBeFalse)
		})

		Convey("token signed with a different secret", func() {
			other := NewManager("other-secret", "ikhtibar", "ikhtibar-api", 15*time.Minute)
			token, err := other.GenerateToken("user-1", "amal", "amal@example.com", nil)
			So(err, ShouldBeNil)

			_, err = m.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("token with the wrong issuer", func() {
			other := NewManager("test-secret", "someone-else", "ikhtibar-api", 15*time.Minute)
			token, err := other.GenerateToken("user-1", "amal", "amal@example.com", nil)
			So(err, ShouldBeNil)

			_, err = m.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})

		Convey("token with the wrong audience", func() {
			other := NewManager("test-secret", "ikhtibar", "someone-else", 15*time.Minute)
			token, err := other.GenerateToken("user-1", "amal", "amal@example.com", nil)
			So(err, ShouldBeNil)

			_, err = m.ValidateToken(token)
			So(err, ShouldEqual, ErrInvalidToken)
		})
	})
}

func TestGenerateRefreshSecret(t *testing.T) {
	Convey("Refresh secrets are long, hex and unique", t, func() {
		a := GenerateRefreshSecret()
		b := GenerateRefreshSecret()

		So(len(a), ShouldEqual, 64)
		So(len(b), ShouldEqual, 64)
		So(a, ShouldNotEqual, b)

		Convey("and hashing is deterministic but one-way distinct from the secret", func() {
			So(HashRefreshSecret(a), ShouldEqual, HashRefreshSecret(a))
			So(HashRefreshSecret(a), ShouldNotEqual, a)
			So(HashRefreshSecret(a), ShouldNotEqual, HashRefreshSecret(b))
		})
	})
}
