package service

import (
	"context"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/mongo"

	"ikhtibar/internal/model/auth"
	"ikhtibar/internal/pkg/jwt"
	"ikhtibar/internal/pkg/password"
	authRepo "ikhtibar/internal/repository/auth"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*auth.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *auth.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeUserStore) UpdateLastLoginAt(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.Password = hash
	}
	return nil
}

// fakeRefreshStore is an in-memory RefreshTokenStore. Revoke mirrors the
// conditional-update semantics of the mongo repository: it flips
// revoked=false to true for exactly one caller.
type fakeRefreshStore struct {
	mu     sync.Mutex
	tokens map[string]*auth.RefreshToken // keyed by token hash
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{tokens: make(map[string]*auth.RefreshToken)}
}

func (f *fakeRefreshStore) Create(_ context.Context, token *auth.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *token
	f.tokens[token.TokenHash] = &cp
	return nil
}

func (f *fakeRefreshStore) FindByHash(_ context.Context, tokenHash string) (*auth.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[tokenHash]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeRefreshStore) Revoke(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[tokenHash]
	if !ok || t.Revoked {
		return authRepo.ErrAlreadyRevoked
	}
	t.Revoked = true
	return nil
}

func (f *fakeRefreshStore) RevokeAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (f *fakeRefreshStore) DeleteByHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, tokenHash)
	return nil
}

func (f *fakeRefreshStore) liveCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, t := range f.tokens {
		if t.UserID == userID && !t.Revoked {
			n++
		}
	}
	return n
}

func newTestAuthService() (*AuthService, *fakeUserStore, *fakeRefreshStore) {
	users := newFakeUserStore()
	tokens := newFakeRefreshStore()
	manager := jwt.NewManager("test-secret", "ikhtibar", "ikhtibar-api", 15*time.Minute)
	svc := NewAuthService(users, tokens, manager, 7*24*time.Hour)
	return svc, users, tokens
}

func seedUser(users *fakeUserStore, username, pwd string, status auth.UserStatus) *auth.User {
	hash, _ := password.Hash(pwd)
	user := &auth.User{
		ID:       "user-" + username,
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
		Roles:    []string{auth.RoleStudent},
		Status:   status,
	}
	users.users[user.ID] = user
	return user
}

func TestAuthServiceLogin(t *testing.T) {
	Convey("Given an active user", t, func() {
		svc, users, tokens := newTestAuthService()
		seedUser(users, "salma", "correct-horse", auth.UserStatusActive)
		ctx := context.Background()

		Convey("Login with correct credentials issues a token pair", func() {
			result, err := svc.Login(ctx, "salma", "correct-horse")
			So(err, ShouldBeNil)
			So(result.AccessToken, ShouldNotBeEmpty)
			So(result.RefreshToken, ShouldNotBeEmpty)
			So(result.TokenType, ShouldEqual, "Bearer")
			So(tokens.liveCount("user-salma"), ShouldEqual, 1)

			Convey("and the access token validates", func() {
				user, claims, err := svc.ValidateToken(ctx, result.AccessToken)
				So(err, ShouldBeNil)
				So(user.Username, ShouldEqual, "salma")
				So(claims.UserID, ShouldEqual, "user-salma")
			})
		})

		Convey("Login with a wrong password fails without revealing which part was wrong", func() {
			_, err := svc.Login(ctx, "salma", "wrong")
			So(err, ShouldEqual, ErrInvalidCredentials)

			_, err2 := svc.Login(ctx, "nobody", "wrong")
			So(err2, ShouldEqual, ErrInvalidCredentials)
		})
	})

	Convey("Given an inactive user", t, func() {
		svc, users, _ := newTestAuthService()
		seedUser(users, "pending", "pw123456", auth.UserStatusInactive)

		Convey("Login is refused", func() {
			_, err := svc.Login(context.Background(), "pending", "pw123456")
			So(err, ShouldEqual, ErrUserInactive)
		})
	})

	Convey("Given a banned user", t, func() {
		svc, users, _ := newTestAuthService()
		seedUser(users, "banned", "pw123456", auth.UserStatusBanned)

		Convey("Login is refused", func() {
			_, err := svc.Login(context.Background(), "banned", "pw123456")
			So(err, ShouldEqual, ErrUserBanned)
		})
	})
}

func TestAuthServiceRefreshRotation(t *testing.T) {
	Convey("Given a logged-in user", t, func() {
		svc, users, tokens := newTestAuthService()
		seedUser(users, "salma", "correct-horse", auth.UserStatusActive)
		ctx := context.Background()

		login, err := svc.Login(ctx, "salma", "correct-horse")
		So(err, ShouldBeNil)

		Convey("Refresh rotates the token", func() {
			pair, err := svc.Refresh(ctx, login.RefreshToken)
			So(err, ShouldBeNil)
			So(pair.AccessToken, ShouldNotBeEmpty)
			So(pair.RefreshToken, ShouldNotBeEmpty)
			So(pair.RefreshToken, ShouldNotEqual, login.RefreshToken)

			Convey("and exactly one live token remains", func() {
				So(tokens.liveCount("user-salma"), ShouldEqual, 1)
			})

			Convey("and the old token cannot be exchanged a second time", func() {
				_, err := svc.Refresh(ctx, login.RefreshToken)
				So(err, ShouldEqual, ErrRefreshTokenReused)

				Convey("which revokes the whole session chain", func() {
					So(tokens.liveCount("user-salma"), ShouldEqual, 0)
				})
			})
		})

		Convey("Refreshing with a made-up secret fails", func() {
			_, err := svc.Refresh(ctx, "not-a-real-secret")
			So(err, ShouldEqual, ErrInvalidRefreshToken)
		})

		Convey("Refreshing an expired token fails and removes it", func() {
			hash := jwt.HashRefreshSecret(login.RefreshToken)
			tokens.mu.Lock()
			tokens.tokens[hash].ExpiresAt = time.Now().Add(-time.Minute)
			tokens.mu.Unlock()

			_, err := svc.Refresh(ctx, login.RefreshToken)
			So(err, ShouldEqual, ErrExpiredRefreshToken)

			_, findErr := tokens.FindByHash(ctx, hash)
			So(findErr, ShouldNotBeNil)
		})

		Convey("Two concurrent exchanges of the same secret succeed at most once", func() {
			var wg sync.WaitGroup
			errs := make([]error, 2)
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, errs[i] = svc.Refresh(ctx, login.RefreshToken)
				}(i)
			}
			wg.Wait()

			succeeded := 0
			for _, e := range errs {
				if e == nil {
					succeeded++
				}
			}
			So(succeeded, ShouldBeLessThanOrEqualTo, 1)
		})
	})
}

func TestAuthServiceLogout(t *testing.T) {
	Convey("Given a logged-in user", t, func() {
		svc, users, tokens := newTestAuthService()
		seedUser(users, "salma", "correct-horse", auth.UserStatusActive)
		ctx := context.Background()

		login, err := svc.Login(ctx, "salma", "correct-horse")
		So(err, ShouldBeNil)

		Convey("Logout revokes the refresh token", func() {
			So(svc.Logout(ctx, login.RefreshToken), ShouldBeNil)
			So(tokens.liveCount("user-salma"), ShouldEqual, 0)

			Convey("and is idempotent", func() {
				So(svc.Logout(ctx, login.RefreshToken), ShouldBeNil)
			})
		})

		Convey("ChangePassword revokes every live session", func() {
			err := svc.ChangePassword(ctx, "user-salma", "correct-horse", "new-password-1")
			So(err, ShouldBeNil)
			So(tokens.liveCount("user-salma"), ShouldEqual, 0)

			Convey("and the new password logs in", func() {
				_, err := svc.Login(ctx, "salma", "new-password-1")
				So(err, ShouldBeNil)
			})

			Convey("and the old one does not", func() {
				_, err := svc.Login(ctx, "salma", "correct-horse")
				So(err, ShouldEqual, ErrInvalidCredentials)
			})
		})
	})
}

func TestAuthServiceRegister(t *testing.T) {
	Convey("Given an empty user store", t, func() {
		svc, _, _ := newTestAuthService()
		ctx := context.Background()

		Convey("Register creates an inactive student account", func() {
			result, err := svc.Register(ctx, "newbie", "newbie@example.com", "pw123456", "New User")
			So(err, ShouldBeNil)
			So(result.UserID, ShouldNotBeEmpty)
			So(result.Status, ShouldEqual, string(auth.UserStatusInactive))

			Convey("a duplicate username is rejected", func() {
				_, err := svc.Register(ctx, "newbie", "other@example.com", "pw123456", "")
				So(err, ShouldEqual, ErrUserAlreadyExists)
			})

			Convey("a duplicate email is rejected", func() {
				_, err := svc.Register(ctx, "other", "newbie@example.com", "pw123456", "")
				So(err, ShouldEqual, ErrEmailAlreadyExists)
			})
		})
	})
}
