package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/chenterphai/storefront-api/internal/memstore"
	"github.com/chenterphai/storefront-api/internal/model"
	"github.com/chenterphai/storefront-api/internal/utils"
)

type sessionFixture struct {
	svc    *SessionService
	users  *memstore.Users
	tokens *memstore.Tokens
	codec  *utils.TokenCodec
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	users, tokens := memstore.NewUsers(), memstore.NewTokens()
	codec := utils.NewTokenCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	svc := NewSessionService(users, tokens, codec, SessionConfig{BcryptCost: bcrypt.MinCost, RefreshExpiry: "7d"})
	return &sessionFixture{svc: svc, users: users, tokens: tokens, codec: codec}
}

func (f *sessionFixture) signup(t *testing.T, username, email string) *Session {
	t.Helper()
	sess, err := f.svc.Signup(context.Background(), SignupInput{Username: username, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return sess
}

func assertKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, KindOf(err), err.Error())
	var se *Error
	if assert.ErrorAs(t, err, &se) {
		return se
	}
	return &Error{}
}

func TestSignupCreatesUserAndSession(t *testing.T) {
	f := newSessionFixture(t)
	sess := f.signup(t, "alice", "Alice@Example.com")

	assert.NotZero(t, sess.User.ID)
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.Equal(t, model.RoleUser, sess.User.Role)
	assert.Equal(t, model.GenderOther, sess.User.Gender)
	assert.Equal(t, "alice", sess.User.Nickname)
	assert.Equal(t, defaultAvatar, sess.User.Avatar)
	assert.NotEqual(t, "secret1", sess.User.Password)

	claims, err := f.codec.VerifyAccess(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)

	rec, err := f.tokens.FindByValue(context.Background(), sess.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, rec.UserID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), sess.RefreshExpiresAt, time.Minute)
}

func TestSignupValidation(t *testing.T) {
	f := newSessionFixture(t)
	f.signup(t, "alice", "alice@example.com")
	ctx := context.Background()

	cases := []struct {
		name  string
		in    SignupInput
		kind  Kind
		field string
		msg   string
	}{
		{"bad email", SignupInput{Username: "bob", Email: "bob", Password: "secret1"}, KindInvalidInput, "email", ""},
		{"long username", SignupInput{Username: "abcdefghijklmnopqrstu", Email: "b@example.com", Password: "secret1"}, KindInvalidInput, "username", ""},
		{"short password", SignupInput{Username: "bob", Email: "b@example.com", Password: "12345"}, KindInvalidInput, "password", ""},
		{"password over bcrypt limit", SignupInput{Username: "bob", Email: "b@example.com", Password: strings.Repeat("p", 73)}, KindInvalidInput, "password", "Password must be at most 72 bytes."},
		{"self-assigned admin", SignupInput{Username: "bob", Email: "b@example.com", Password: "secret1", Role: model.RoleAdmin}, KindForbidden, "", ""},
		{"taken username", SignupInput{Username: "alice", Email: "b@example.com", Password: "secret1"}, KindConflict, "username", "Username already taken."},
		{"taken email", SignupInput{Username: "bob", Email: "ALICE@example.com", Password: "secret1"}, KindConflict, "email", "Email already taken."},
		{"bad role", SignupInput{Username: "bob", Email: "b@example.com", Password: "secret1", Role: "root"}, KindInvalidInput, "role", "Role is invalid!"},
		{"bad gender", SignupInput{Username: "bob", Email: "b@example.com", Password: "secret1", Gender: "x"}, KindInvalidInput, "gender", "Gender is invalid!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Signup(ctx, tc.in)
			se := assertKind(t, err, tc.kind)
			assert.Equal(t, tc.field, se.Field)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, se.Msg)
			}
		})
	}

	users, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, f.tokens.Len())
}

func TestSignin(t *testing.T) {
	f := newSessionFixture(t)
	first := f.signup(t, "alice", "alice@example.com")
	ctx := context.Background()

	_, err := f.svc.Signin(ctx, "nobody@example.com", "secret1")
	se := assertKind(t, err, KindNotFound)
	assert.Equal(t, "User not found", se.Msg)

	_, err = f.svc.Signin(ctx, "alice@example.com", "wrong-password")
	se = assertKind(t, err, KindUnauthorized)
	assert.Equal(t, "Incorrect password", se.Msg)

	sess, err := f.svc.Signin(ctx, " Alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, sess.User.ID)

	// The new refresh token replaces the one issued at signup.
	_, err = f.tokens.FindByValue(ctx, first.RefreshToken)
	assert.Error(t, err)
	_, err = f.tokens.FindByValue(ctx, sess.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, 1, f.tokens.Len())
}

func TestRefreshRotates(t *testing.T) {
	f := newSessionFixture(t)
	sess := f.signup(t, "alice", "alice@example.com")
	ctx := context.Background()

	pair, err := f.svc.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.RefreshToken, pair.RefreshToken)
	claims, err := f.codec.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, claims.UserID)

	// The rotated-out token is dead.
	_, err = f.svc.Refresh(ctx, sess.RefreshToken)
	assertKind(t, err, KindUnauthorized)

	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshFailuresDoNotMutate(t *testing.T) {
	f := newSessionFixture(t)
	sess := f.signup(t, "alice", "alice@example.com")
	ctx := context.Background()

	_, err := f.svc.Refresh(ctx, "")
	assertKind(t, err, KindUnauthorized)

	_, err = f.svc.Refresh(ctx, "never-issued")
	assertKind(t, err, KindUnauthorized)

	// A stored value that does not verify (signed with the access key) is
	// rejected and left in place.
	forged, err := f.codec.IssueAccess(sess.User.ID, "alice")
	require.NoError(t, err)
	require.NoError(t, f.tokens.Create(ctx, forged, sess.User.ID, time.Now().Add(time.Hour)))
	_, err = f.svc.Refresh(ctx, forged)
	assertKind(t, err, KindUnauthorized)
	_, err = f.tokens.FindByValue(ctx, forged)
	assert.NoError(t, err)
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	f := newSessionFixture(t)
	sess := f.signup(t, "alice", "alice@example.com")

	const n = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Refresh(context.Background(), sess.RefreshToken); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, success)
}

func TestLogout(t *testing.T) {
	f := newSessionFixture(t)
	sess := f.signup(t, "alice", "alice@example.com")
	ctx := context.Background()

	require.NoError(t, f.svc.Logout(ctx, sess.User.ID, ""))
	assert.Equal(t, 1, f.tokens.Len())

	require.NoError(t, f.svc.Logout(ctx, sess.User.ID, sess.RefreshToken))
	assert.Equal(t, 0, f.tokens.Len())

	_, err := f.svc.Refresh(ctx, sess.RefreshToken)
	assertKind(t, err, KindUnauthorized)
}

func TestMisconfiguredExpiry(t *testing.T) {
	f := newSessionFixture(t)
	f.signup(t, "alice", "alice@example.com")
	f.svc.cfg.RefreshExpiry = "7y"

	_, err := f.svc.Signin(context.Background(), "alice@example.com", "secret1")
	assertKind(t, err, KindInvalidDuration)
}

func TestSignupAcceptsLongestPassword(t *testing.T) {
	f := newSessionFixture(t)
	pw := strings.Repeat("p", 72)
	_, err := f.svc.Signup(context.Background(), SignupInput{Username: "bob", Email: "bob@example.com", Password: pw})
	require.NoError(t, err)

	_, err = f.svc.Signin(context.Background(), "bob@example.com", pw)
	assert.NoError(t, err)
}

func TestSignupPrivilegedRoleNeedsAdminCaller(t *testing.T) {
	f := newSessionFixture(t)
	alice := f.signup(t, "alice", "alice@example.com")
	ctx := context.Background()
	in := SignupInput{Username: "ops", Email: "ops@example.com", Password: "secret1", Role: model.RoleAdmin}

	in.CreatedBy = alice.User.ID
	_, err := f.svc.Signup(ctx, in)
	assertKind(t, err, KindForbidden)

	in.CreatedBy = 999
	_, err = f.svc.Signup(ctx, in)
	assertKind(t, err, KindForbidden)

	f.users.SetRole(alice.User.ID, model.RoleAdmin)
	in.CreatedBy = alice.User.ID
	sess, err := f.svc.Signup(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, sess.User.Role)
}

type failingTokens struct {
	*memstore.Tokens
}

func (failingTokens) Create(context.Context, string, uint64, time.Time) error {
	return errors.New("tokens table unavailable")
}

func TestSignupRemovesUserWhenSessionCannotBeStored(t *testing.T) {
	users := memstore.NewUsers()
	codec := utils.NewTokenCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	svc := NewSessionService(users, failingTokens{memstore.NewTokens()}, codec, SessionConfig{BcryptCost: bcrypt.MinCost, RefreshExpiry: "7d"})
	ctx := context.Background()
	in := SignupInput{Username: "alice", Email: "alice@example.com", Password: "secret1"}

	_, err := svc.Signup(ctx, in)
	assertKind(t, err, KindInternal)
	list, err := users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// A retry fails the same way instead of reporting a conflict.
	_, err = svc.Signup(ctx, in)
	assertKind(t, err, KindInternal)
}

func TestRefreshUsesCurrentUsername(t *testing.T) {
	f := newSessionFixture(t)
	sess := f.signup(t, "alice", "alice@example.com")
	ctx := context.Background()

	_, err := NewAccountService(f.users).UpdateUser(ctx, sess.User.ID, UpdateUserInput{Username: ptr("alicia")})
	require.NoError(t, err)

	pair, err := f.svc.Refresh(ctx, sess.RefreshToken)
	require.NoError(t, err)
	claims, err := f.codec.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alicia", claims.Username)
	claims, err = f.codec.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "alicia", claims.Username)
}

func TestRefreshForDeletedUser(t *testing.T) {
	f := newSessionFixture(t)
	sess := f.signup(t, "alice", "alice@example.com")
	require.NoError(t, f.users.Delete(context.Background(), sess.User.ID))

	_, err := f.svc.Refresh(context.Background(), sess.RefreshToken)
	assertKind(t, err, KindUnauthorized)
}
