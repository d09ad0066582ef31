package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobby-api/internal/auth"
)

func TestSignupIssuesVerifiableToken(t *testing.T) {
	ctx := context.Background()
	svc, repo, issuer := newTestUserService(t)

	session, err := svc.Signup(ctx, " alice ", "pw1", "A@X.com")
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)
	assert.Equal(t, "alice", session.User.Username)
	assert.Equal(t, "a@x.com", session.User.Email)
	assert.Empty(t, session.User.PasswordHash)

	claims, err := issuer.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	stored, err := repo.GetByID(ctx, session.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.PasswordHash)
}

func TestSignupRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestUserService(t)

	_, err := svc.Signup(ctx, "alice", "pw1", "a@x.com")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "alice", "other", "other@x.com")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	_, err = svc.Signup(ctx, "bob", "pw2", "a@x.com")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSignupValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestUserService(t)

	for _, tc := range []struct{ username, password, email string }{
		{"", "pw", "a@x.com"},
		{"alice", "  ", "a@x.com"},
		{"alice", "pw", ""},
		{"alice", strings.Repeat("p", 73), "a@x.com"},
	} {
		_, err := svc.Signup(ctx, tc.username, tc.password, tc.email)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	// bcrypt's limit is inclusive
	_, err := svc.Signup(ctx, "alice", strings.Repeat("p", 72), "a@x.com")
	assert.NoError(t, err)
}

func TestSignupWithoutSecretIsMisconfigured(t *testing.T) {
	ctx := context.Background()
	_, repo, _ := newTestUserService(t)
	svc := NewUserService(repo, auth.NewIssuer("", 0)).(*userService)

	_, err := svc.Signup(ctx, "alice", "pw1", "a@x.com")
	assert.ErrorIs(t, err, ErrServerMisconfigured)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, issuer := newTestUserService(t)

	signup, err := svc.Signup(ctx, "alice", "pw1", "a@x.com")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	claims, err := issuer.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, claims.UserID)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestListGetAndDeleteUsers(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestUserService(t)

	a, err := svc.Signup(ctx, "alice", "pw1", "a@x.com")
	require.NoError(t, err)
	_, err = svc.Signup(ctx, "bob", "pw2", "b@x.com")
	require.NoError(t, err)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash)
	}

	got, err := svc.GetByID(ctx, a.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	deleted, err := svc.Delete(ctx, a.User.ID)
	require.NoError(t, err)
	assert.Equal(t, a.User.ID, deleted.ID)

	_, err = svc.GetByID(ctx, a.User.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Delete(ctx, a.User.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	users, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
