package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func TestLogout_RevokesAccessToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "pw123456")
	res := f.login(t, "alice", "pw123456")

	require.NoError(t, f.svc.Logout(ctx, res.Tokens.AccessToken, ""))
	require.Zero(t, f.sessions.Len())

	_, err := f.svc.Verify(ctx, res.Tokens.AccessToken)
	require.ErrorIs(t, err, service.ErrRevoked)
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "pw123456")
	res := f.login(t, "alice", "pw123456")

	require.NoError(t, f.svc.Logout(ctx, res.Tokens.AccessToken, ""))
	require.NoError(t, f.svc.Logout(ctx, res.Tokens.AccessToken, ""))

	require.Zero(t, f.sessions.Len())
	_, err := f.svc.Verify(ctx, res.Tokens.AccessToken)
	require.ErrorIs(t, err, service.ErrRevoked)
}

func TestLogout_OnlyEndsOneSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "pw123456")
	phone := f.login(t, "alice", "pw123456")
	laptop := f.login(t, "alice", "pw123456")

	require.NoError(t, f.svc.Logout(ctx, phone.Tokens.AccessToken, ""))

	_, err := f.svc.Verify(ctx, laptop.Tokens.AccessToken)
	require.NoError(t, err)
}

func TestLogout_InvalidToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pw123456")
	res := f.login(t, "alice", "pw123456")

	err := f.svc.Logout(context.Background(), "garbage", "")
	require.ErrorIs(t, err, service.ErrInvalidToken)

	err = f.svc.Logout(context.Background(), res.Tokens.RefreshToken, "")
	require.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogout_IgnoresForeignRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "pw123456")
	f.register(t, "bob", "pw123456")
	alice := f.login(t, "alice", "pw123456")
	bob := f.login(t, "bob", "pw123456")

	require.NoError(t, f.svc.Logout(ctx, alice.Tokens.AccessToken, bob.Tokens.RefreshToken))
	require.NoError(t, f.svc.Logout(ctx, bob.Tokens.AccessToken, "garbage"))

	_, err := f.svc.Refresh(ctx, bob.Tokens.RefreshToken)
	require.NoError(t, err)
}

func TestLogout_StoreUnavailable(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice", "pw123456")
	res := f.login(t, "alice", "pw123456")
	f.sessions.SetFailure(errors.New("connection refused"))

	err := f.svc.Logout(context.Background(), res.Tokens.AccessToken, "")
	require.ErrorIs(t, err, service.ErrStoreUnavailable)
}

// Register, login, logout, then resume with the refresh token.
func TestScenario_LogoutThenRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, service.RegisterInput{Username: "alice", Email: "alice@x.com", Password: "pw123456"})
	require.NoError(t, err)

	res := f.login(t, "alice", "pw123456")
	a, r := res.Tokens.AccessToken, res.Tokens.RefreshToken

	ident, err := f.svc.Verify(ctx, a)
	require.NoError(t, err)
	require.Equal(t, "alice", ident.SubjectName)

	require.NoError(t, f.svc.Logout(ctx, a, ""))
	_, err = f.svc.Verify(ctx, a)
	require.ErrorIs(t, err, service.ErrRevoked)

	out, err := f.svc.Refresh(ctx, r)
	require.NoError(t, err)
	_, err = f.svc.Verify(ctx, out.AccessToken)
	require.NoError(t, err)
}
