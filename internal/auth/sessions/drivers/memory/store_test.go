package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions/drivers/memory"
	"github.com/stretchr/testify/require"
)

func newStore() (*memory.Store, *memory.Clock) {
	clock := memory.NewClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	return memory.New(clock.Now), clock
}

func TestPutGetExpire(t *testing.T) {
	ctx := context.Background()
	s, clock := newStore()

	rec := domain.Session{Key: "session:u1:abc", SubjectID: "u1", SubjectName: "alice"}
	require.NoError(t, s.Put(ctx, rec, time.Minute))

	got, err := s.Get(ctx, rec.Key)
	require.NoError(t, err)
	require.Equal(t, "alice", got.SubjectName)
	require.Equal(t, 1, s.Len())

	clock.Advance(59 * time.Second)
	_, err = s.Get(ctx, rec.Key)
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = s.Get(ctx, rec.Key)
	require.ErrorIs(t, err, sessions.ErrNotFound)
	require.Zero(t, s.Len())
}

func TestDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()

	rec := domain.Session{Key: "session:u1:abc"}
	require.NoError(t, s.Put(ctx, rec, time.Minute))
	require.NoError(t, s.Delete(ctx, rec.Key))
	require.NoError(t, s.Delete(ctx, rec.Key))

	_, err := s.Get(ctx, rec.Key)
	require.ErrorIs(t, err, sessions.ErrNotFound)
}

func TestBlacklist(t *testing.T) {
	ctx := context.Background()
	s, clock := newStore()

	ok, err := s.IsBlacklisted(ctx, "nonce")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Blacklist(ctx, "nonce", 10*time.Second))
	ok, err = s.IsBlacklisted(ctx, "nonce")
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(10 * time.Second)
	ok, err = s.IsBlacklisted(ctx, "nonce")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInvalidTTL(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore()

	require.ErrorIs(t, s.Put(ctx, domain.Session{Key: "k"}, 0), sessions.ErrInvalidTTL)
	require.ErrorIs(t, s.Blacklist(ctx, "n", -time.Second), sessions.ErrInvalidTTL)
}

func TestUnavailable(t *testing.T) {
	s, _ := newStore()

	s.SetFailure(errors.New("connection refused"))
	_, err := s.Get(context.Background(), "k")
	require.ErrorIs(t, err, sessions.ErrUnavailable)
	require.ErrorIs(t, s.Ping(context.Background()), sessions.ErrUnavailable)

	s.SetFailure(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.IsBlacklisted(ctx, "n")
	require.ErrorIs(t, err, sessions.ErrUnavailable)
	require.ErrorIs(t, err, context.Canceled)
}
