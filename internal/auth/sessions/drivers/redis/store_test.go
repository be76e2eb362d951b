package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
	sessionredis "github.com/aussiebroadwan/sessionauth/internal/auth/sessions/drivers/redis"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a throwaway redis container and returns its URL
// without a database number.
func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s", host, port.Port())
}

func TestRedisStore(t *testing.T) {
	url := setupRedis(t)
	ctx := context.Background()

	s, err := sessionredis.New(ctx, sessionredis.Config{
		URL:       url,
		DB:        2,
		KeyPrefix: "test:",
		Timeout:   time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	t.Run("put get delete", func(t *testing.T) {
		rec := domain.Session{
			Key:         sessions.SessionKey("user-1", "AbCdEfGhIjKlMnOp"),
			SubjectID:   "user-1",
			SubjectName: "alice",
			Role:        "user",
			CreatedAt:   time.Now().UTC().Truncate(time.Second),
			ExpiresAt:   time.Now().UTC().Add(time.Minute).Truncate(time.Second),
		}
		require.NoError(t, s.Put(ctx, rec, time.Minute))

		got, err := s.Get(ctx, rec.Key)
		require.NoError(t, err)
		require.Equal(t, rec.Key, got.Key)
		require.Equal(t, rec.SubjectName, got.SubjectName)
		require.True(t, rec.ExpiresAt.Equal(got.ExpiresAt))

		require.NoError(t, s.Delete(ctx, rec.Key))
		require.NoError(t, s.Delete(ctx, rec.Key))

		_, err = s.Get(ctx, rec.Key)
		require.ErrorIs(t, err, sessions.ErrNotFound)
	})

	t.Run("records expire", func(t *testing.T) {
		rec := domain.Session{Key: "session:user-2:short"}
		require.NoError(t, s.Put(ctx, rec, 1100*time.Millisecond))

		require.Eventually(t, func() bool {
			_, err := s.Get(ctx, rec.Key)
			return err != nil
		}, 5*time.Second, 100*time.Millisecond)
	})

	t.Run("blacklist", func(t *testing.T) {
		ok, err := s.IsBlacklisted(ctx, "nonce-1")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, s.Blacklist(ctx, "nonce-1", time.Minute))

		ok, err = s.IsBlacklisted(ctx, "nonce-1")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("cancelled context is unavailable", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.IsBlacklisted(cctx, "nonce-1")
		require.ErrorIs(t, err, sessions.ErrUnavailable)
	})
}

func TestRedisStore_Unreachable(t *testing.T) {
	_, err := sessionredis.New(context.Background(), sessionredis.Config{
		URL:         "redis://127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		Timeout:     200 * time.Millisecond,
	})
	require.ErrorIs(t, err, sessions.ErrUnavailable)
}
