package auth_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/app"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests run real application instances in-process against a
 * throwaway Redis container. Instances of one cluster share the Redis
 * session database, the user database file and the signing secret, the
 * same way replicas behind a load balancer would.
 */

const (
	testSecret   = "e2e-signing-secret-0123456789"
	testPassword = "pw123456"
)

// setupRedis starts redis and returns its URL without a database number.
func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
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

// startCluster boots n application instances sharing one redis and one
// user database, and returns their base URLs.
func startCluster(t *testing.T, n int, extra map[string]string) []string {
	t.Helper()
	redisURL := setupRedis(t)
	dir := t.TempDir()

	vars := map[string]string{
		"JWT_SECRET_KEY":   testSecret,
		"SESSION_STORE":    "redis",
		"REDIS_URL":        redisURL,
		"DATABASE_FILE":    filepath.Join(dir, "auth.db"),
		"AUTH_PEPPER_FILE": filepath.Join(dir, "pepper"),
		"ENV":              "test",
		"LOG_LEVEL":        "warn",
	}
	for k, v := range extra {
		vars[k] = v
	}

	urls := make([]string, 0, n)
	for range n {
		cfg, err := app.LoadConfigFrom(vars)
		require.NoError(t, err)
		cfg.ShutdownGracePeriod = time.Second

		a, err := app.New(cfg)
		require.NoError(t, err)
		srv := httptest.NewServer(a.Handler())
		t.Cleanup(func() {
			srv.Close()
			_ = a.Shutdown()
		})
		urls = append(urls, srv.URL)
	}
	return urls
}

// registerUser creates username through client and returns its id.
func registerUser(t *testing.T, client *authsdk.SDKClient, username, role string) string {
	t.Helper()
	out, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
		Role:     role,
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.ID)
	return out.ID
}

func requireAPIError(t *testing.T, err error, want *authsdk.APIError) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, want)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, want.StatusCode, apiErr.StatusCode)
}
