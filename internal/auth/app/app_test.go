package app_test

import (
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/app"
	"github.com/stretchr/testify/require"
)

func TestNew_MemoryAndSQLite(t *testing.T) {
	dir := t.TempDir()
	cfg, err := app.LoadConfigFrom(map[string]string{
		"SECRET_KEY":       secret,
		"SESSION_STORE":    "memory",
		"DATABASE_FILE":    filepath.Join(dir, "auth.db"),
		"AUTH_PEPPER_FILE": filepath.Join(dir, "pepper"),
		"LOG_LEVEL":        "error",
	})
	require.NoError(t, err)
	cfg.ShutdownGracePeriod = time.Second

	a, err := app.New(cfg)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, "pepper"))

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NoError(t, a.Shutdown())
}

func TestRun_ListenFailureReleasesStores(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	dir := t.TempDir()
	cfg, err := app.LoadConfigFrom(map[string]string{
		"SECRET_KEY":       secret,
		"SESSION_STORE":    "memory",
		"DATABASE_FILE":    filepath.Join(dir, "auth.db"),
		"AUTH_PEPPER_FILE": filepath.Join(dir, "pepper"),
		"LOG_LEVEL":        "error",
		"PORT":             strconv.Itoa(busy.Addr().(*net.TCPAddr).Port),
	})
	require.NoError(t, err)
	cfg.ShutdownGracePeriod = time.Second

	a, err := app.New(cfg)
	require.NoError(t, err)

	require.Error(t, a.Run())

	// The database is closed, so readiness now fails.
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, a.Shutdown(), "later shutdowns are no-ops")
}
