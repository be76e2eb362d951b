package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := metrics.New()

	m.Observe("login", "ok", time.Now())
	m.Observe("login", "invalid_credentials", time.Now())
	m.Observe("login", "ok", time.Now())
	m.Verification("valid")
	m.StoreError("get")

	expected := `
# HELP sessionauth_operations_total Auth operations by name and outcome.
# TYPE sessionauth_operations_total counter
sessionauth_operations_total{op="login",outcome="invalid_credentials"} 1
sessionauth_operations_total{op="login",outcome="ok"} 2
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "sessionauth_operations_total"))

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `sessionauth_verifications_total{status="valid"} 1`)
	require.Contains(t, string(body), `sessionauth_session_store_errors_total{op="get"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.Observe("login", "ok", time.Now())
		m.Verification("valid")
		m.StoreError("get")
	})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
