package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

const readyzTimeout = 2 * time.Second

// ReadyzHandler pings the user directory and the session store. Either
// failing makes the instance unready. Failure details go to the log only.
func ReadyzHandler(startTime time.Time, version string, db, sessions Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyzTimeout)
		defer cancel()

		checks := &authsdk.HealthChecks{
			Database:     "ok",
			SessionStore: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		l := slogx.FromContext(r.Context())

		if err := db.Ping(ctx); err != nil {
			l.Error("readiness check failed", slog.String("check", "database"), slog.Any("err", err))
			checks.Database = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := sessions.Ping(ctx); err != nil {
			l.Error("readiness check failed", slog.String("check", "session_store"), slog.Any("err", err))
			checks.SessionStore = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
