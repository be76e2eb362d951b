package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/authsdk"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

var serviceErrors = []struct {
	err error
	api *authsdk.APIError
}{
	{service.ErrInvalidInput, authsdk.ErrInvalidRequest},
	{service.ErrInvalidRole, authsdk.ErrInvalidRole},
	{service.ErrWeakPassword, authsdk.ErrWeakPassword},
	{service.ErrConflict, authsdk.ErrConflict},
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrInvalidToken, authsdk.ErrInvalidToken},
	{service.ErrRevoked, authsdk.ErrTokenRevoked},
	{service.ErrSessionRevoked, authsdk.ErrSessionRevoked},
	{service.ErrSubjectNotFound, authsdk.ErrUserNotFound},
	{service.ErrStoreUnavailable, authsdk.ErrUnavailable},
}

// toAPIError maps a service error onto its wire form. Anything unknown is
// a 500 with no detail.
func toAPIError(err error) *authsdk.APIError {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return m.api
		}
	}
	return authsdk.ErrServerError
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError {
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
	}
	if apiErr.StatusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	if apiErr.StatusCode == http.StatusUnauthorized && apiErr != authsdk.ErrInvalidCredentials {
		w.Header().Set("WWW-Authenticate", `Bearer error="`+apiErr.Code+`"`)
	}
	apiErr.WriteError(w)
}
