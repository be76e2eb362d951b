package service

import "errors"

// Error values double as the wire "error" code, so keep them snake_case.
var (
	ErrInvalidInput       = errors.New("invalid_request")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrWeakPassword       = errors.New("weak_password")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrRevoked            = errors.New("token_revoked")
	ErrSessionRevoked     = errors.New("session_revoked")
	ErrSubjectNotFound    = errors.New("user_not_found")

	// ErrStoreUnavailable is transient and safe to retry. It is never
	// reported as a revocation.
	ErrStoreUnavailable = errors.New("store_unavailable")

	ErrConfig = errors.New("invalid_config")
)
