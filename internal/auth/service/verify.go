package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// VerificationStatus is the outcome of checking an access token. Callers
// branch on it instead of unpicking errors.
type VerificationStatus int

const (
	StatusValid VerificationStatus = iota
	StatusMalformed
	StatusExpired
	StatusBadSignature
	StatusWrongKind
	StatusRevoked
	StatusStoreUnavailable
)

func (s VerificationStatus) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusMalformed:
		return "malformed"
	case StatusExpired:
		return "expired"
	case StatusBadSignature:
		return "bad_signature"
	case StatusWrongKind:
		return "wrong_kind"
	case StatusRevoked:
		return "revoked"
	case StatusStoreUnavailable:
		return "store_unavailable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Verification is the tagged result of Inspect. Identity and Claims are
// only set when Status is StatusValid; Cause carries the underlying error
// for every other status.
type Verification struct {
	Status   VerificationStatus
	Identity domain.Identity
	Claims   jwtx.Claims
	Cause    error
}

func (v Verification) Valid() bool { return v.Status == StatusValid }

// Err folds the status into the service error taxonomy.
func (v Verification) Err() error {
	switch v.Status {
	case StatusValid:
		return nil
	case StatusRevoked:
		return ErrRevoked
	case StatusStoreUnavailable:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, v.Cause)
	default:
		if v.Cause != nil {
			return fmt.Errorf("%w: %w", ErrInvalidToken, v.Cause)
		}
		return ErrInvalidToken
	}
}

// Inspect runs every check an access token must pass: signature, expiry,
// kind, blacklist and session record presence, in that order.
func (s *AuthService) Inspect(ctx context.Context, token string) Verification {
	v := s.inspect(ctx, token)
	s.Metrics.Verification(v.Status.String())
	if !v.Valid() {
		slogx.FromContext(ctx).Debug("access token rejected",
			slog.String("status", v.Status.String()),
			slog.Any("err", v.Cause),
		)
	}
	return v
}

func (s *AuthService) inspect(ctx context.Context, token string) Verification {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return Verification{Status: decodeStatus(err), Cause: err}
	}
	if err := claims.ValidateKind(jwtx.KindAccess); err != nil {
		return Verification{Status: StatusWrongKind, Cause: err}
	}

	revoked, err := s.Sessions.IsBlacklisted(ctx, claims.Nonce())
	if err != nil {
		s.Metrics.StoreError("exists")
		return Verification{Status: StatusStoreUnavailable, Cause: err}
	}
	if revoked {
		return Verification{Status: StatusRevoked, Cause: errors.New("token blacklisted")}
	}

	rec, err := s.Sessions.Get(ctx, sessions.SessionKey(claims.Subject, claims.Nonce()))
	switch {
	case errors.Is(err, sessions.ErrNotFound):
		return Verification{Status: StatusRevoked, Cause: errors.New("session not found")}
	case err != nil:
		s.Metrics.StoreError("get")
		return Verification{Status: StatusStoreUnavailable, Cause: err}
	case rec.SubjectID != claims.Subject:
		return Verification{Status: StatusRevoked, Cause: errors.New("session subject mismatch")}
	}

	return Verification{
		Status: StatusValid,
		Identity: domain.Identity{
			SubjectID:   claims.Subject,
			SubjectName: claims.Username,
			Role:        claims.Role,
		},
		Claims: claims,
	}
}

// Verify is Inspect for callers that only need identity or an error.
func (s *AuthService) Verify(ctx context.Context, token string) (domain.Identity, error) {
	v := s.Inspect(ctx, token)
	return v.Identity, v.Err()
}

func decodeStatus(err error) VerificationStatus {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return StatusExpired
	case errors.Is(err, jwtx.ErrInvalidSig), errors.Is(err, jwtx.ErrAlgMismatch):
		return StatusBadSignature
	case errors.Is(err, jwtx.ErrWrongKind):
		return StatusWrongKind
	default:
		return StatusMalformed
	}
}
