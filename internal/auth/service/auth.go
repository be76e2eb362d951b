package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/metrics"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
)

// DefaultMinPasswordLength is the shortest password Register accepts.
const DefaultMinPasswordLength = 6

// Config carries every tunable of the auth flows. It is passed in at
// construction; the service never reads the environment.
type Config struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// SessionTTL caps how long a session record lives. The effective
	// lifetime is the smaller of SessionTTL and AccessTTL.
	SessionTTL time.Duration

	MinPasswordLength int

	// RotateRefreshTokens makes refresh tokens single-use: each refresh
	// returns a new refresh token and blacklists the one presented.
	RotateRefreshTokens bool

	// Now defaults to time.Now. Share it with the codec and session store
	// in tests so every component agrees on the time.
	Now func() time.Time
}

func (c Config) validate() error {
	var errs []error
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("access ttl must be positive"))
	}
	if c.RefreshTTL <= c.AccessTTL {
		errs = append(errs, errors.New("refresh ttl must be longer than access ttl"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.MinPasswordLength < 1 {
		errs = append(errs, errors.New("min password length must be at least 1"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfig, errors.Join(errs...))
	}
	return nil
}

// PasswordHasher is a cryptox.Hasher that can also supply a digest for
// equal-cost verification when a user does not exist.
type PasswordHasher interface {
	cryptox.Hasher
	DummyHash() string
}

// Deps are the collaborators of AuthService.
type Deps struct {
	Users    store.Store
	Sessions sessions.Store
	Codec    *jwtx.Codec
	Hasher   PasswordHasher
	Metrics  *metrics.Metrics // optional
}

// AuthService implements register, login, refresh, logout and verify on top
// of the user directory and the shared session store. It holds no mutable
// state of its own, so one instance serves all requests.
type AuthService struct {
	Store    store.Store
	Sessions sessions.Store
	Codec    *jwtx.Codec
	Hasher   PasswordHasher
	Metrics  *metrics.Metrics

	cfg Config
}

func NewAuthService(cfg Config, deps Deps) (*AuthService, error) {
	if cfg.MinPasswordLength == 0 {
		cfg.MinPasswordLength = DefaultMinPasswordLength
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if deps.Users == nil || deps.Sessions == nil || deps.Codec == nil || deps.Hasher == nil {
		return nil, fmt.Errorf("%w: missing dependency", ErrConfig)
	}

	return &AuthService{
		Store:    deps.Users,
		Sessions: deps.Sessions,
		Codec:    deps.Codec,
		Hasher:   deps.Hasher,
		Metrics:  deps.Metrics,
		cfg:      cfg,
	}, nil
}

// SessionTTL is the lifetime given to every session record, and the
// expires_in reported to clients.
func (s *AuthService) SessionTTL() time.Duration {
	return min(s.cfg.AccessTTL, s.cfg.SessionTTL)
}

func (s *AuthService) now() time.Time {
	return s.cfg.Now().UTC()
}

// unavailable counts and wraps a session store failure.
func (s *AuthService) unavailable(op string, err error) error {
	s.Metrics.StoreError(op)
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// outcome turns an operation error into a metrics label.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, known := range []error{
		ErrInvalidInput, ErrInvalidRole, ErrWeakPassword, ErrConflict,
		ErrInvalidCredentials, ErrInvalidToken, ErrRevoked, ErrSessionRevoked,
		ErrSubjectNotFound, ErrStoreUnavailable,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "error"
}
