package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

type LoginResult struct {
	Tokens domain.TokenPair
	User   domain.User
}

// Login checks credentials and opens a session. Unknown usernames and
// wrong passwords fail identically and take the same time.
func (s *AuthService) Login(ctx context.Context, username, password string) (res LoginResult, err error) {
	started := time.Now()
	defer func() { s.Metrics.Observe("login", outcome(err), started) }()
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	switch {
	case errors.Is(err, store.ErrNotFound):
		_ = s.Hasher.Verify(password, s.Hasher.DummyHash())
		l.Info("login failed", slog.String("reason", "unknown_user"))
		return LoginResult{}, ErrInvalidCredentials
	case err != nil:
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrInvalidDigest) {
			l.Error("stored password digest is unreadable", slog.String("user_id", user.ID))
		}
		l.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", user.ID))
		return LoginResult{}, ErrInvalidCredentials
	}

	access, err := s.Codec.Issue(jwtx.KindAccess, user.ID, user.Username, user.Role, s.cfg.AccessTTL)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := s.Codec.Issue(jwtx.KindRefresh, user.ID, user.Username, user.Role, s.cfg.RefreshTTL)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.openSession(ctx, access.Claims); err != nil {
		return LoginResult{}, err
	}

	l.Info("user logged in", slog.String("user_id", user.ID))
	return LoginResult{
		Tokens: domain.TokenPair{
			AccessToken:  access.Token,
			RefreshToken: refresh.Token,
			TokenType:    "bearer",
			ExpiresIn:    s.SessionTTL(),
		},
		User: user,
	}, nil
}

// openSession writes the record that keeps an access token alive.
func (s *AuthService) openSession(ctx context.Context, c jwtx.Claims) error {
	now := s.now()
	ttl := s.SessionTTL()
	rec := domain.Session{
		Key:         sessions.SessionKey(c.Subject, c.Nonce()),
		SubjectID:   c.Subject,
		SubjectName: c.Username,
		Role:        c.Role,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if err := s.Sessions.Put(ctx, rec, ttl); err != nil {
		slogx.FromContext(ctx).Error("failed to store session", slog.Any("err", err))
		return s.unavailable("put", err)
	}
	return nil
}
