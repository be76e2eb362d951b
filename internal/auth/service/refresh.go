package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

type RefreshResult struct {
	AccessToken string
	// RefreshToken is only set when rotation is enabled.
	RefreshToken string
	TokenType    string
	ExpiresIn    time.Duration
}

// Refresh mints a new access token and session from a refresh token. The
// previous access token is left alone and expires on its own schedule.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (res RefreshResult, err error) {
	started := time.Now()
	defer func() { s.Metrics.Observe("refresh", outcome(err), started) }()
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.DecodeKind(refreshToken, jwtx.KindRefresh)
	if err != nil {
		l.Info("refresh rejected", slog.Any("err", err))
		return RefreshResult{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	revoked, err := s.Sessions.IsBlacklisted(ctx, claims.Nonce())
	if err != nil {
		return RefreshResult{}, s.unavailable("exists", err)
	}
	if revoked {
		l.Info("refresh with revoked token", slog.String("user_id", claims.Subject))
		return RefreshResult{}, ErrSessionRevoked
	}

	user, err := s.Store.Users().GetUserByID(ctx, claims.Subject)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return RefreshResult{}, ErrSubjectNotFound
	case err != nil:
		return RefreshResult{}, fmt.Errorf("lookup user: %w", err)
	}

	access, err := s.Codec.Issue(jwtx.KindAccess, user.ID, user.Username, user.Role, s.cfg.AccessTTL)
	if err != nil {
		return RefreshResult{}, err
	}

	var rotated jwtx.Issued
	if s.cfg.RotateRefreshTokens {
		rotated, err = s.Codec.Issue(jwtx.KindRefresh, user.ID, user.Username, user.Role, s.cfg.RefreshTTL)
		if err != nil {
			return RefreshResult{}, err
		}
	}

	if err := s.openSession(ctx, access.Claims); err != nil {
		return RefreshResult{}, err
	}

	// With rotation the presented token is spent. A failure here leaves an
	// orphan session whose access token was never handed out.
	if s.cfg.RotateRefreshTokens {
		if err := s.revokeNonce(ctx, claims); err != nil {
			return RefreshResult{}, err
		}
	}

	l.Info("access token refreshed", slog.String("user_id", user.ID), slog.Bool("rotated", s.cfg.RotateRefreshTokens))
	return RefreshResult{
		AccessToken:  access.Token,
		RefreshToken: rotated.Token,
		TokenType:    "bearer",
		ExpiresIn:    s.SessionTTL(),
	}, nil
}

// revokeNonce blacklists a token for the rest of its life.
func (s *AuthService) revokeNonce(ctx context.Context, c jwtx.Claims) error {
	remaining := c.Remaining(s.now())
	if remaining <= 0 {
		return nil
	}
	if err := s.Sessions.Blacklist(ctx, c.Nonce(), remaining); err != nil {
		return s.unavailable("blacklist", err)
	}
	return nil
}
