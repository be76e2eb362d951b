package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
	"github.com/aussiebroadwan/sessionauth/pkg/jwtx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// Logout ends the session behind accessToken and blacklists the token for
// the rest of its life. Repeating it with the same token succeeds.
//
// refreshToken is optional. When it belongs to the same subject it is
// blacklisted too, so the session cannot be resumed; otherwise it is ignored.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) (err error) {
	started := time.Now()
	defer func() { s.Metrics.Observe("logout", outcome(err), started) }()
	l := slogx.FromContext(ctx)

	claims, err := s.Codec.DecodeKind(accessToken, jwtx.KindAccess)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if err := s.Sessions.Delete(ctx, sessions.SessionKey(claims.Subject, claims.Nonce())); err != nil {
		return s.unavailable("del", err)
	}
	if err := s.revokeNonce(ctx, claims); err != nil {
		return err
	}

	if refreshToken != "" {
		rc, err := s.Codec.DecodeKind(refreshToken, jwtx.KindRefresh)
		switch {
		case err != nil:
			l.Info("ignoring unusable refresh token on logout", slog.Any("err", err))
		case rc.Subject != claims.Subject:
			l.Warn("ignoring refresh token of another subject on logout", slog.String("user_id", claims.Subject))
		default:
			if err := s.revokeNonce(ctx, rc); err != nil {
				return err
			}
		}
	}

	l.Info("user logged out", slog.String("user_id", claims.Subject))
	return nil
}
