package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/pkg/idx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string // empty means domain.RoleUser
}

// Register creates a user. Username and email must both be unused.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user domain.User, err error) {
	started := time.Now()
	defer func() { s.Metrics.Observe("register", outcome(err), started) }()
	l := slogx.FromContext(ctx)

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return domain.User{}, ErrInvalidInput
	}

	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if !domain.ValidRole(in.Role) {
		l.Warn("registration with invalid role", slog.String("role", in.Role))
		return domain.User{}, ErrInvalidRole
	}

	if len([]rune(in.Password)) < s.cfg.MinPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	// Hash outside the transaction; argon2 is the slow part.
	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user = domain.User{
		ID:           idx.NewAt(now).String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: digest,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByUsername(ctx, user.Username); err == nil {
			return ErrConflict
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if _, err := tx.Users().GetUserByEmail(ctx, user.Email); err == nil {
			return ErrConflict
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		// The unique constraints still catch a concurrent insert.
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			l.Info("registration conflict", slog.String("username", user.Username))
		}
		return domain.User{}, err
	}

	l.Info("user registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}
