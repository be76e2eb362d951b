package service

import (
	"context"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
)

// ListUsers returns every registered user.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}
