package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. Services override these from configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 30 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Kind distinguishes access tokens from refresh tokens. A token of one kind
// is never accepted where the other is expected.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Valid reports whether k is one of the known token kinds.
func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

// Claims are the signed contents of both token kinds. The registered "jti"
// claim carries the per-issuance nonce.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the subject at issuance time
	Username string `json:"username,omitempty"`

	// Role of the subject ("user" or "admin")
	Role string `json:"role,omitempty"`

	// Kind is serialised as "type" so tokens stay readable by older clients
	Kind Kind `json:"type"`
}

// NewClaims builds minimally-correct claims with a fresh nonce.
func NewClaims(
	kind Kind,
	subject, username, role string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewNonce(),
		},
		Username: username,
		Role:     role,
		Kind:     kind,
	}
}

// NewNonce returns a URL-safe random identifier with 128 bits of entropy
// for the "jti" claim.
func NewNonce() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// Nonce returns the per-issuance identifier of the token.
func (c *Claims) Nonce() string {
	return c.ID
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateKind checks the token is of the wanted kind.
func (c *Claims) ValidateKind(want Kind) error {
	if c.Kind != want {
		return ErrWrongKind
	}
	return nil
}

// ValidateExpiry fails when now is strictly after exp. There is no grace
// window: a token is still valid at exactly its expiry instant.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}

	if now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	return nil
}

// Remaining returns how long the token has left to live at now, or zero if
// it has already expired.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
