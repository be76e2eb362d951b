package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
)

// TokenPrefixLength is how many characters of an access token nonce end up
// in a session key. 12 base64url characters carry 72 bits, enough to keep
// concurrent logins apart without revealing the nonce.
const TokenPrefixLength = 12

var (
	ErrNotFound = errors.New("sessions: not found")

	// ErrUnavailable wraps every failure to reach the backing store,
	// including context cancellation and deadlines. It never means
	// "revoked".
	ErrUnavailable = errors.New("sessions: store unavailable")

	ErrInvalidTTL = errors.New("sessions: ttl must be positive")
)

// Store is the shared TTL store holding session records and the token
// blacklist. Implementations must make single-key writes atomic with their
// expiry and must not cache locally.
type Store interface {
	// Put writes rec under rec.Key with the given time to live.
	Put(ctx context.Context, rec domain.Session, ttl time.Duration) error

	// Get returns the record stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (domain.Session, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Blacklist marks a token nonce as revoked for ttl.
	Blacklist(ctx context.Context, nonce string, ttl time.Duration) error

	// IsBlacklisted reports whether nonce is currently revoked.
	IsBlacklisted(ctx context.Context, nonce string) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}

// TokenPrefix returns the non-secret slice of a nonce used in session keys.
func TokenPrefix(nonce string) string {
	if len(nonce) <= TokenPrefixLength {
		return nonce
	}
	return nonce[:TokenPrefixLength]
}

// SessionKey is "session:{subject_id}:{token_prefix}".
func SessionKey(subjectID, nonce string) string {
	return "session:" + subjectID + ":" + TokenPrefix(nonce)
}

// BlacklistKey is "blacklist:{nonce}".
func BlacklistKey(nonce string) string {
	return "blacklist:" + nonce
}

// Sweeper is implemented by stores that do not expire keys on their own and
// need expired entries purged periodically.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}
