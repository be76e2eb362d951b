package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var (
	ErrMismatch      = errors.New("password does not match")
	ErrInvalidDigest = errors.New("invalid hash format")
)

// Hasher turns plaintext passwords into salted digests and checks them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) error
}

// Argon2Hasher hashes with Argon2id and mixes a server-side pepper into
// every password before hashing.
type Argon2Hasher struct {
	pepper string
	dummy  string
}

// NewArgon2Hasher returns a hasher using pepper. An empty pepper is allowed
// but weakens the digest against database-only leaks. The dummy digest is
// computed here so no login request pays for it.
func NewArgon2Hasher(pepper string) *Argon2Hasher {
	h := &Argon2Hasher{pepper: pepper}
	digest, err := h.Hash(MustGenerateToken(TokenSize256))
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to compute dummy hash: %v", err))
	}
	h.dummy = digest
	return h
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// Return PHC-style encoded string
	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// Verify compares a plaintext password against a PHC-style Argon2id hash.
func (h *Argon2Hasher) Verify(password, encodedHash string) error {
	// Parse PHC format: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := make([]string, 0, 6)
	start := 0
	for i := range len(encodedHash) {
		if encodedHash[i] == '$' {
			parts = append(parts, encodedHash[start:i])
			start = i + 1
		}
	}
	parts = append(parts, encodedHash[start:]) // Add last part

	// Validate structure: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	if len(parts) != 6 {
		return fmt.Errorf("%w: expected 6 parts", ErrInvalidDigest)
	}
	if parts[1] != "argon2id" {
		return fmt.Errorf("%w: not argon2id", ErrInvalidDigest)
	}
	if parts[2] != "v=19" {
		return fmt.Errorf("%w: wrong version", ErrInvalidDigest)
	}

	var mem, iters uint32
	var par uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par)
	if err != nil {
		return fmt.Errorf("%w: failed to parse parameters: %w", ErrInvalidDigest, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: failed to decode salt: %w", ErrInvalidDigest, err)
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("%w: failed to decode hash: %w", ErrInvalidDigest, err)
	}

	computed := argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expectedHash)), // #nosec G115 - If this overflows we have bigger problems
	)

	if subtle.ConstantTimeCompare(computed, expectedHash) == 1 {
		return nil
	}
	return ErrMismatch
}

// DummyHash returns the digest of a random password. Verifying against it
// costs the same as a real check and never succeeds, keeping unknown-user
// logins as slow as wrong-password logins.
func (h *Argon2Hasher) DummyHash() string {
	return h.dummy
}
