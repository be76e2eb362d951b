package jwtx

import (
	"fmt"
	"time"
)

// CodecOptions configures a Codec.
type CodecOptions struct {
	// Secret is the HMAC key shared by every instance of the service.
	Secret []byte

	// Issuer is stamped into "iss" and enforced on decode. Empty disables both.
	Issuer string

	// Now is the clock used for "iat", "exp" and expiry checks.
	Now func() time.Time
}

// Codec issues and decodes access and refresh tokens signed with a single
// symmetric secret.
type Codec struct {
	signer   Signer
	verifier *HS256Verifier
	issuer   string
	now      func() time.Time
}

// Issued is a freshly signed token together with the claims it carries.
type Issued struct {
	Token  string
	Claims Claims
}

// NewCodec builds a Codec, failing if the secret is unusable.
func NewCodec(opts CodecOptions) (*Codec, error) {
	signer, err := NewSignerHS256(opts.Secret)
	if err != nil {
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Codec{
		signer:   signer,
		verifier: NewVerifierHS256(opts.Secret, opts.Issuer, now),
		issuer:   opts.Issuer,
		now:      now,
	}, nil
}

// Issue signs a token of the given kind for subject.
func (c *Codec) Issue(kind Kind, subject, username, role string, ttl time.Duration) (Issued, error) {
	if !kind.Valid() {
		return Issued{}, fmt.Errorf("jwtx: unknown token kind %q", kind)
	}
	if ttl <= 0 {
		return Issued{}, fmt.Errorf("jwtx: ttl must be positive, got %s", ttl)
	}

	claims := NewClaims(kind, subject, username, role, ttl, c.issuer, c.now().UTC())
	token, err := c.signer.Sign(claims)
	if err != nil {
		return Issued{}, fmt.Errorf("jwtx: sign: %w", err)
	}

	return Issued{Token: token, Claims: claims}, nil
}

// Decode verifies the signature and expiry of token and returns its claims
// without looking at the kind.
func (c *Codec) Decode(token string) (Claims, error) {
	return c.verifier.Verify(token)
}

// DecodeKind is Decode plus a check that the token is of the wanted kind.
func (c *Codec) DecodeKind(token string, want Kind) (Claims, error) {
	claims, err := c.Decode(token)
	if err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateKind(want); err != nil {
		return Claims{}, err
	}
	return claims, nil
}
