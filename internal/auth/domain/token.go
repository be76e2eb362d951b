package domain

import "time"

// TokenPair is what login hands back: a short-lived access token and the
// long-lived refresh token used to mint new access tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string        // always "bearer"
	ExpiresIn    time.Duration // lifetime of the session record
}

// Identity is the verified caller behind an access token.
type Identity struct {
	SubjectID   string
	SubjectName string
	Role        string
}
