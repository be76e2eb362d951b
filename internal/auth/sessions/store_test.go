package sessions_test

import (
	"testing"

	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	nonce := "AbCdEfGhIjKlMnOpQrStUv"

	require.Equal(t, "AbCdEfGhIjKl", sessions.TokenPrefix(nonce))
	require.Equal(t, "short", sessions.TokenPrefix("short"))
	require.Equal(t, "session:user-1:AbCdEfGhIjKl", sessions.SessionKey("user-1", nonce))
	require.Equal(t, "blacklist:"+nonce, sessions.BlacklistKey(nonce))
}
