package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, token, 43)

	short, err := GenerateToken(16)
	require.NoError(t, err)
	require.Len(t, short, 22)
}

func TestGenerateToken_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		token, err := GenerateToken(size)
		require.Error(t, err)
		require.Empty(t, token)
	}
}

func TestMustGenerateToken_Panics(t *testing.T) {
	require.Panics(t, func() { MustGenerateToken(0) })
}

func TestGenerateToken_Unique(t *testing.T) {
	const count = 100
	seen := make(map[string]bool, count)

	for range count {
		token := MustGenerateToken(TokenSize256)
		require.NotContains(t, seen, token, "duplicate token generated")
		seen[token] = true
	}
}
