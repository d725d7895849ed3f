package cryptox

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	require.NoError(t, err)
	require.Len(t, raw, TokenSize256)

	other, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)
}

func TestGenerateTokenRejectsBadSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := GenerateToken(size)
		require.Error(t, err)
	}
}

func TestFingerprintToken(t *testing.T) {
	fp := FingerprintToken("some-token")
	require.Equal(t, fp, FingerprintToken("some-token"))
	require.NotEqual(t, fp, FingerprintToken("other-token"))
	require.Len(t, fp, 43) // raw base64url of a SHA-256 digest
}
