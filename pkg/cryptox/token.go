package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Token entropy sizes in bytes before encoding.
const (
	// TokenSize128 (16 bytes) suits short-lived single-use tokens.
	TokenSize128 = 16
	// TokenSize256 (32 bytes) is the recommended size for opaque
	// credentials such as email verification tokens.
	TokenSize256 = 32
)

// GenerateToken returns a cryptographically random opaque token of the given
// byte length, base64url-encoded without padding.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns the deterministic SHA-256 fingerprint of a token,
// base64url-encoded. Stores hold fingerprints instead of the token value so
// a leaked table does not leak redeemable tokens.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
