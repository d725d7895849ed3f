package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens.
const DefaultAccessTokenTTL = 7 * 24 * time.Hour

// Claims are the access-token claims. A token is a point-in-time snapshot of
// an identity's id and role at issuance; later role changes do not reach
// outstanding tokens, so keep TTLs bounded.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated identity.
	Username string `json:"username,omitempty"`

	// Email of the authenticated identity (lowercased).
	Email string `json:"email,omitempty"`

	// Role held by the identity when the token was minted.
	Role string `json:"role,omitempty"`
}

// NewAccessClaims builds minimally-correct claims for an identity.
func NewAccessClaims(
	subject, username, email, role string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
		Email:    email,
		Role:     role,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
