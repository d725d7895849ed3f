package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a compact token and returns its claims if legitimate.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// HS256Verifier verifies HS256 tokens against the shared server secret.
// Expired tokens surface as ErrExpired, everything else that fails
// verification as one of the invalid-token sentinels, so callers can tell
// "log in again" apart from "malformed or tampered".
type HS256Verifier struct {
	secret []byte
	issuer string
}

// NewVerifierHS256 creates a verifier for tokens signed with secret.
// issuer, when non-empty, is enforced against the "iss" claim.
func NewVerifierHS256(secret []byte, issuer string) (*HS256Verifier, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	s := make([]byte, len(secret))
	copy(s, secret)
	return &HS256Verifier{secret: s, issuer: issuer}, nil
}

// Verify parses and validates the token. Signature verification runs before
// claim validation, so a tampered token never reports ErrExpired.
func (v *HS256Verifier) Verify(token string) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrAlgMismatch
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, ErrAlgMismatch):
		return ErrAlgMismatch
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	default:
		return ErrInvalidSig
	}
}
