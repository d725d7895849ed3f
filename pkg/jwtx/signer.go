package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the minimum accepted HMAC secret length in bytes.
// Anything shorter than the HS256 output size weakens the MAC.
const MinSecretLength = 32

// ErrWeakSecret reports a signing secret below MinSecretLength.
var ErrWeakSecret = errors.New("jwtx: signing secret shorter than 32 bytes")

// Signer is anything that can sign a claim set into a compact token.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs tokens with a server-held symmetric secret.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 creates an HS256 signer. The secret must be at least
// MinSecretLength bytes.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}

	s := make([]byte, len(secret))
	copy(s, secret)
	return &HS256Signer{secret: s}, nil
}

func (s *HS256Signer) Alg() string { return "HS256" }

// Sign produces a compact signed token for the claims.
func (s *HS256Signer) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.secret)
}
