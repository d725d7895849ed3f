package service

import (
	"time"

	"github.com/quokkaworks/ident/internal/ident/domain"
	"github.com/quokkaworks/ident/pkg/jwtx"
)

// TokenService mints and validates the signed bearer tokens that bind an
// identity and its role. A token's validity is a pure function of the token
// bytes plus current time; nothing is stored per token.
type TokenService struct {
	Signer    jwtx.Signer
	Verifier  jwtx.Verifier
	Issuer    string
	AccessTTL time.Duration
}

// Issue mints a signed token for the identity with issuedAt = now and
// expiresAt = now + AccessTTL. The claims snapshot the identity's role at
// issuance; later role changes do not reach outstanding tokens.
func (s *TokenService) Issue(u domain.User) (domain.Credential, error) {
	claims := jwtx.NewAccessClaims(
		u.ID,
		u.Username,
		u.Email,
		u.Role.String(),
		s.AccessTTL,
		s.Issuer,
		time.Now().UTC(),
	)

	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.Credential{}, err
	}

	return domain.Credential{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: s.AccessTTL,
	}, nil
}

// Validate verifies the presented token's signature and expiry and decodes
// its claims. Expired tokens surface as jwtx.ErrExpired, anything tampered
// or malformed as one of the invalid-token sentinels.
func (s *TokenService) Validate(token string) (jwtx.Claims, error) {
	return s.Verifier.Verify(token)
}
