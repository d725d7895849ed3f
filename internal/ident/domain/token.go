package domain

import "time"

// Credential is what the register/login endpoints return: a signed bearer
// token plus its remaining lifetime.
type Credential struct {
	Token     string        `json:"token"`
	TokenType string        `json:"token_type,omitempty"` // always "Bearer"
	ExpiresIn time.Duration `json:"expires_in"`           // seconds until expiry
}

// VerificationToken is the stored side of an email verification link. Only
// the SHA-256 fingerprint of the opaque token is persisted.
type VerificationToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
}
