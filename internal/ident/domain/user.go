package domain

import "time"

// User is a registered identity. The ID is immutable; Role and Verified are
// only mutated by privileged operations (bootstrap assignment, email
// verification). Users are never destroyed.
type User struct {
	ID           string
	Username     string // unique
	Email        string // unique, stored lowercased
	PasswordHash string // argon2id PHC encoded
	Role         Role
	Verified     bool
	Provider     string // external identity provider, empty for password accounts
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ExternalIdentity is what the identity-provider collaborator returns after
// exchanging an authorization code. Only the fields this core needs.
type ExternalIdentity struct {
	Provider string
	Subject  string
	Username string
	Email    string
}
