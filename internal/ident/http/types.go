package http

import (
	"time"

	"github.com/quokkaworks/ident/internal/ident/domain"
)

// UserResponse is the wire shape of an identity. It never carries the
// password hash.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role.String(),
		Verified:  u.Verified,
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
	}
}

// SessionResponse is the register/login success envelope: the issued bearer
// credential plus the identity it binds.
type SessionResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int64        `json:"expires_in"`
	User      UserResponse `json:"user"`
}

func newSessionResponse(message string, u domain.User, c domain.Credential) SessionResponse {
	return SessionResponse{
		Message:   message,
		Token:     c.Token,
		TokenType: c.TokenType,
		ExpiresIn: int64(c.ExpiresIn.Seconds()),
		User:      newUserResponse(u),
	}
}
