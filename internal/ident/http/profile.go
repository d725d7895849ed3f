package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/quokkaworks/ident/internal/ident/service"
	"github.com/quokkaworks/ident/internal/ident/store"
	"github.com/quokkaworks/ident/pkg/apierr"
	"github.com/quokkaworks/ident/pkg/httpx"
	"github.com/quokkaworks/ident/pkg/slogx"
)

type ProfileHandler struct {
	Users *service.UserService
}

type tokenInfo struct {
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

type profileResponse struct {
	Message   string       `json:"message"`
	User      UserResponse `json:"user"`
	TokenInfo tokenInfo    `json:"token_info"`
}

// ServeHTTP handles GET /api/profile. The identity is re-read from the
// store so the response reflects current state, not the claims snapshot.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok || userID == "" {
		apierr.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.Users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			apierr.ErrNotFound.WithDescription("user not found").WriteError(w)
			return
		}
		log.Error("failed to load user", "user_id", userID, "err", err)
		apierr.ErrServerError.WriteError(w)
		return
	}

	claims, _ := httpx.ClaimsFromContext(ctx)

	resp := profileResponse{
		Message: "protected profile data",
		User:    newUserResponse(user),
		TokenInfo: tokenInfo{
			IssuedAt:  claims.IssuedAt.Time,
			ExpiresAt: claims.ExpiresAt.Time,
			Role:      claims.Role,
		},
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, resp)
}
