package http

import (
	"errors"
	"net/http"

	"github.com/quokkaworks/ident/internal/ident/service"
	"github.com/quokkaworks/ident/pkg/apierr"
	"github.com/quokkaworks/ident/pkg/httpx"
	"github.com/quokkaworks/ident/pkg/slogx"
)

type VerifyEmailHandler struct {
	Accounts *service.AccountService
}

type verifyEmailResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// ServeHTTP handles GET /api/verify-email/{token}.
func (h *VerifyEmailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.PathValue("token")

	user, err := h.Accounts.VerifyEmail(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrVerificationNotFound) {
			apierr.ErrNotFound.
				WithDescription("verification token not found or expired").
				WriteError(w)
			return
		}
		log.Error("email verification failed", "err", err)
		apierr.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, verifyEmailResponse{
		Message: "email verified successfully",
		User:    newUserResponse(user),
	})
}
