package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quokkaworks/ident/internal/ident/service"
	"github.com/quokkaworks/ident/pkg/apierr"
	"github.com/quokkaworks/ident/pkg/httpx"
	"github.com/quokkaworks/ident/pkg/slogx"
)

type RegisterHandler struct {
	Accounts *service.AccountService
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP handles POST /api/register.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrValidation.WithDescription("request body must be JSON").WriteError(w)
		return
	}

	user, cred, err := h.Accounts.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		var dup *service.DuplicateError
		switch {
		case errors.As(err, &dup):
			apierr.ErrDuplicate.WithField(dup.Field).WriteError(w)
		case errors.Is(err, service.ErrInvalidInput):
			apierr.ErrValidation.WriteError(w)
		default:
			log.Error("registration failed", "err", err)
			apierr.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated,
		newSessionResponse("user registered successfully", user, cred))
}
