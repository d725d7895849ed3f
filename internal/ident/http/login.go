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

type LoginHandler struct {
	Accounts *service.AccountService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP handles POST /api/login. Unknown email and wrong password both
// come back as the same invalid_credentials 401.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.ErrValidation.WithDescription("request body must be JSON").WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		apierr.ErrValidation.WithDescription("email and password are required").WriteError(w)
		return
	}

	user, cred, err := h.Accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apierr.ErrInvalidCredentials.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		apierr.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK,
		newSessionResponse("login successful", user, cred))
}
