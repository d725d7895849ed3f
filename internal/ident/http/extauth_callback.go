package http

import (
	"errors"
	"net/http"

	"github.com/quokkaworks/ident/internal/ident/extauth"
	"github.com/quokkaworks/ident/internal/ident/service"
	"github.com/quokkaworks/ident/pkg/apierr"
	"github.com/quokkaworks/ident/pkg/httpx"
	"github.com/quokkaworks/ident/pkg/slogx"
)

type ExternalCallbackHandler struct {
	Accounts *service.AccountService
}

// ServeHTTP handles GET /api/auth/{provider}/callback. The provider
// redirects here with ?code=...; the code is exchanged for an external
// identity which on first contact becomes a local one.
func (h *ExternalCallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	provider := r.PathValue("provider")
	code := r.URL.Query().Get("code")
	if code == "" {
		apierr.ErrValidation.WithDescription("missing code parameter").WriteError(w)
		return
	}

	user, cred, err := h.Accounts.ExternalLogin(ctx, provider, code)
	if err != nil {
		switch {
		case errors.Is(err, extauth.ErrUnknownProvider):
			apierr.ErrNotFound.WithDescription("unknown provider").WriteError(w)
		case errors.Is(err, extauth.ErrExchangeFailed):
			apierr.ErrInvalidCredentials.
				WithDescription("authorization code was rejected").
				WriteError(w)
		default:
			log.Error("external login failed", "provider", provider, "err", err)
			apierr.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK,
		newSessionResponse("login successful", user, cred))
}
