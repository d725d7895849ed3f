package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/quokkaworks/ident/pkg/apierr"
	"github.com/quokkaworks/ident/pkg/jwtx"
	"github.com/quokkaworks/ident/pkg/slogx"
)

// AuthnMiddleware validates the bearer token on each request and injects the
// claims into the request context. Validation is a pure function of the
// token bytes plus current time; no session state spans requests.
//
// Responses distinguish three cases the client cares about: no credential
// supplied, expired token (re-authenticate), and invalid token (tampered or
// malformed).
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				setBearerChallenge(w, "invalid_token")
				apierr.ErrMissingToken.WriteError(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrExpired) {
					setBearerChallenge(w, "invalid_token")
					apierr.ErrTokenExpired.WriteError(w)
					return
				}
				log.Warn("token verification failed", "err", err)
				setBearerChallenge(w, "invalid_token")
				apierr.ErrInvalidToken.WriteError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, claims)))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750 challenge header for bearer auth failures.
func setBearerChallenge(w http.ResponseWriter, code string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="`+code+`"`)
}
