package http

import (
	"net/http"
	"strings"

	"github.com/quokkaworks/ident/internal/ident/domain"
	"github.com/quokkaworks/ident/pkg/apierr"
	"github.com/quokkaworks/ident/pkg/httpx"
	"github.com/quokkaworks/ident/pkg/slogx"
)

// forbiddenResponse tells the denied caller what it would have needed. Runs
// strictly after authentication, so naming the caller's own role leaks
// nothing.
type forbiddenResponse struct {
	Error         string   `json:"error"`
	Description   string   `json:"error_description"`
	YourRole      string   `json:"your_role"`
	RequiredRoles []string `json:"required_roles"`
}

// RequireRole admits only authenticated callers whose role is in the
// required set. Must be chained inside httpx.AuthnMiddleware.
func RequireRole(required ...domain.Role) httpx.Middleware {
	names := make([]string, len(required))
	for i, r := range required {
		names[i] = r.String()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleStr, ok := httpx.RoleFromContext(r.Context())
			if !ok {
				apierr.ErrInvalidToken.WriteError(w)
				return
			}

			// A signed token carrying an unknown role stays outside
			// every required set; it is not a 401.
			role := domain.Role(roleStr)

			if d := domain.Authorize(role, required...); !d.Allowed {
				log := slogx.FromContext(r.Context())
				log.Warn("access denied",
					"role", d.Role.String(),
					"required", names,
					"path", r.URL.Path,
				)

				httpx.WriteJSON(w, http.StatusForbidden, forbiddenResponse{
					Error:         apierr.CodeForbidden,
					Description:   "requires one of these roles: " + strings.Join(names, ", "),
					YourRole:      d.Role.String(),
					RequiredRoles: names,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
