package http

import (
	"net/http"

	"github.com/quokkaworks/ident/internal/ident/service"
	"github.com/quokkaworks/ident/pkg/apierr"
	"github.com/quokkaworks/ident/pkg/httpx"
	"github.com/quokkaworks/ident/pkg/slogx"
)

var adminPanelFeatures = []string{
	"User Management",
	"System Settings",
	"View All Data",
	"Admin Controls",
}

type adminPanelResponse struct {
	Message  string   `json:"message"`
	UserID   string   `json:"user_id"`
	Role     string   `json:"role"`
	Features []string `json:"features"`
}

// AdminPanelHandler handles GET /api/admin, reachable only through the
// admin role gate.
func AdminPanelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.ClaimsFromContext(r.Context())
		if !ok {
			apierr.ErrInvalidToken.WriteError(w)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, adminPanelResponse{
			Message:  "welcome to the admin panel",
			UserID:   claims.Subject,
			Role:     claims.Role,
			Features: adminPanelFeatures,
		})
	}
}

type UserListHandler struct {
	Users *service.UserService
}

type userListResponse struct {
	Count int            `json:"count"`
	Users []UserResponse `json:"users"`
}

// ServeHTTP handles GET /api/users (admin only). Secret fields never leave
// the store layer's domain type; the wire type has no hash field at all.
func (h *UserListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.Users.ListUsers(ctx)
	if err != nil {
		log.Error("failed to list users", "err", err)
		apierr.ErrServerError.WriteError(w)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, userListResponse{
		Count: len(out),
		Users: out,
	})
}
