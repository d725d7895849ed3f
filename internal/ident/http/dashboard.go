package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/quokkaworks/ident/internal/ident/domain"
	"github.com/quokkaworks/ident/pkg/apierr"
	"github.com/quokkaworks/ident/pkg/httpx"
)

var (
	adminFeatures = []string{"View Reports", "Manage Users", "System Settings"}
	userFeatures  = []string{"View Profile", "Update Settings", "View History"}
)

type dashboardResponse struct {
	Message   string    `json:"message"`
	Greeting  string    `json:"greeting"`
	Role      string    `json:"role"`
	Features  []string  `json:"features"`
	Timestamp time.Time `json:"timestamp"`
}

// DashboardHandler handles GET /api/dashboard for any authenticated caller.
// The feature list depends on the caller's role only.
func DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := httpx.ClaimsFromContext(r.Context())
		if !ok {
			apierr.ErrInvalidToken.WriteError(w)
			return
		}

		features := userFeatures
		if claims.Role == domain.RoleAdmin.String() {
			features = adminFeatures
		}

		httpx.WriteJSON(w, http.StatusOK, dashboardResponse{
			Message:   "welcome to your dashboard",
			Greeting:  fmt.Sprintf("Hello, %s!", claims.Username),
			Role:      claims.Role,
			Features:  features,
			Timestamp: time.Now().UTC(),
		})
	}
}
