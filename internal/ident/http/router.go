package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/quokkaworks/ident/internal/ident/domain"
	"github.com/quokkaworks/ident/internal/ident/service"
	"github.com/quokkaworks/ident/internal/ident/store"
	"github.com/quokkaworks/ident/pkg/httpx"
	"github.com/quokkaworks/ident/pkg/jwtx"
	"github.com/quokkaworks/ident/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	Accounts *service.AccountService
	Users    *service.UserService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every endpoint. Call after the service fields are
// populated.
func (r *Router) ApplyRoutes() {
	r.registerSession()
	r.registerProtected()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSession() {
	r.Mux.Handle("POST /api/register", &RegisterHandler{Accounts: r.Accounts})
	r.Mux.Handle("POST /api/login", &LoginHandler{Accounts: r.Accounts})
	r.Mux.Handle("GET /api/verify-email/{token}", &VerifyEmailHandler{Accounts: r.Accounts})
	r.Mux.Handle("GET /api/auth/{provider}/callback", &ExternalCallbackHandler{Accounts: r.Accounts})
}

func (r *Router) registerProtected() {
	authn := httpx.AuthnMiddleware(r.verifier)
	adminOnly := RequireRole(domain.RoleAdmin)

	r.Mux.Handle("GET /api/profile",
		httpx.Chain(&ProfileHandler{Users: r.Users}, authn))

	r.Mux.Handle("GET /api/dashboard",
		httpx.Chain(DashboardHandler(), authn))

	r.Mux.Handle("GET /api/admin",
		httpx.Chain(AdminPanelHandler(), authn, adminOnly))

	r.Mux.Handle("GET /api/users",
		httpx.Chain(&UserListHandler{Users: r.Users}, authn, adminOnly))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
