package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/metrics"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/pkg/httpx"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

// Pinger is a dependency checked by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	Auth         *service.AuthService
	Metrics      *metrics.Metrics // optional; /metrics is not mounted when nil
	Database     Pinger
	SessionStore Pinger
}

func NewRouter(auth *service.AuthService, buildVersion string, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		Auth:         auth,
		Database:     auth.Store,
		SessionStore: auth.Sessions,
		Metrics:      auth.Metrics,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()
}

// ServeHTTP applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// verifier adapts AuthService.Verify to the middleware, keeping store
// outages apart from bad tokens.
func (r *Router) verifier() httpx.Verifier {
	return httpx.VerifierFunc(func(ctx context.Context, token string) (httpx.Identity, error) {
		id, err := r.Auth.Verify(ctx, token)
		if errors.Is(err, service.ErrStoreUnavailable) {
			return httpx.Identity{}, errors.Join(httpx.ErrUnavailable, err)
		}
		if err != nil {
			return httpx.Identity{}, err
		}
		return httpx.Identity{SubjectID: id.SubjectID, SubjectName: id.SubjectName, Role: id.Role}, nil
	})
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Auth: r.Auth}

	r.Mux.Handle("POST /auth/register", http.HandlerFunc(h.HandleRegister))
	r.Mux.Handle("POST /auth/login", http.HandlerFunc(h.HandleLogin))
	r.Mux.Handle("POST /auth/refresh", http.HandlerFunc(h.HandleRefresh))

	// Logout reads the bearer itself so a second call with a revoked token
	// still succeeds.
	r.Mux.Handle("POST /auth/logout", http.HandlerFunc(h.HandleLogout))

	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier()),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Auth: r.Auth}

	r.Mux.Handle("GET /users",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier()),
			httpx.RequireRole(domain.RoleAdmin),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.Database, r.SessionStore))
	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}
