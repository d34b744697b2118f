package api

import (
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/go-chi/chi/v5"

	"github.com/storehub/authcore/internal/api/handler"
	"github.com/storehub/authcore/internal/api/middleware"
	"github.com/storehub/authcore/internal/audit"
	"github.com/storehub/authcore/internal/authn"
	"github.com/storehub/authcore/internal/identity"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Provider      identity.Provider
	Authenticator *authn.Authenticator
	Recorder      audit.Recorder
	Version       string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)

	healthHandler := handler.NewHealthHandler(deps.Provider, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	sessionHandler := handler.NewSessionHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Authenticate(deps.Authenticator, deps.Recorder))

		r.Get("/session", sessionHandler.Get)
		r.Delete("/session", sessionHandler.Delete)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth())
			r.Get("/me", sessionHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(identity.RoleAdmin))
			r.Get("/admin/ping", handler.NewProbeHandler("admin").ServeHTTP)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(identity.RoleStore))
			r.Get("/store/ping", handler.NewProbeHandler("store").ServeHTTP)
		})
	})

	return r
}
