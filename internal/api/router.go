package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/profilesync/internal/api/handler"
	customMiddleware "github.com/Rrens/profilesync/internal/api/middleware"
	"github.com/Rrens/profilesync/internal/config"
	"github.com/Rrens/profilesync/internal/metrics"
	"github.com/Rrens/profilesync/internal/preference"
	"github.com/Rrens/profilesync/internal/service"
)

// Deps are the components the router serves.
type Deps struct {
	Session     *service.SessionService
	Tokens      handler.TokenSource
	Preferences *preference.Store
	Metrics     *metrics.Metrics
	// Storage is pinged by the readiness check; nil for in-process backends.
	Storage handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.Metrics.Handler())
	}

	sessionHandler := handler.NewSessionHandler(deps.Session, deps.Tokens)
	profileHandler := handler.NewProfileHandler(deps.Session)
	panelHandler := handler.NewPanelHandler(deps.Session, deps.Metrics)
	preferencesHandler := handler.NewPreferencesHandler(deps.Preferences)

	requireSession := customMiddleware.RequireSession(deps.Session)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Storage))

		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.Status)
			r.Post("/login", sessionHandler.Login)
			r.Post("/register", sessionHandler.Register)
			r.Post("/logout", sessionHandler.Logout)
		})

		// Local only; usable signed out.
		r.Get("/preferences", preferencesHandler.Get)
		r.Put("/preferences", preferencesHandler.Update)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", profileHandler.Get)
				r.Put("/", profileHandler.Update)
				r.Delete("/", profileHandler.Delete)
				r.Post("/password", profileHandler.ChangePassword)
			})

			r.Route("/panels/{panel}", func(r chi.Router) {
				r.Get("/", panelHandler.Get)
				r.Post("/activate", panelHandler.Activate)
				r.Put("/fields/{field}", panelHandler.SetField)
			})
		})
	})

	return r
}
