package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/user/notes-saas/internal/adapter/api/handler"
	"github.com/user/notes-saas/internal/adapter/api/middleware"
	"github.com/user/notes-saas/internal/adapter/metrics"
	"github.com/user/notes-saas/internal/domain"
	"github.com/user/notes-saas/internal/pkg/config"
	"github.com/user/notes-saas/internal/usecase"
)

// NewRouter creates and configures the main HTTP router for the API service.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	m *metrics.APIMetrics,
	limiter middleware.RateLimiter,
	authUseCase usecase.AuthUseCase,
	noteUseCase usecase.NoteUseCase,
	tenantUseCase usecase.TenantUseCase,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.RateLimit(limiter, logger, m))

	authHandler := handler.NewAuthHandler(authUseCase, logger, m)
	noteHandler := handler.NewNoteHandler(noteUseCase, logger, m)
	tenantHandler := handler.NewTenantHandler(tenantUseCase, logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/auth/login", authHandler.Login)

	// Everything below requires a resolvable bearer token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(authUseCase, logger))

		r.Get("/auth/me", authHandler.Me)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", noteHandler.List)
			r.Post("/", noteHandler.Create)
			r.Get("/stats/limit", noteHandler.Usage)
			r.Get("/{noteID}", noteHandler.Get)
			r.Put("/{noteID}", noteHandler.Update)
			r.Delete("/{noteID}", noteHandler.Delete)
		})

		r.Route("/tenants/{slug}", func(r chi.Router) {
			r.Get("/info", tenantHandler.Info)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))
				r.Post("/upgrade", tenantHandler.Upgrade)
				r.Get("/users", tenantHandler.Users)
				r.Post("/invite", tenantHandler.Invite)
			})
		})
	})

	return r
}
