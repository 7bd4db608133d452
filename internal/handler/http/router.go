package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/TodoGo/internal/service"
	"github.com/utafrali/TodoGo/pkg/health"
	"github.com/utafrali/TodoGo/pkg/middleware"
)

// NewRouter creates a chi router with all API routes registered.
func NewRouter(
	authService *service.AuthService,
	todoService *service.TodoService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("todo"))
	r.Use(middleware.Tracing("todo-api"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Token validator backed by the auth service so revoked tokens and
	// deleted users are rejected, not just bad signatures.
	tokenValidator := func(ctx context.Context, token string) (*middleware.Claims, error) {
		user, err := authService.CurrentUser(ctx, token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID:   user.ID,
			Username: user.Username,
			Email:    user.Email,
		}, nil
	}

	authHandler := NewAuthHandler(authService, logger)

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))
			r.Post("/logout", authHandler.Logout)
		})
	})

	// User profile (auth required)
	userHandler := NewUserHandler(authService, logger)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/profile", userHandler.GetProfile)
	})

	// List and task endpoints (auth required)
	listHandler := NewListHandler(todoService, logger)
	taskHandler := NewTaskHandler(todoService, logger)

	r.Route("/api/v1/lists", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/", listHandler.List)
		r.Post("/", listHandler.Create)
		r.Get("/{id}", listHandler.Get)
		r.Patch("/{id}", listHandler.Update)
		r.Delete("/{id}", listHandler.Delete)

		r.Get("/{listId}/tasks", taskHandler.List)
		r.Post("/{listId}/tasks", taskHandler.Create)
	})

	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(middleware.Auth(tokenValidator))

		r.Get("/{id}", taskHandler.Get)
		r.Patch("/{id}", taskHandler.Update)
		r.Delete("/{id}", taskHandler.Delete)
	})

	return r
}
