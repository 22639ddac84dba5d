package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shadazls/assignment-backend/internal/metrics"
	"github.com/shadazls/assignment-backend/internal/middleware"
	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/response"
	"github.com/shadazls/assignment-backend/internal/service"
)

type RouterConfig struct {
	AuthService       *service.AuthService
	AssignmentService *service.AssignmentService
	Metrics           *metrics.HTTP
	Logger            *slog.Logger
	CORSOrigins       []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.AuthService, cfg.Logger)
	assignmentHandler := NewAssignmentHandler(cfg.AssignmentService, cfg.Logger)

	authenticate := middleware.Authenticate(cfg.AuthService, cfg.AuthService, cfg.Logger)
	requireAdmin := middleware.RequireRole(models.RoleAdmin)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Observe(cfg.Logger, cfg.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", seedSecretHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", cfg.Metrics.Handler())

	r.Route("/api/assignments", func(r chi.Router) {
		r.Get("/", assignmentHandler.List)
		r.Post("/", assignmentHandler.Create)
		r.Get("/stats", assignmentHandler.Stats)
		r.Get("/{id}", assignmentHandler.Get)
		r.Put("/{id}", assignmentHandler.Update)
		r.Delete("/{id}", assignmentHandler.Delete)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/seed-admin", authHandler.SeedAdmin)
		r.With(authenticate).Get("/me", authHandler.Me)

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticate, requireAdmin)
			r.Get("/", authHandler.ListUsers)
			r.Put("/{id}", authHandler.UpdateUser)
			r.Delete("/{id}", authHandler.DeleteUser)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "route not found", nil)
	})

	return r
}
