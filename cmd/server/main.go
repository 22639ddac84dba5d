package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shadazls/assignment-backend/internal/config"
	"github.com/shadazls/assignment-backend/internal/handler"
	"github.com/shadazls/assignment-backend/internal/metrics"
	"github.com/shadazls/assignment-backend/internal/service"
	"github.com/shadazls/assignment-backend/internal/store"
	"github.com/shadazls/assignment-backend/pkg/jwt"
	"github.com/shadazls/assignment-backend/pkg/password"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store
	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	db, err := store.Open(connectCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("Failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize utilities
	jwtManager := jwt.NewManager(cfg.JWTSecret, cfg.JWTExpiration)
	passwordHasher := password.NewHasher(cfg.BcryptCost)

	// Initialize services
	authService := service.NewAuthService(db, jwtManager, passwordHasher, cfg.SeedAdminSecret, logger)
	assignmentService := service.NewAssignmentService(db, logger)

	logger.Info("Token issuer configured", "ttl", jwtManager.TTL())
	if cfg.SeedAdminSecret == "" {
		logger.Info("SEED_ADMIN_SECRET not set, admin seeding endpoint disabled")
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handler.NewRouter(handler.RouterConfig{
			AuthService:       authService,
			AssignmentService: assignmentService,
			Metrics:           metrics.NewHTTP(),
			Logger:            logger,
			CORSOrigins:       cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting assignment service", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Failed to serve HTTP", "error", err)
			db.Close()
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case "development":
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	default:
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	return logger
}
