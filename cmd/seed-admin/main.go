// Command seed-admin creates the first admin account when none exists.
//
// It reads SEED_EMAIL, SEED_PASSWORD and SEED_NOM on top of the store
// configuration; JWT_SECRET is not needed. It exits 0 without changes when
// an admin is already present.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/shadazls/assignment-backend/internal/config"
	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/service"
	"github.com/shadazls/assignment-backend/internal/store"
	"github.com/shadazls/assignment-backend/pkg/password"
)

func main() {
	cfg, err := config.LoadStore()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Admin seeding failed", "error", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// Seeding never issues tokens, so no token manager is wired.
	authService := service.NewAuthService(
		db,
		nil,
		password.NewHasher(cfg.BcryptCost),
		cfg.SeedAdminSecret,
		logger,
	)

	user, created, err := authService.EnsureAdmin(ctx, &models.CreateUserRequest{
		Email:    os.Getenv("SEED_EMAIL"),
		Password: os.Getenv("SEED_PASSWORD"),
		Nom:      getEnv("SEED_NOM", "Admin Seed"),
	})
	if err != nil {
		return err
	}

	if created {
		logger.Info("Admin created", "user_id", user.ID, "email", user.Email)
	} else {
		logger.Info("Admin already exists, nothing to do", "user_id", user.ID, "email", user.Email)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
