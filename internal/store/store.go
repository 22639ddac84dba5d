// Package store opens the persistence backend selected by configuration.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shadazls/assignment-backend/internal/config"
	"github.com/shadazls/assignment-backend/internal/repository/memory"
	"github.com/shadazls/assignment-backend/internal/repository/mongo"
	"github.com/shadazls/assignment-backend/internal/repository/postgres"
	"github.com/shadazls/assignment-backend/internal/service"
)

type Store interface {
	service.UserRepository
	service.AssignmentRepository
	Close()
}

// Open connects to the configured backend and prepares its schema or
// indexes. It fails instead of falling back to another backend.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		s, err := mongo.NewStore(ctx, cfg.DatabaseURL, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		logger.Info("Connected to MongoDB", "database", cfg.MongoDatabase)
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		logger.Info("Connected to PostgreSQL")
		return s, nil
	case config.DriverMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
