package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Env             string
	Port            string
	StoreDriver     string
	DatabaseURL     string
	MongoDatabase   string
	JWTSecret       string
	JWTExpiration   time.Duration
	SeedAdminSecret string
	BcryptCost      int
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Load reads the configuration from the environment, after merging a .env
// file from the working directory when one exists. Every missing or invalid
// value is reported in the returned error.
func Load() (*Config, error) {
	return load(true)
}

// LoadStore is Load for tools that only touch the store: JWT_SECRET is not
// required.
func LoadStore() (*Config, error) {
	return load(false)
}

func load(requireJWT bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var errs []error

	cfg := &Config{
		Env:             getEnv("ENV", "development"),
		Port:            getEnv("PORT", "8010"),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		MongoDatabase:   getEnv("MONGO_DATABASE", "assignmentsDB"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		SeedAdminSecret: getEnv("SEED_ADMIN_SECRET", ""),
		CORSOrigins:     splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	switch cfg.StoreDriver {
	case DriverMongo, DriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, fmt.Errorf("DATABASE_URL is required for store driver %q", cfg.StoreDriver))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not one of mongo, postgres, memory", cfg.StoreDriver))
	}

	if requireJWT && cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	expiration, err := ParseDuration(getEnv("JWT_EXPIRES", "7d"))
	if err != nil {
		errs = append(errs, fmt.Errorf("JWT_EXPIRES: %w", err))
	} else if expiration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES must be positive"))
	}
	cfg.JWTExpiration = expiration

	cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", 10)
	if err != nil {
		errs = append(errs, err)
	}

	cfg.ShutdownTimeout, err = ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return cfg, nil
}

// ParseDuration accepts everything time.ParseDuration does plus a whole
// number of days written as "<n>d", e.g. "7d".
func ParseDuration(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return intValue, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
