package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/repository"
	"github.com/shadazls/assignment-backend/pkg/jwt"
	"github.com/shadazls/assignment-backend/pkg/password"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidSeedSecret  = errors.New("invalid seed secret")
	ErrInvalidRole        = errors.New("unknown role")
	ErrRoleNotAllowed     = errors.New("role cannot be self-assigned")
)

// UserRepository is the user persistence every store backend provides.
// Lookups that find nothing return repository.ErrNotFound; writes that hit
// the unique email index return repository.ErrDuplicate.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByID never returns the password hash.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindAdmin(ctx context.Context) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id string, upd models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type TokenManager interface {
	Issue(identity jwt.Identity) (string, error)
	Verify(token string) (*jwt.Claims, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(password, hash string) bool
}

type AuthService struct {
	userRepo     UserRepository
	tokens       TokenManager
	passwordHash PasswordHasher
	seedSecret   string
	validate     *validator.Validate
	logger       *slog.Logger
}

func NewAuthService(
	userRepo UserRepository,
	tokens TokenManager,
	passwordHash PasswordHasher,
	seedSecret string,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		tokens:       tokens,
		passwordHash: passwordHash,
		seedSecret:   seedSecret,
		validate:     newValidator(),
		logger:       logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(s.validate, req); err != nil {
		return nil, err
	}

	// Set default role if not provided
	if req.Role == "" {
		req.Role = models.DefaultRole
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, req.Role)
	}
	if req.Role == models.RoleAdmin {
		s.logger.Warn("Registration requested admin role", "email", req.Email)
		return nil, ErrRoleNotAllowed
	}

	user, err := s.createUser(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if len(req.Password) > password.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, password.MaxPasswordBytes)
	}

	passwordHash, err := s.passwordHash.Hash(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", "email", req.Email, "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		Nom:          req.Nom,
		Classe:       req.Classe,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Warn("User already exists", "email", req.Email)
			return nil, ErrUserExists
		}
		s.logger.Error("Failed to create user", "email", req.Email, "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Login checks the credentials and issues a token. An unknown email and a
// wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (string, jwt.Identity, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(s.validate, req); err != nil {
		return "", jwt.Identity{}, err
	}

	s.logger.Debug("Attempting login", "email", req.Email)

	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("User not found", "email", req.Email)
			return "", jwt.Identity{}, ErrInvalidCredentials
		}
		s.logger.Error("Failed to get user by email", "email", req.Email, "error", err)
		return "", jwt.Identity{}, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.passwordHash.Check(req.Password, user.PasswordHash) {
		s.logger.Warn("Invalid password", "email", req.Email)
		return "", jwt.Identity{}, ErrInvalidCredentials
	}

	identity := jwt.Identity{
		ID:     user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		Nom:    user.Nom,
		Classe: user.Classe,
	}
	token, err := s.tokens.Issue(identity)
	if err != nil {
		s.logger.Error("Failed to generate access token", "user_id", user.ID, "error", err)
		return "", jwt.Identity{}, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return token, identity, nil
}

// VerifyToken is the single token check shared by every authenticated path.
func (s *AuthService) VerifyToken(token string) (*jwt.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.logger.Debug("Token verification failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// GetUser returns the stored user without its password hash.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// SeedAdmin checks the shared secret and then behaves like EnsureAdmin. The
// endpoint is closed when no secret is configured.
func (s *AuthService) SeedAdmin(ctx context.Context, secret string, req *models.CreateUserRequest) (*models.User, bool, error) {
	if s.seedSecret == "" || secret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.seedSecret)) != 1 {
		s.logger.Warn("Admin seeding rejected")
		return nil, false, ErrInvalidSeedSecret
	}
	return s.EnsureAdmin(ctx, req)
}

// EnsureAdmin returns the existing admin when there is one (created=false).
// Otherwise it creates an admin from req; the requested role is ignored.
// It never issues tokens, so it works on a service built without a
// TokenManager.
func (s *AuthService) EnsureAdmin(ctx context.Context, req *models.CreateUserRequest) (*models.User, bool, error) {
	existing, err := s.userRepo.FindAdmin(ctx)
	if err == nil {
		s.logger.Info("Admin already exists", "user_id", existing.ID, "email", existing.Email)
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to look up admin", "error", err)
		return nil, false, fmt.Errorf("failed to look up admin: %w", err)
	}

	req.Email = strings.TrimSpace(req.Email)
	if err := validate(s.validate, req); err != nil {
		return nil, false, err
	}
	req.Role = models.RoleAdmin

	user, err := s.createUser(ctx, req)
	if err != nil {
		return nil, false, err
	}

	s.logger.Info("Admin user created", "user_id", user.ID, "email", user.Email)
	return user, true, nil
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		s.logger.Error("Failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *AuthService) UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	if err := validate(s.validate, req); err != nil {
		return nil, err
	}
	if req.Role != nil && !req.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *req.Role)
	}

	user, err := s.userRepo.UpdateUser(ctx, id, *req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrUserExists
		}
		s.logger.Error("Failed to update user", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated", "user_id", id)
	return user, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, id string) error {
	if err := s.userRepo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("Failed to delete user", "user_id", id, "error", err)
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", id)
	return nil
}
