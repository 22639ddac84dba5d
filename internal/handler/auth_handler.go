package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shadazls/assignment-backend/internal/middleware"
	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/response"
	"github.com/shadazls/assignment-backend/internal/service"
	"github.com/shadazls/assignment-backend/pkg/jwt"
)

const seedSecretHeader = "X-Seed-Secret"

type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

type userResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  jwt.Identity `json:"user"`
}

type seedAdminRequest struct {
	models.CreateUserRequest
	Secret string `json:"secret,omitempty"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusCreated, userResponse{Message: "user created", User: user})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	h.logger.Debug("Login request received", "email", req.Email)

	token, identity, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{Token: token, User: identity})
}

// Me returns the caller's stored record. It must run behind
// middleware.Authenticate.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if user := middleware.CurrentUserFromContext(r.Context()); user != nil {
		response.JSON(w, http.StatusOK, user)
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		response.Error(w, http.StatusUnauthorized, "missing token", nil)
		return
	}

	user, err := h.authService.GetUser(r.Context(), claims.Identity.ID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) SeedAdmin(w http.ResponseWriter, r *http.Request) {
	var req seedAdminRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	secret := r.Header.Get(seedSecretHeader)
	if secret == "" {
		secret = req.Secret
	}

	user, created, err := h.authService.SeedAdmin(r.Context(), secret, &req.CreateUserRequest)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if !created {
		response.JSON(w, http.StatusOK, userResponse{Message: "admin already exists", User: user})
		return
	}
	response.JSON(w, http.StatusCreated, userResponse{Message: "admin created", User: user})
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.JSON(w, http.StatusOK, users)
}

// UpdateUser applies email, role, nom and classe. Any other body field,
// password included, is ignored.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	user, err := h.authService.UpdateUser(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "user deleted"})
}
