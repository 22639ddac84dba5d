package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shadazls/assignment-backend/internal/response"
	"github.com/shadazls/assignment-backend/internal/service"
)

// writeServiceError maps a service error onto its HTTP status. Anything
// unrecognised is a server error carrying the diagnostic.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidRole):
		response.Error(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(w, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, service.ErrInvalidToken):
		response.Error(w, http.StatusUnauthorized, "invalid token", err)
	case errors.Is(err, service.ErrRoleNotAllowed), errors.Is(err, service.ErrInvalidSeedSecret):
		response.Error(w, http.StatusForbidden, err.Error(), nil)
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrAssignmentNotFound):
		response.Error(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, service.ErrUserExists), errors.Is(err, service.ErrAssignmentExists):
		response.Error(w, http.StatusConflict, err.Error(), nil)
	default:
		logger.Error("Request failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "server error", err)
	}
}
