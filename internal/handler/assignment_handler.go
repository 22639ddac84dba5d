package handler

import (
	"log/slog"
	"net/http"

	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/response"
	"github.com/shadazls/assignment-backend/internal/service"
)

type AssignmentHandler struct {
	assignments *service.AssignmentService
	logger      *slog.Logger
}

func NewAssignmentHandler(assignments *service.AssignmentService, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		logger:      logger,
	}
}

// List serves ?page=&limit=&search=&status=.
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.assignments.List(r.Context(), service.ListQuery{
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
		Search: q.Get("search"),
		Status: q.Get("status"),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *AssignmentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.assignments.Stats(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := assignmentID(w, r)
	if !ok {
		return
	}

	a, err := h.assignments.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, a)
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssignmentRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := h.assignments.Create(r.Context(), &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.Message{Message: "assignment saved"})
}

func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := assignmentID(w, r)
	if !ok {
		return
	}

	var req models.UpdateAssignmentRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := h.assignments.Update(r.Context(), id, &req); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "assignment updated"})
}

func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := assignmentID(w, r)
	if !ok {
		return
	}

	if err := h.assignments.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "assignment deleted"})
}
