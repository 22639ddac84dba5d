package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/repository"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrAssignmentExists   = errors.New("assignment id already in use")
)

type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, a models.Assignment) error
	GetAssignment(ctx context.Context, id int64) (*models.Assignment, error)
	// ListAssignments returns one page of the matches, in the store's natural
	// order, and the total number of matches.
	ListAssignments(ctx context.Context, f models.AssignmentFilter, p models.PageRequest) ([]models.Assignment, int64, error)
	AssignmentStats(ctx context.Context, now time.Time) (models.AssignmentStats, error)
	UpdateAssignment(ctx context.Context, id int64, upd models.AssignmentUpdate) error
	DeleteAssignment(ctx context.Context, id int64) error
}

type ListQuery struct {
	Page   int
	Limit  int
	Search string
	Status string
}

type AssignmentService struct {
	repo     AssignmentRepository
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func NewAssignmentService(repo AssignmentRepository, logger *slog.Logger) *AssignmentService {
	return &AssignmentService{
		repo:     repo,
		validate: newValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *AssignmentService) List(ctx context.Context, q ListQuery) (models.Page[models.Assignment], error) {
	page := models.PageRequest{Page: q.Page, Limit: q.Limit}.Normalize()
	filter := models.AssignmentFilter{
		Search: strings.TrimSpace(q.Search),
		Status: models.ParseStatus(q.Status),
		Now:    s.now(),
	}

	docs, total, err := s.repo.ListAssignments(ctx, filter, page)
	if err != nil {
		s.logger.Error("Failed to list assignments", "error", err)
		return models.Page[models.Assignment]{}, fmt.Errorf("failed to list assignments: %w", err)
	}
	return models.NewPage(docs, total, page), nil
}

func (s *AssignmentService) Stats(ctx context.Context) (models.AssignmentStats, error) {
	stats, err := s.repo.AssignmentStats(ctx, s.now())
	if err != nil {
		s.logger.Error("Failed to compute assignment stats", "error", err)
		return models.AssignmentStats{}, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

func (s *AssignmentService) Get(ctx context.Context, id int64) (*models.Assignment, error) {
	a, err := s.repo.GetAssignment(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("Failed to get assignment", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return a, nil
}

func (s *AssignmentService) Create(ctx context.Context, req *models.CreateAssignmentRequest) error {
	if err := validate(s.validate, req); err != nil {
		return err
	}

	a := req.Assignment()
	if err := s.repo.CreateAssignment(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAssignmentExists
		}
		s.logger.Error("Failed to create assignment", "id", a.ID, "error", err)
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info("Assignment created", "id", a.ID)
	return nil
}

// Update sets the fields present in req on the assignment with the given id.
func (s *AssignmentService) Update(ctx context.Context, id int64, req *models.UpdateAssignmentRequest) error {
	if err := s.repo.UpdateAssignment(ctx, id, req.Update()); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrAssignmentNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return ErrAssignmentExists
		}
		s.logger.Error("Failed to update assignment", "id", id, "error", err)
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	s.logger.Info("Assignment updated", "id", id)
	return nil
}

func (s *AssignmentService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteAssignment(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("Failed to delete assignment", "id", id, "error", err)
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	s.logger.Info("Assignment deleted", "id", id)
	return nil
}
