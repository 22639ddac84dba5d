package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/repository"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// assignmentWhere renders f as a WHERE clause (empty when f matches
// everything) and its positional parameters, numbered from $1.
func assignmentWhere(f models.AssignmentFilter) (string, []interface{}) {
	var conds []string
	var params []interface{}
	arg := func(v interface{}) string {
		params = append(params, v)
		return fmt.Sprintf("$%d", len(params))
	}

	if f.Search != "" {
		conds = append(conds, "nom ILIKE "+arg("%"+likeEscaper.Replace(f.Search)+"%")+` ESCAPE '\'`)
	}

	switch f.Status {
	case models.StatusPending:
		conds = append(conds, "NOT rendu", "date_de_rendu >= "+arg(f.Now))
	case models.StatusOverdue:
		conds = append(conds, "NOT rendu", "date_de_rendu < "+arg(f.Now))
	case models.StatusCompleted:
		conds = append(conds, "rendu")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), params
}

func (s *Store) CreateAssignment(ctx context.Context, a models.Assignment) error {
	query := `
		INSERT INTO assignments (id, nom, date_de_rendu, rendu)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.Exec(ctx, query, a.ID, a.Nom, a.DateDeRendu, a.Rendu)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, id int64) (*models.Assignment, error) {
	query := "SELECT id, nom, date_de_rendu, rendu FROM assignments WHERE id = $1"

	var a models.Assignment
	err := s.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Nom, &a.DateDeRendu, &a.Rendu)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return &a, nil
}

func (s *Store) ListAssignments(ctx context.Context, f models.AssignmentFilter, p models.PageRequest) ([]models.Assignment, int64, error) {
	p = p.Normalize()
	where, params := assignmentWhere(f)

	query := fmt.Sprintf(
		"SELECT id, nom, date_de_rendu, rendu, COUNT(*) OVER () FROM assignments%s ORDER BY seq LIMIT $%d OFFSET $%d",
		where, len(params)+1, len(params)+2,
	)
	rows, err := s.db.Query(ctx, query, append(params, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	docs := []models.Assignment{}
	var total int64
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.Nom, &a.DateDeRendu, &a.Rendu, &total); err != nil {
			return nil, 0, fmt.Errorf("failed to scan assignment: %w", err)
		}
		docs = append(docs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}

	// A page past the end carries no window count.
	if len(docs) == 0 && p.Page > 1 {
		if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM assignments"+where, params...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to count assignments: %w", err)
		}
	}

	return docs, total, nil
}

func (s *Store) AssignmentStats(ctx context.Context, now time.Time) (models.AssignmentStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE NOT rendu AND date_de_rendu < $1),
			COUNT(*) FILTER (WHERE NOT rendu AND date_de_rendu >= $1),
			COUNT(*) FILTER (WHERE rendu),
			COUNT(*)
		FROM assignments
	`

	var stats models.AssignmentStats
	err := s.db.QueryRow(ctx, query, now).Scan(&stats.Overdue, &stats.Pending, &stats.Completed, &stats.Total)
	if err != nil {
		return models.AssignmentStats{}, fmt.Errorf("failed to compute assignment stats: %w", err)
	}
	return stats, nil
}

func assignmentUpdates(upd models.AssignmentUpdate) []columnValue {
	var updates []columnValue
	if upd.ID != nil {
		updates = append(updates, columnValue{"id", *upd.ID})
	}
	if upd.Nom != nil {
		updates = append(updates, columnValue{"nom", *upd.Nom})
	}
	if upd.DateDeRendu != nil {
		updates = append(updates, columnValue{"date_de_rendu", *upd.DateDeRendu})
	}
	if upd.Rendu != nil {
		updates = append(updates, columnValue{"rendu", *upd.Rendu})
	}
	return updates
}

func (s *Store) UpdateAssignment(ctx context.Context, id int64, upd models.AssignmentUpdate) error {
	if upd.Empty() {
		var exists bool
		err := s.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM assignments WHERE id = $1)", id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to find assignment: %w", err)
		}
		if !exists {
			return repository.ErrNotFound
		}
		return nil
	}

	set, params := setClause(assignmentUpdates(upd))
	query := fmt.Sprintf("UPDATE assignments SET %s WHERE id = $%d", set, len(params)+1)

	tag, err := s.db.Exec(ctx, query, append(params, id)...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteAssignment(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM assignments WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
