package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/repository"
)

const publicUserColumns = "id::text, email, role, nom, classe, created_at"

func scanPublicUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.Nom,
		&user.Classe,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, nom, classe, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	id := uuid.New()
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, query,
		id,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.Nom,
		user.Classe,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id.String()
	user.CreatedAt = createdAt
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	query := "SELECT " + publicUserColumns + " FROM users WHERE id = $1"
	user, err := scanPublicUser(s.db.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id::text, email, password_hash, role, nom, classe, created_at
		FROM users
		WHERE email = $1
	`

	var user models.User
	err := s.db.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Nom,
		&user.Classe,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

func (s *Store) FindAdmin(ctx context.Context) (*models.User, error) {
	query := "SELECT " + publicUserColumns + " FROM users WHERE role = $1 ORDER BY created_at LIMIT 1"
	user, err := scanPublicUser(s.db.QueryRow(ctx, query, string(models.RoleAdmin)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.Query(ctx, "SELECT "+publicUserColumns+" FROM users ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanPublicUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

type columnValue struct {
	column string
	value  interface{}
}

// userUpdates maps the request onto column assignments. password_hash is not
// reachable from here.
func userUpdates(upd models.UpdateUserRequest) []columnValue {
	var updates []columnValue
	if upd.Email != nil {
		updates = append(updates, columnValue{"email", *upd.Email})
	}
	if upd.Role != nil {
		updates = append(updates, columnValue{"role", string(*upd.Role)})
	}
	if upd.Nom != nil {
		updates = append(updates, columnValue{"nom", *upd.Nom})
	}
	if upd.Classe != nil {
		updates = append(updates, columnValue{"classe", *upd.Classe})
	}
	return updates
}

// setClause renders "col1 = $1, col2 = $2" and the matching parameters.
func setClause(updates []columnValue) (string, []interface{}) {
	parts := make([]string, 0, len(updates))
	params := make([]interface{}, 0, len(updates))
	for i, u := range updates {
		parts = append(parts, fmt.Sprintf("%s = $%d", u.column, i+1))
		params = append(params, u.value)
	}
	return strings.Join(parts, ", "), params
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd models.UpdateUserRequest) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.ErrNotFound
	}

	if upd.Empty() {
		return s.GetUserByID(ctx, id)
	}

	set, params := setClause(userUpdates(upd))
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s", set, len(params)+1, publicUserColumns)
	params = append(params, uid)

	user, err := scanPublicUser(s.db.QueryRow(ctx, query, params...))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, repository.ErrNotFound
		case isUniqueViolation(err):
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return repository.ErrNotFound
	}

	tag, err := s.db.Exec(ctx, "DELETE FROM users WHERE id = $1", uid)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
