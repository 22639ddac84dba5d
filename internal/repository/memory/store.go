// Package memory is a thread-safe in-memory store used by tests and by
// STORE_DRIVER=memory for local development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shadazls/assignment-backend/internal/models"
	"github.com/shadazls/assignment-backend/internal/repository"
)

type Store struct {
	mu sync.RWMutex

	users       []*models.User // insertion order
	assignments []*models.Assignment
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Close() {}

// ---------- Users ----------

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByEmail(u.Email) != nil {
		return repository.ErrDuplicate
	}
	u.ID = uuid.NewString()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	cp := *u
	s.users = append(s.users, &cp)
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return withoutHash(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u := s.userByEmail(email)
	if u == nil {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) FindAdmin(_ context.Context) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Role == models.RoleAdmin {
			return withoutHash(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *withoutHash(u))
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, id string, upd models.UpdateUserRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *models.User
	for _, u := range s.users {
		if u.ID == id {
			current = u
			break
		}
	}
	if current == nil {
		return nil, repository.ErrNotFound
	}

	if upd.Email != nil && *upd.Email != current.Email && s.userByEmail(*upd.Email) != nil {
		return nil, repository.ErrDuplicate
	}

	if upd.Email != nil {
		current.Email = *upd.Email
	}
	if upd.Role != nil {
		current.Role = *upd.Role
	}
	if upd.Nom != nil {
		current.Nom = *upd.Nom
	}
	if upd.Classe != nil {
		current.Classe = *upd.Classe
	}
	return withoutHash(current), nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *Store) userByEmail(email string) *models.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func withoutHash(u *models.User) *models.User {
	cp := *u
	cp.PasswordHash = ""
	return &cp
}

// ---------- Assignments ----------

func (s *Store) CreateAssignment(_ context.Context, a models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assignmentIndex(a.ID) >= 0 {
		return repository.ErrDuplicate
	}
	s.assignments = append(s.assignments, &a)
	return nil
}

func (s *Store) GetAssignment(_ context.Context, id int64) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.assignmentIndex(id)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	cp := *s.assignments[i]
	return &cp, nil
}

func (s *Store) ListAssignments(_ context.Context, f models.AssignmentFilter, p models.PageRequest) ([]models.Assignment, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p = p.Normalize()
	offset := p.Offset()

	var total int64
	docs := []models.Assignment{}
	for _, a := range s.assignments {
		if !f.Matches(*a) {
			continue
		}
		if total >= offset && len(docs) < p.Limit {
			docs = append(docs, *a)
		}
		total++
	}
	return docs, total, nil
}

func (s *Store) AssignmentStats(_ context.Context, now time.Time) (models.AssignmentStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats models.AssignmentStats
	for _, a := range s.assignments {
		stats.Add(*a, now)
	}
	return stats, nil
}

func (s *Store) UpdateAssignment(_ context.Context, id int64, upd models.AssignmentUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.assignmentIndex(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	if upd.ID != nil && *upd.ID != id && s.assignmentIndex(*upd.ID) >= 0 {
		return repository.ErrDuplicate
	}

	updated := upd.Apply(*s.assignments[i])
	s.assignments[i] = &updated
	return nil
}

func (s *Store) DeleteAssignment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.assignmentIndex(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
	return nil
}

func (s *Store) assignmentIndex(id int64) int {
	for i, a := range s.assignments {
		if a.ID == id {
			return i
		}
	}
	return -1
}
