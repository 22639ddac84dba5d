package models

import "time"

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleProfesseur  Role = "professeur"
	RoleEleve       Role = "eleve"
	RoleUtilisateur Role = "utilisateur"

	DefaultRole = RoleEleve
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProfesseur, RoleEleve, RoleUtilisateur:
		return true
	}
	return false
}

type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Nom          string    `json:"nom,omitempty"`
	Classe       string    `json:"classe,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role,omitempty"`
	Nom      string `json:"nom,omitempty"`
	Classe   string `json:"classe,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest lists the only fields an admin may change. Password
// material has no field here and can never be written through it.
type UpdateUserRequest struct {
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Role   *Role   `json:"role,omitempty"`
	Nom    *string `json:"nom,omitempty"`
	Classe *string `json:"classe,omitempty"`
}

func (u UpdateUserRequest) Empty() bool {
	return u.Email == nil && u.Role == nil && u.Nom == nil && u.Classe == nil
}
