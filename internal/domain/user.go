package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleBrand     = "brand"
	RoleOrganiser = "organiser"
	RoleManager   = "manager"
	RoleShopper   = "shopper"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanReview reports whether the user may act on applications and
// payment submissions (organiser-side actions).
func (u User) CanReview() bool {
	return u.Role == RoleOrganiser || u.Role == RoleManager
}
