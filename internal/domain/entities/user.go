package entities

import "time"

// User represents a back-office user
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// Role represents user roles in the system
type Role string

const (
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

// HasRole checks if the user has a specific role
func (u *User) HasRole(role Role) bool {
	return u.Role == role
}

// IsAdmin returns true if the user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserInput is the payload for creating or updating a user
type UserInput struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     Role   `json:"role,omitempty"`
	Password string `json:"password,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}
