package models

import (
	"time"
)

// DefaultRole is assigned when a user is created without one
const DefaultRole = "user"

// User represents a site user. Password is accepted on write and never serialized.
type User struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// UserRequest is the body of POST and PUT /api/users
type UserRequest struct {
	Name     string `json:"name" binding:"required,notblank,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=1,max=255"`
	Role     string `json:"role" binding:"omitempty,max=50"`
}

// RoleRequest is the body of PUT /api/users/:id/role
type RoleRequest struct {
	Role string `json:"role" binding:"required,notblank,max=50"`
}
