package dto

import (
	"time"

	"github.com/spec-kit/hostel-issues/internal/domain"
)

// RegisterRequest payload for new residents.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Hostel   *string `json:"hostel"`
	Block    *string `json:"block"`
	Room     *string `json:"room"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	Hostel *string     `json:"hostel"`
	Block  *string     `json:"block"`
	Room   *string     `json:"room"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
