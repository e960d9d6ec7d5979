package domain

import "time"

// Role differentiates residents from facility staff.
type Role string

const (
	RoleResident Role = "resident"
	RoleStaff    Role = "staff"
)

// User is an account that files or handles issues. Location fields default
// the location of the issues a resident files.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Hostel       *string
	Block        *string
	Room         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
