package model

import (
	"errors"
	"time"
)

// User represents an authentication user. Name and EmployeeID are snapshotted
// into issues created by the user.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Name         string     `json:"name"`
	EmployeeID   string     `json:"employee_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin     = "admin"
	RoleAssistant = "assistant"
	RoleViewer    = "viewer"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:     3,
		RoleAssistant: 2,
		RoleViewer:    1,
	}
	return levels[role] >= levels[minimum]
}

// ValidatePassword enforces the minimum password policy.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// Actor returns the snapshot recorded on issues created by this user.
func (u *User) Actor() Actor {
	return Actor{Role: u.Role, Name: u.Name, EmployeeID: u.EmployeeID}
}
