// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account, customer or administrator.
type User struct {
	ID           uuid.UUID    // The unique identifier for the user.
	Email        string       // The user's login identifier, unique across the system.
	Name         string       // The user's display name.
	PasswordHash string       // Stores the bcrypt-hashed password.
	Role         Role         // The user's role, "user" or "admin".
	Status       RecordStatus // Lifecycle state: active, disabled or deleted.
	Phone        string       // Optional contact phone number.
	Address      string       // Optional default shipping address.
	CreatedAt    time.Time    // Timestamp of when this account was created.
	UpdatedAt    time.Time    // Timestamp of the last modification to this account.
	DeletedAt    *time.Time   // Set when the account is soft deleted, nil otherwise.
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RefreshToken represents a long-lived, authorized user session.
// It is used to obtain a new access token after the old one expires,
// without requiring credentials.
type RefreshToken struct {
	ID        uuid.UUID // The unique ID for this specific refresh token record.
	UserID    uuid.UUID // Links this session to the User it belongs to.
	TokenHash string    // Stores a SHA-256 hash of the raw refresh token for secure comparison.
	ExpiresAt time.Time // The exact time when this refresh token becomes invalid.
	CreatedAt time.Time // Timestamp of when this session was created.
}
