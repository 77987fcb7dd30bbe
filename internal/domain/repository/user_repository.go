// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserFilter narrows and pages admin user listings.
type UserFilter struct {
	Role   *entity.Role         // Filter by role when set.
	Status *entity.RecordStatus // Filter by record status when set.
	Search string               // Case-insensitive match against name or email.
	Page   int
	Limit  int
}

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user entity to the storage.
	Create(ctx context.Context, user *entity.User) error

	// Update modifies an existing user entity in the storage.
	Update(ctx context.Context, user *entity.User) error

	// List returns a page of users matching the filter and the total match count.
	List(ctx context.Context, filter UserFilter) ([]*entity.User, int64, error)

	// CountActiveAdmins counts active administrators, excluding the given
	// ID when non-nil. Used for last-admin protection.
	CountActiveAdmins(ctx context.Context, excludeID *uuid.UUID) (int64, error)

	// Count returns the total number of non-deleted users.
	Count(ctx context.Context) (int64, error)
}
