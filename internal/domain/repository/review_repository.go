package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrReviewNotFound is returned when a review is not found.
var ErrReviewNotFound = errors.New("review not found")

// ReviewFilter narrows and pages review listings for moderation.
type ReviewFilter struct {
	ProductID *uuid.UUID
	UserID    *uuid.UUID
	Status    *entity.RecordStatus
	Rating    *int
	Page      int
	Limit     int
}

// RatingStats aggregates the active reviews of one product.
type RatingStats struct {
	Average float64 // Unrounded mean rating; zero when Count is zero.
	Count   int64
}

// ReviewRepository defines the standard operations for review persistence.
type ReviewRepository interface {
	// Create persists a new review entity to the storage.
	Create(ctx context.Context, review *entity.Review) error

	// FindByID retrieves a single review by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)

	// FindByProductAndUser retrieves the user's review of a product
	// regardless of record status, enforcing the one-per-pair rule.
	FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*entity.Review, error)

	// Update modifies an existing review entity in the storage.
	Update(ctx context.Context, review *entity.Review) error

	// ListByProduct returns a page of active reviews for a product,
	// newest first, and the total active count.
	ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]*entity.Review, int64, error)

	// List returns a page of reviews matching the filter and the total match count.
	List(ctx context.Context, filter ReviewFilter) ([]*entity.Review, int64, error)

	// RatingStats computes the mean rating and count over active reviews.
	RatingStats(ctx context.Context, productID uuid.UUID) (*RatingStats, error)

	// Count returns the total number of active reviews.
	Count(ctx context.Context) (int64, error)
}
