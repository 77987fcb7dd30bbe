package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateReviewInput posts a review on a delivered purchase.
type CreateReviewInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Rating    int
	Comment   string
}

// UpdateReviewInput edits the caller's own review.
type UpdateReviewInput struct {
	UserID   uuid.UUID
	ReviewID uuid.UUID
	Rating   *int
	Comment  *string
}

// DeleteReviewInput removes a review. Admins may delete any review,
// regular users only their own.
type DeleteReviewInput struct {
	UserID   uuid.UUID
	ReviewID uuid.UUID
	IsAdmin  bool
}

// ListReviewsInput pages a product's reviews.
type ListReviewsInput struct {
	ProductID uuid.UUID
	Page      int
	Limit     int
}

// --- Output DTOs ---

// ReviewListOutput returns one page of reviews and the total count.
type ReviewListOutput struct {
	Reviews []*entity.Review
	Total   int64
	Page    int
	Limit   int
}

// CanReviewOutput reports whether the caller may review a product and
// which delivered order grants the right.
type CanReviewOutput struct {
	CanReview bool       `json:"canReview"`
	OrderID   *uuid.UUID `json:"orderId,omitempty"`
	Reason    string     `json:"reason,omitempty"`
}

// ReviewUsecase defines the interface for product review operations.
type ReviewUsecase interface {
	CreateReview(ctx context.Context, input *CreateReviewInput) (*entity.Review, error)
	UpdateReview(ctx context.Context, input *UpdateReviewInput) (*entity.Review, error)
	DeleteReview(ctx context.Context, input *DeleteReviewInput) error
	ListByProduct(ctx context.Context, input *ListReviewsInput) (*ReviewListOutput, error)
	CanReview(ctx context.Context, userID, productID uuid.UUID) (*CanReviewOutput, error)
}
