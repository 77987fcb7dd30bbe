package impl

import (
	"context"
	"log/slog"
	"math"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const maxReviewCommentLength = 500

// reviewService implements the ReviewUsecase interface.
type reviewService struct {
	txManager  repository.TransactionManager
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
	logger     *slog.Logger
}

// ReviewServiceParams holds dependencies for reviewService, injected by Fx.
type ReviewServiceParams struct {
	fx.In

	TxManager  repository.TransactionManager
	ReviewRepo repository.ReviewRepository
	OrderRepo  repository.OrderRepository
	Logger     *slog.Logger
}

// NewReviewService is the constructor for reviewService.
func NewReviewService(params ReviewServiceParams) usecase.ReviewUsecase {
	return &reviewService{
		txManager:  params.TxManager,
		reviewRepo: params.ReviewRepo,
		orderRepo:  params.OrderRepo,
		logger:     params.Logger,
	}
}

func (srv *reviewService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateReview posts a review. Only buyers with a delivered order
// containing the product qualify, and each buyer gets one review per
// product; a previously deleted review is revived in place.
func (srv *reviewService) CreateReview(ctx context.Context, input *usecase.CreateReviewInput) (*entity.Review, error) {
	srv.log(ctx).Info("Creating review",
		slog.Any("userID", input.UserID),
		slog.Any("productID", input.ProductID),
	)

	if err := validateReviewContent(input.Rating, input.Comment); err != nil {
		return nil, err
	}

	var review *entity.Review
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		reviewRepo := repoFactory.NewReviewRepository()
		orderRepo := repoFactory.NewOrderRepository()
		productRepo := repoFactory.NewProductRepository()

		if _, err := productRepo.FindByID(ctx, input.ProductID); err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return errors.Wrap(domainerrors.ErrProductNotFound, "review creation failed")
			}

			return errors.Wrap(err, "failed to find product by id")
		}

		orderID, qualified, err := orderRepo.HasDeliveredProduct(ctx, input.UserID, input.ProductID)
		if err != nil {
			return errors.Wrap(err, "failed to check delivered purchase")
		}
		if !qualified {
			return errors.Wrap(domainerrors.ErrReviewNotAllowed, "review creation failed")
		}

		existing, err := reviewRepo.FindByProductAndUser(ctx, input.ProductID, input.UserID)
		if err != nil && !errors.Is(err, repository.ErrReviewNotFound) {
			return errors.Wrap(err, "failed to check existing review")
		}

		if existing != nil {
			if existing.Status != entity.RecordStatusDeleted {
				return errors.Wrap(domainerrors.ErrReviewExists, "review creation failed")
			}

			// Revive the deleted review instead of inserting a second row
			// for the same (user, product) pair.
			existing.OrderID = orderID
			existing.Rating = input.Rating
			existing.Comment = input.Comment
			existing.Status = entity.RecordStatusActive

			if err := reviewRepo.Update(ctx, existing); err != nil {
				return errors.Wrap(err, "failed to revive review")
			}
			review = existing
		} else {
			review = &entity.Review{
				ProductID: input.ProductID,
				UserID:    input.UserID,
				OrderID:   orderID,
				Rating:    input.Rating,
				Comment:   input.Comment,
				Status:    entity.RecordStatusActive,
			}

			if err := reviewRepo.Create(ctx, review); err != nil {
				return errors.Wrap(err, "failed to create review")
			}
		}

		return recomputeProductRating(ctx, repoFactory, input.ProductID)
	})
	if err != nil {
		srv.log(ctx).Warn("Review creation failed", slog.Any("productID", input.ProductID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute review creation transaction")
	}

	return review, nil
}

// UpdateReview edits the caller's own review.
func (srv *reviewService) UpdateReview(ctx context.Context, input *usecase.UpdateReviewInput) (*entity.Review, error) {
	srv.log(ctx).Info("Updating review", slog.Any("reviewID", input.ReviewID))

	var review *entity.Review
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		reviewRepo := repoFactory.NewReviewRepository()

		var err error
		review, err = reviewRepo.FindByID(ctx, input.ReviewID)
		if err != nil {
			if errors.Is(err, repository.ErrReviewNotFound) {
				return errors.Wrap(domainerrors.ErrReviewNotFound, "review update failed")
			}

			return errors.Wrap(err, "failed to find review by id")
		}
		if review.UserID != input.UserID {
			return errors.Wrap(domainerrors.ErrForbidden, "review belongs to another user")
		}
		if review.Status == entity.RecordStatusDeleted {
			return errors.Wrap(domainerrors.ErrReviewNotFound, "review update failed")
		}

		if input.Rating != nil {
			review.Rating = *input.Rating
		}
		if input.Comment != nil {
			review.Comment = *input.Comment
		}
		if err := validateReviewContent(review.Rating, review.Comment); err != nil {
			return err
		}

		if err := reviewRepo.Update(ctx, review); err != nil {
			return errors.Wrap(err, "failed to update review")
		}

		return recomputeProductRating(ctx, repoFactory, review.ProductID)
	})
	if err != nil {
		srv.log(ctx).Warn("Review update failed", slog.Any("reviewID", input.ReviewID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute review update transaction")
	}

	return review, nil
}

// DeleteReview soft-deletes a review. Admins may delete any review,
// regular users only their own.
func (srv *reviewService) DeleteReview(ctx context.Context, input *usecase.DeleteReviewInput) error {
	srv.log(ctx).Info("Deleting review", slog.Any("reviewID", input.ReviewID), slog.Bool("isAdmin", input.IsAdmin))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		reviewRepo := repoFactory.NewReviewRepository()

		review, err := reviewRepo.FindByID(ctx, input.ReviewID)
		if err != nil {
			if errors.Is(err, repository.ErrReviewNotFound) {
				return errors.Wrap(domainerrors.ErrReviewNotFound, "review deletion failed")
			}

			return errors.Wrap(err, "failed to find review by id")
		}
		if !input.IsAdmin && review.UserID != input.UserID {
			return errors.Wrap(domainerrors.ErrForbidden, "review belongs to another user")
		}
		if review.Status == entity.RecordStatusDeleted {
			return nil // Already gone; deletion is idempotent.
		}

		review.Status = entity.RecordStatusDeleted
		if err := reviewRepo.Update(ctx, review); err != nil {
			return errors.Wrap(err, "failed to soft delete review")
		}

		return recomputeProductRating(ctx, repoFactory, review.ProductID)
	})
	if err != nil {
		srv.log(ctx).Warn("Review deletion failed", slog.Any("reviewID", input.ReviewID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute review deletion transaction")
	}

	return nil
}

// ListByProduct returns one page of a product's active reviews.
func (srv *reviewService) ListByProduct(ctx context.Context, input *usecase.ListReviewsInput) (*usecase.ReviewListOutput, error) {
	page, limit := normalizePagination(input.Page, input.Limit)

	reviews, total, err := srv.reviewRepo.ListByProduct(ctx, input.ProductID, page, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}

	return &usecase.ReviewListOutput{
		Reviews: reviews,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// CanReview reports whether the caller may post a review on the product.
func (srv *reviewService) CanReview(ctx context.Context, userID, productID uuid.UUID) (*usecase.CanReviewOutput, error) {
	orderID, qualified, err := srv.orderRepo.HasDeliveredProduct(ctx, userID, productID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to check delivered purchase")
	}
	if !qualified {
		return &usecase.CanReviewOutput{Reason: "no delivered order contains this product"}, nil
	}

	existing, err := srv.reviewRepo.FindByProductAndUser(ctx, productID, userID)
	if err != nil && !errors.Is(err, repository.ErrReviewNotFound) {
		return nil, errors.Wrap(err, "failed to check existing review")
	}
	if existing != nil && existing.Status != entity.RecordStatusDeleted {
		return &usecase.CanReviewOutput{Reason: "product already reviewed"}, nil
	}

	return &usecase.CanReviewOutput{CanReview: true, OrderID: &orderID}, nil
}

// recomputeProductRating refreshes the product's denormalized review
// aggregates from the active reviews, inside the caller's transaction.
func recomputeProductRating(ctx context.Context, repoFactory repository.RepositoryFactory, productID uuid.UUID) error {
	stats, err := repoFactory.NewReviewRepository().RatingStats(ctx, productID)
	if err != nil {
		return errors.Wrap(err, "failed to compute rating stats")
	}

	average := math.Round(stats.Average*10) / 10

	if err := repoFactory.NewProductRepository().SetRatingStats(ctx, productID, average, int(stats.Count)); err != nil {
		return errors.Wrap(err, "failed to store rating stats")
	}

	return nil
}

func validateReviewContent(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return errors.Wrap(domainerrors.ErrValidationFailed, "rating must be between 1 and 5")
	}
	if len(comment) > maxReviewCommentLength {
		return errors.Wrap(domainerrors.ErrValidationFailed, "comment exceeds 500 characters")
	}

	return nil
}
