package postgres

import (
	"context"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// reviewRepository implements repository.ReviewRepository using GORM.
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository is the constructor for reviewRepository.
func NewReviewRepository(db *gorm.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

// Create persists a new review entity to the database.
func (repo *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	reviewM := fromReviewDomain(review)

	if err := repo.db.WithContext(ctx).Create(reviewM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrReviewExists.WrapMessage("review already exists for this product and user")
		}
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("rating out of range")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create review")
	}

	review.ID = reviewM.ID
	review.CreatedAt = reviewM.CreatedAt
	review.UpdatedAt = reviewM.UpdatedAt

	return nil
}

// FindByID retrieves a single review by its unique ID.
func (repo *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	var reviewM model.ReviewModel
	if err := repo.db.WithContext(ctx).First(&reviewM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReviewNotFound
		}

		return nil, errors.Wrap(err, "failed to find review by id")
	}

	return toReviewDomain(&reviewM), nil
}

// FindByProductAndUser retrieves the user's review of a product
// regardless of record status.
func (repo *reviewRepository) FindByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*entity.Review, error) {
	var reviewM model.ReviewModel
	if err := repo.db.WithContext(ctx).
		First(&reviewM, "product_id = ? AND user_id = ?", productID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrReviewNotFound
		}

		return nil, errors.Wrap(err, "failed to find review by product and user")
	}

	return toReviewDomain(&reviewM), nil
}

// Update modifies an existing review entity in the database.
func (repo *reviewRepository) Update(ctx context.Context, review *entity.Review) error {
	reviewM := fromReviewDomain(review)

	if err := repo.db.WithContext(ctx).Save(reviewM).Error; err != nil {
		if isCheckConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("rating out of range")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update review")
	}

	review.UpdatedAt = reviewM.UpdatedAt

	return nil
}

// ListByProduct returns a page of active reviews for a product, newest first.
func (repo *reviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]*entity.Review, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.ReviewModel{}).
		Where("product_id = ? AND status = ?", productID, entity.RecordStatusActive.String())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count product reviews")
	}

	page, limit = normalizePage(page, limit)

	var reviewMs []model.ReviewModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviewMs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list product reviews")
	}

	reviews := make([]*entity.Review, 0, len(reviewMs))
	for i := range reviewMs {
		reviews = append(reviews, toReviewDomain(&reviewMs[i]))
	}

	return reviews, total, nil
}

// List returns a page of reviews matching the filter and the total match count.
func (repo *reviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]*entity.Review, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.ReviewModel{})

	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.Rating != nil {
		query = query.Where("rating = ?", *filter.Rating)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count reviews")
	}

	page, limit := normalizePage(filter.Page, filter.Limit)

	var reviewMs []model.ReviewModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviewMs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list reviews")
	}

	reviews := make([]*entity.Review, 0, len(reviewMs))
	for i := range reviewMs {
		reviews = append(reviews, toReviewDomain(&reviewMs[i]))
	}

	return reviews, total, nil
}

// RatingStats computes the mean rating and count over active reviews.
func (repo *reviewRepository) RatingStats(ctx context.Context, productID uuid.UUID) (*repository.RatingStats, error) {
	var row struct {
		Average float64
		Count   int64
	}
	if err := repo.db.WithContext(ctx).Model(&model.ReviewModel{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ? AND status = ?", productID, entity.RecordStatusActive.String()).
		Scan(&row).Error; err != nil {
		return nil, errors.Wrap(err, "failed to aggregate rating stats")
	}

	return &repository.RatingStats{Average: row.Average, Count: row.Count}, nil
}

// Count returns the total number of active reviews.
func (repo *reviewRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.ReviewModel{}).
		Where("status = ?", entity.RecordStatusActive.String()).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count reviews")
	}

	return count, nil
}

// toReviewDomain converts a GORM ReviewModel to a domain Review entity.
func toReviewDomain(data *model.ReviewModel) *entity.Review {
	if data == nil {
		return nil
	}

	return &entity.Review{
		ID:        data.ID,
		ProductID: data.ProductID,
		UserID:    data.UserID,
		OrderID:   data.OrderID,
		Rating:    data.Rating,
		Comment:   data.Comment,
		Status:    entity.RecordStatus(data.Status),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

// fromReviewDomain converts a domain Review entity to a GORM ReviewModel.
func fromReviewDomain(data *entity.Review) *model.ReviewModel {
	if data == nil {
		return nil
	}

	return &model.ReviewModel{
		ID:        data.ID,
		ProductID: data.ProductID,
		UserID:    data.UserID,
		OrderID:   data.OrderID,
		Rating:    data.Rating,
		Comment:   data.Comment,
		Status:    data.Status.String(),
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
