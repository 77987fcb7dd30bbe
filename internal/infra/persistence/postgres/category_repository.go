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

// categoryRepository implements repository.CategoryRepository using GORM.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository is the constructor for categoryRepository.
func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

// FindByID retrieves a single category by its unique ID.
func (repo *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	var categoryM model.CategoryModel
	if err := repo.db.WithContext(ctx).First(&categoryM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCategoryNotFound
		}

		return nil, errors.Wrap(err, "failed to find category by id")
	}

	return toCategoryDomain(&categoryM), nil
}

// FindByName retrieves a single category by its unique name.
func (repo *categoryRepository) FindByName(ctx context.Context, name string) (*entity.Category, error) {
	var categoryM model.CategoryModel
	if err := repo.db.WithContext(ctx).First(&categoryM, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCategoryNotFound
		}

		return nil, errors.Wrap(err, "failed to find category by name")
	}

	return toCategoryDomain(&categoryM), nil
}

// Create persists a new category entity to the database.
func (repo *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	categoryM := fromCategoryDomain(category)

	if err := repo.db.WithContext(ctx).Create(categoryM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrCategoryNameTaken.WrapMessage("category name already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create category")
	}

	category.ID = categoryM.ID
	category.CreatedAt = categoryM.CreatedAt
	category.UpdatedAt = categoryM.UpdatedAt

	return nil
}

// Update modifies an existing category entity in the database.
func (repo *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	categoryM := fromCategoryDomain(category)

	if err := repo.db.WithContext(ctx).Save(categoryM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrCategoryNameTaken.WrapMessage("category name already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update category")
	}

	category.UpdatedAt = categoryM.UpdatedAt

	return nil
}

// List returns all non-deleted categories.
func (repo *categoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	var categoryMs []model.CategoryModel
	if err := repo.db.WithContext(ctx).
		Where("status <> ?", entity.RecordStatusDeleted.String()).
		Order("name ASC").
		Find(&categoryMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	categories := make([]*entity.Category, 0, len(categoryMs))
	for i := range categoryMs {
		categories = append(categories, toCategoryDomain(&categoryMs[i]))
	}

	return categories, nil
}

// toCategoryDomain converts a GORM CategoryModel to a domain Category entity.
func toCategoryDomain(data *model.CategoryModel) *entity.Category {
	if data == nil {
		return nil
	}

	return &entity.Category{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Status:      entity.RecordStatus(data.Status),
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromCategoryDomain converts a domain Category entity to a GORM CategoryModel.
func fromCategoryDomain(data *entity.Category) *model.CategoryModel {
	if data == nil {
		return nil
	}

	return &model.CategoryModel{
		ID:          data.ID,
		Name:        data.Name,
		Description: data.Description,
		Status:      data.Status.String(),
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
