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
	"gorm.io/gorm/clause"
)

// productSortColumns whitelists the columns exposed to list sorting.
var productSortColumns = map[string]string{
	"price":     "price",
	"name":      "name",
	"rating":    "average_rating",
	"sold":      "sold_count",
	"createdAt": "created_at",
}

// productRepository implements repository.ProductRepository using GORM.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

// notDeleted excludes soft-deleted products from every read path.
func (repo *productRepository) notDeleted(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).
		Where("status <> ?", entity.RecordStatusDeleted.String())
}

// FindByID retrieves a single product by its unique ID.
func (repo *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	var productM model.ProductModel
	if err := repo.notDeleted(ctx).First(&productM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product by id")
	}

	return toProductDomain(&productM), nil
}

// FindByIDs retrieves the products with the given IDs, excluding soft-deleted ones.
func (repo *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	return repo.findByIDs(ctx, ids, false)
}

// FindByIDsForUpdate behaves like FindByIDs but locks the rows for the
// duration of the surrounding transaction.
func (repo *productRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	return repo.findByIDs(ctx, ids, true)
}

func (repo *productRepository) findByIDs(ctx context.Context, ids []uuid.UUID, forUpdate bool) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := repo.notDeleted(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var productMs []model.ProductModel
	if err := query.Where("id IN ?", ids).Find(&productMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find products by ids")
	}

	products := make([]*entity.Product, 0, len(productMs))
	for i := range productMs {
		products = append(products, toProductDomain(&productMs[i]))
	}

	return products, nil
}

// Create persists a new product entity to the database.
func (repo *productRepository) Create(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrSKUTaken.WrapMessage("product sku already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrCategoryNotFound.WrapMessage("category does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create product")
	}

	product.ID = productM.ID
	product.CreatedAt = productM.CreatedAt
	product.UpdatedAt = productM.UpdatedAt

	return nil
}

// Update modifies an existing product entity in the database.
func (repo *productRepository) Update(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	if err := repo.db.WithContext(ctx).Save(productM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrSKUTaken.WrapMessage("product sku already exists")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrCategoryNotFound.WrapMessage("category does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update product")
	}

	product.UpdatedAt = productM.UpdatedAt

	return nil
}

// List returns a page of products matching the filter and the total match count.
func (repo *productRepository) List(ctx context.Context, filter repository.ProductFilter) ([]*entity.Product, int64, error) {
	query := repo.notDeleted(ctx).Model(&model.ProductModel{})

	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.InStock {
		query = query.Where("stock > 0")
	}
	if filter.Tag != "" {
		query = query.Where("tags @> ?", model.StringSlice{filter.Tag})
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count products")
	}

	column, ok := productSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc || filter.SortBy == "" {
		direction = "DESC"
	}

	page, limit := normalizePage(filter.Page, filter.Limit)

	var productMs []model.ProductModel
	if err := query.
		Order(column + " " + direction).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&productMs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list products")
	}

	products := make([]*entity.Product, 0, len(productMs))
	for i := range productMs {
		products = append(products, toProductDomain(&productMs[i]))
	}

	return products, total, nil
}

// AdjustStock atomically applies stockDelta to the stock column and
// soldDelta to the sold count of one product. The stock check
// constraint rejects adjustments that would go negative.
func (repo *productRepository) AdjustStock(ctx context.Context, id uuid.UUID, stockDelta, soldDelta int) error {
	result := repo.db.WithContext(ctx).Model(&model.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", stockDelta),
			"sold_count": gorm.Expr("sold_count + ?", soldDelta),
		})
	if result.Error != nil {
		if isCheckConstraintViolation(result.Error) {
			return domainerrors.ErrInsufficientStock.WrapMessage("stock would become negative")
		}

		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to adjust product stock")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// SetRatingStats overwrites the denormalized review aggregates.
func (repo *productRepository) SetRatingStats(ctx context.Context, id uuid.UUID, averageRating float64, reviewsCount int) error {
	result := repo.db.WithContext(ctx).Model(&model.ProductModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"average_rating": averageRating,
			"reviews_count":  reviewsCount,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update product rating stats")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}

// Count returns the total number of non-deleted products.
func (repo *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.notDeleted(ctx).Model(&model.ProductModel{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count products")
	}

	return count, nil
}

// toProductDomain converts a GORM ProductModel to a domain Product entity.
func toProductDomain(data *model.ProductModel) *entity.Product {
	if data == nil {
		return nil
	}

	sku := ""
	if data.SKU != nil {
		sku = *data.SKU
	}

	return &entity.Product{
		ID:            data.ID,
		Name:          data.Name,
		SKU:           sku,
		Description:   data.Description,
		Price:         data.Price,
		CategoryID:    data.CategoryID,
		Stock:         data.Stock,
		SoldCount:     data.SoldCount,
		Images:        data.Images,
		Tags:          data.Tags,
		Status:        entity.RecordStatus(data.Status),
		AverageRating: data.AverageRating,
		ReviewsCount:  data.ReviewsCount,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
		DeletedAt:     data.DeletedAt,
	}
}

// fromProductDomain converts a domain Product entity to a GORM ProductModel.
func fromProductDomain(data *entity.Product) *model.ProductModel {
	if data == nil {
		return nil
	}

	// A NULL SKU keeps the unique index sparse for products without one.
	var sku *string
	if data.SKU != "" {
		value := data.SKU
		sku = &value
	}

	return &model.ProductModel{
		ID:            data.ID,
		Name:          data.Name,
		SKU:           sku,
		Description:   data.Description,
		Price:         data.Price,
		CategoryID:    data.CategoryID,
		Stock:         data.Stock,
		SoldCount:     data.SoldCount,
		Images:        model.StringSlice(data.Images),
		Tags:          model.StringSlice(data.Tags),
		Status:        data.Status.String(),
		AverageRating: data.AverageRating,
		ReviewsCount:  data.ReviewsCount,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
		DeletedAt:     data.DeletedAt,
	}
}
