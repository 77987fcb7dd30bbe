package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	txManager    repository.TransactionManager
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	logger       *slog.Logger
}

// CatalogServiceParams holds dependencies for catalogService, injected by Fx.
type CatalogServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	ProductRepo  repository.ProductRepository
	CategoryRepo repository.CategoryRepository
	Logger       *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(params CatalogServiceParams) usecase.CatalogUsecase {
	return &catalogService{
		txManager:    params.TxManager,
		productRepo:  params.ProductRepo,
		categoryRepo: params.CategoryRepo,
		logger:       params.Logger,
	}
}

func (srv *catalogService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProduct returns a single non-deleted product.
func (srv *catalogService) GetProduct(ctx context.Context, productID uuid.UUID) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.Wrap(domainerrors.ErrProductNotFound, "product lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find product by id")
	}

	return product, nil
}

// ListProducts returns one catalog page matching the public filters.
func (srv *catalogService) ListProducts(ctx context.Context, input *usecase.ListProductsInput) (*usecase.ProductListOutput, error) {
	page, limit := normalizePagination(input.Page, input.Limit)
	filter := repository.ProductFilter{
		CategoryID: input.CategoryID,
		Search:     input.Search,
		MinPrice:   input.MinPrice,
		MaxPrice:   input.MaxPrice,
		InStock:    input.InStock,
		Tag:        input.Tag,
		SortBy:     input.SortBy,
		SortDesc:   input.SortDesc,
		Page:       page,
		Limit:      limit,
	}

	products, total, err := srv.productRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	return &usecase.ProductListOutput{
		Products: products,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}

// CreateProduct adds a new product to the catalog.
func (srv *catalogService) CreateProduct(ctx context.Context, input *usecase.CreateProductInput) (*entity.Product, error) {
	srv.log(ctx).Info("Creating product", slog.String("name", input.Name))

	if input.Price.IsNegative() {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "price must not be negative")
	}
	if input.Stock < 0 {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "stock must not be negative")
	}

	newProduct := &entity.Product{
		Name:        input.Name,
		SKU:         input.SKU,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		Stock:       input.Stock,
		Images:      input.Images,
		Tags:        input.Tags,
		Status:      entity.RecordStatusActive,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.NewCategoryRepository()
		productRepo := repoFactory.NewProductRepository()

		if _, err := categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return errors.Wrap(domainerrors.ErrCategoryNotFound, "product creation failed")
			}

			return errors.Wrap(err, "failed to find category")
		}

		return productRepo.Create(ctx, newProduct)
	})
	if err != nil {
		srv.log(ctx).Warn("Product creation failed", slog.String("name", input.Name), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute product creation transaction")
	}

	srv.log(ctx).Debug("Product created", slog.Any("productID", newProduct.ID))

	return newProduct, nil
}

// UpdateProduct applies a partial update to a product.
func (srv *catalogService) UpdateProduct(ctx context.Context, input *usecase.UpdateProductInput) (*entity.Product, error) {
	srv.log(ctx).Info("Updating product", slog.Any("productID", input.ProductID))

	var updated *entity.Product
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.NewProductRepository()
		categoryRepo := repoFactory.NewCategoryRepository()

		product, err := productRepo.FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return errors.Wrap(domainerrors.ErrProductNotFound, "product update failed")
			}

			return errors.Wrap(err, "failed to find product by id")
		}

		if input.Name != nil {
			product.Name = *input.Name
		}
		if input.SKU != nil {
			product.SKU = *input.SKU
		}
		if input.Description != nil {
			product.Description = *input.Description
		}
		if input.Price != nil {
			if input.Price.IsNegative() {
				return errors.Wrap(domainerrors.ErrValidationFailed, "price must not be negative")
			}
			product.Price = *input.Price
		}
		if input.CategoryID != nil {
			if _, err := categoryRepo.FindByID(ctx, *input.CategoryID); err != nil {
				if errors.Is(err, repository.ErrCategoryNotFound) {
					return errors.Wrap(domainerrors.ErrCategoryNotFound, "product update failed")
				}

				return errors.Wrap(err, "failed to find category")
			}
			product.CategoryID = *input.CategoryID
		}
		if input.Stock != nil {
			if *input.Stock < 0 {
				return errors.Wrap(domainerrors.ErrValidationFailed, "stock must not be negative")
			}
			product.Stock = *input.Stock
		}
		if input.Images != nil {
			product.Images = input.Images
		}
		if input.Tags != nil {
			product.Tags = input.Tags
		}
		if input.Status != nil {
			if !input.Status.IsValid() {
				return errors.Wrap(domainerrors.ErrValidationFailed, "invalid product status")
			}
			product.Status = *input.Status
		}

		if err := productRepo.Update(ctx, product); err != nil {
			return errors.Wrap(err, "failed to update product")
		}
		updated = product

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Product update failed", slog.Any("productID", input.ProductID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute product update transaction")
	}

	return updated, nil
}

// DeleteProduct soft-deletes a product. The row is kept so existing
// order snapshots and reviews stay navigable.
func (srv *catalogService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	srv.log(ctx).Info("Deleting product", slog.Any("productID", productID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.NewProductRepository()

		product, err := productRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return errors.Wrap(domainerrors.ErrProductNotFound, "product deletion failed")
			}

			return errors.Wrap(err, "failed to find product by id")
		}

		now := time.Now()
		product.Status = entity.RecordStatusDeleted
		product.DeletedAt = &now

		if err := productRepo.Update(ctx, product); err != nil {
			return errors.Wrap(err, "failed to soft delete product")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Product deletion failed", slog.Any("productID", productID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute product deletion transaction")
	}

	return nil
}

// ListCategories returns all non-deleted categories.
func (srv *catalogService) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	categories, err := srv.categoryRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	return categories, nil
}

// GetCategory returns a single category.
func (srv *catalogService) GetCategory(ctx context.Context, categoryID uuid.UUID) (*entity.Category, error) {
	category, err := srv.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, errors.Wrap(domainerrors.ErrCategoryNotFound, "category lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find category by id")
	}

	return category, nil
}

// CreateCategory adds a new category.
func (srv *catalogService) CreateCategory(ctx context.Context, input *usecase.CreateCategoryInput) (*entity.Category, error) {
	srv.log(ctx).Info("Creating category", slog.String("name", input.Name))

	newCategory := &entity.Category{
		Name:        input.Name,
		Description: input.Description,
		Status:      entity.RecordStatusActive,
	}

	if err := srv.categoryRepo.Create(ctx, newCategory); err != nil {
		srv.log(ctx).Warn("Category creation failed", slog.String("name", input.Name), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create category")
	}

	return newCategory, nil
}

// UpdateCategory applies a partial update to a category.
func (srv *catalogService) UpdateCategory(ctx context.Context, input *usecase.UpdateCategoryInput) (*entity.Category, error) {
	srv.log(ctx).Info("Updating category", slog.Any("categoryID", input.CategoryID))

	var updated *entity.Category
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.NewCategoryRepository()

		category, err := categoryRepo.FindByID(ctx, input.CategoryID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return errors.Wrap(domainerrors.ErrCategoryNotFound, "category update failed")
			}

			return errors.Wrap(err, "failed to find category by id")
		}

		if input.Name != nil {
			category.Name = *input.Name
		}
		if input.Description != nil {
			category.Description = *input.Description
		}
		if input.Status != nil {
			if !input.Status.IsValid() {
				return errors.Wrap(domainerrors.ErrValidationFailed, "invalid category status")
			}
			category.Status = *input.Status
		}

		if err := categoryRepo.Update(ctx, category); err != nil {
			return errors.Wrap(err, "failed to update category")
		}
		updated = category

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Category update failed", slog.Any("categoryID", input.CategoryID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute category update transaction")
	}

	return updated, nil
}

// DeleteCategory soft-deletes a category. Products keep their category
// reference; the category simply stops appearing in listings.
func (srv *catalogService) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	srv.log(ctx).Info("Deleting category", slog.Any("categoryID", categoryID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.NewCategoryRepository()

		category, err := categoryRepo.FindByID(ctx, categoryID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return errors.Wrap(domainerrors.ErrCategoryNotFound, "category deletion failed")
			}

			return errors.Wrap(err, "failed to find category by id")
		}

		category.Status = entity.RecordStatusDeleted

		if err := categoryRepo.Update(ctx, category); err != nil {
			return errors.Wrap(err, "failed to soft delete category")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Category deletion failed", slog.Any("categoryID", categoryID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute category deletion transaction")
	}

	return nil
}
