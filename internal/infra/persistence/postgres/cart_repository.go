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

// cartRepository implements repository.CartRepository using GORM.
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository is the constructor for cartRepository.
func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// FindByUserID retrieves the single cart of a user with its items.
func (repo *cartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	var cartM model.CartModel
	if err := repo.db.WithContext(ctx).
		Preload("Items").
		First(&cartM, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCartNotFound
		}

		return nil, errors.Wrap(err, "failed to find cart by user id")
	}

	return toCartDomain(&cartM), nil
}

// Save upserts the cart and replaces its line items. Item rows are
// deleted and reinserted; carts are small enough that the simplicity
// wins over diffing.
func (repo *cartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	cartM := fromCartDomain(cart)

	if cartM.ID == uuid.Nil {
		if err := repo.db.WithContext(ctx).Omit("Items").Create(cartM).Error; err != nil {
			if isUniqueConstraintViolation(err) {
				return domainerrors.ErrConflict.WrapMessage("user already has a cart")
			}

			return domainerrors.NewDatabaseExecuteError(err, "failed to create cart")
		}
	} else {
		if err := repo.db.WithContext(ctx).Omit("Items").Save(cartM).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to update cart")
		}
	}

	if err := repo.db.WithContext(ctx).
		Delete(&model.CartItemModel{}, "cart_id = ?", cartM.ID).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to clear cart items")
	}

	if len(cartM.Items) > 0 {
		for i := range cartM.Items {
			cartM.Items[i].CartID = cartM.ID
		}
		if err := repo.db.WithContext(ctx).Create(&cartM.Items).Error; err != nil {
			return domainerrors.NewDatabaseExecuteError(err, "failed to save cart items")
		}
	}

	cart.ID = cartM.ID
	cart.CreatedAt = cartM.CreatedAt
	cart.UpdatedAt = cartM.UpdatedAt

	return nil
}

// Clear removes every line item but keeps the cart row.
func (repo *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	var cartM model.CartModel
	if err := repo.db.WithContext(ctx).First(&cartM, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrCartNotFound
		}

		return errors.Wrap(err, "failed to find cart for clear")
	}

	if err := repo.db.WithContext(ctx).
		Delete(&model.CartItemModel{}, "cart_id = ?", cartM.ID).Error; err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to clear cart")
	}

	return nil
}

// toCartDomain converts a GORM CartModel to a domain Cart entity.
func toCartDomain(data *model.CartModel) *entity.Cart {
	if data == nil {
		return nil
	}

	items := make([]entity.CartItem, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, entity.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return &entity.Cart{
		ID:        data.ID,
		UserID:    data.UserID,
		Items:     items,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

// fromCartDomain converts a domain Cart entity to a GORM CartModel.
func fromCartDomain(data *entity.Cart) *model.CartModel {
	if data == nil {
		return nil
	}

	items := make([]model.CartItemModel, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, model.CartItemModel{
			CartID:    data.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	return &model.CartModel{
		ID:        data.ID,
		UserID:    data.UserID,
		Items:     items,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
