package impl

import (
	"context"
	"log/slog"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

// cartService implements the CartUsecase interface.
type cartService struct {
	txManager   repository.TransactionManager
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// CartServiceParams holds dependencies for cartService, injected by Fx.
type CartServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	CartRepo    repository.CartRepository
	ProductRepo repository.ProductRepository
	Logger      *slog.Logger
}

// NewCartService is the constructor for cartService.
func NewCartService(params CartServiceParams) usecase.CartUsecase {
	return &cartService{
		txManager:   params.TxManager,
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
		logger:      params.Logger,
	}
}

func (srv *cartService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetCart returns the caller's cart with totals derived from the
// current catalog prices.
func (srv *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*usecase.CartOutput, error) {
	cart, err := srv.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return emptyCartOutput(), nil
		}

		return nil, errors.Wrap(err, "failed to find cart")
	}

	return srv.buildCartOutput(ctx, cart)
}

// AddItem adds a product to the cart, merging quantities when the line
// already exists.
func (srv *cartService) AddItem(ctx context.Context, input *usecase.AddCartItemInput) (*usecase.CartOutput, error) {
	srv.log(ctx).Debug("Adding cart item",
		slog.Any("userID", input.UserID),
		slog.Any("productID", input.ProductID),
		slog.Int("quantity", input.Quantity),
	)

	if input.Quantity < 1 {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "quantity must be at least 1")
	}

	var cart *entity.Cart
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cartRepo := repoFactory.NewCartRepository()
		productRepo := repoFactory.NewProductRepository()

		product, err := productRepo.FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return errors.Wrap(domainerrors.ErrProductNotFound, "add to cart failed")
			}

			return errors.Wrap(err, "failed to find product by id")
		}
		if !product.IsPurchasable() {
			return errors.Wrap(domainerrors.ErrProductInactive, "add to cart failed")
		}

		cart, err = loadOrCreateCart(ctx, cartRepo, input.UserID)
		if err != nil {
			return err
		}

		quantity := input.Quantity
		if idx := cart.FindItem(input.ProductID); idx >= 0 {
			quantity += cart.Items[idx].Quantity
		}
		if !product.HasStock(quantity) {
			return errors.Wrap(domainerrors.ErrInsufficientStock, "add to cart failed")
		}

		if idx := cart.FindItem(input.ProductID); idx >= 0 {
			cart.Items[idx].Quantity = quantity
		} else {
			cart.Items = append(cart.Items, entity.CartItem{ProductID: input.ProductID, Quantity: quantity})
		}

		return cartRepo.Save(ctx, cart)
	})
	if err != nil {
		srv.log(ctx).Warn("Add cart item failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute add cart item transaction")
	}

	return srv.buildCartOutput(ctx, cart)
}

// UpdateItem replaces the quantity of one cart line.
func (srv *cartService) UpdateItem(ctx context.Context, input *usecase.UpdateCartItemInput) (*usecase.CartOutput, error) {
	if input.Quantity < 1 {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "quantity must be at least 1")
	}

	var cart *entity.Cart
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cartRepo := repoFactory.NewCartRepository()
		productRepo := repoFactory.NewProductRepository()

		var err error
		cart, err = cartRepo.FindByUserID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) {
				return errors.Wrap(domainerrors.ErrCartItemNotFound, "cart update failed")
			}

			return errors.Wrap(err, "failed to find cart")
		}

		idx := cart.FindItem(input.ProductID)
		if idx < 0 {
			return errors.Wrap(domainerrors.ErrCartItemNotFound, "cart update failed")
		}

		product, err := productRepo.FindByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				return errors.Wrap(domainerrors.ErrProductNotFound, "cart update failed")
			}

			return errors.Wrap(err, "failed to find product by id")
		}
		if !product.HasStock(input.Quantity) {
			return errors.Wrap(domainerrors.ErrInsufficientStock, "cart update failed")
		}

		cart.Items[idx].Quantity = input.Quantity

		return cartRepo.Save(ctx, cart)
	})
	if err != nil {
		srv.log(ctx).Warn("Cart item update failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute cart item update transaction")
	}

	return srv.buildCartOutput(ctx, cart)
}

// RemoveItem deletes one line from the cart.
func (srv *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*usecase.CartOutput, error) {
	var cart *entity.Cart
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		cartRepo := repoFactory.NewCartRepository()

		var err error
		cart, err = cartRepo.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) {
				return errors.Wrap(domainerrors.ErrCartItemNotFound, "cart removal failed")
			}

			return errors.Wrap(err, "failed to find cart")
		}

		idx := cart.FindItem(productID)
		if idx < 0 {
			return errors.Wrap(domainerrors.ErrCartItemNotFound, "cart removal failed")
		}

		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

		return cartRepo.Save(ctx, cart)
	})
	if err != nil {
		srv.log(ctx).Warn("Cart item removal failed", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute cart item removal transaction")
	}

	return srv.buildCartOutput(ctx, cart)
}

// ClearCart empties the caller's cart. Clearing an absent cart is a no-op.
func (srv *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := srv.cartRepo.Clear(ctx, userID); err != nil {
		srv.log(ctx).Warn("Cart clear failed", slog.Any("userID", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to clear cart")
	}

	return nil
}

// buildCartOutput joins cart lines with live product data. Lines whose
// product is gone or inactive are kept but flagged unavailable and
// excluded from the total.
func (srv *cartService) buildCartOutput(ctx context.Context, cart *entity.Cart) (*usecase.CartOutput, error) {
	if cart == nil || cart.IsEmpty() {
		return emptyCartOutput(), nil
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := srv.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cart products")
	}

	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	output := &usecase.CartOutput{
		Items: make([]usecase.CartItemOutput, 0, len(cart.Items)),
		Total: decimal.Zero,
	}

	for _, item := range cart.Items {
		line := usecase.CartItemOutput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}

		if product, ok := byID[item.ProductID]; ok {
			line.Name = product.Name
			line.UnitPrice = product.Price
			line.Subtotal = product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			line.Available = product.IsPurchasable() && product.HasStock(item.Quantity)
			line.StockOnHand = product.Stock
			if len(product.Images) > 0 {
				line.Image = product.Images[0]
			}
			if line.Available {
				output.Total = output.Total.Add(line.Subtotal)
			}
		}

		output.Items = append(output.Items, line)
		output.ItemCount += item.Quantity
	}

	return output, nil
}

func emptyCartOutput() *usecase.CartOutput {
	return &usecase.CartOutput{
		Items: []usecase.CartItemOutput{},
		Total: decimal.Zero,
	}
}

// loadOrCreateCart returns the user's cart, creating an empty one on
// first use.
func loadOrCreateCart(ctx context.Context, cartRepo repository.CartRepository, userID uuid.UUID) (*entity.Cart, error) {
	cart, err := cartRepo.FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrCartNotFound) {
		return nil, errors.Wrap(err, "failed to find cart")
	}

	return &entity.Cart{UserID: userID, Items: []entity.CartItem{}}, nil
}
