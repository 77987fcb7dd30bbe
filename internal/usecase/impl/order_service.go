package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "storefront/internal/delivery/context"
	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// orderService implements the OrderUsecase interface.
type orderService struct {
	txManager repository.TransactionManager
	orderRepo repository.OrderRepository
	logger    *slog.Logger
}

// OrderServiceParams holds dependencies for orderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	OrderRepo repository.OrderRepository
	Logger    *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		txManager: params.TxManager,
		orderRepo: params.OrderRepo,
		logger:    params.Logger,
	}
}

func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateOrder validates the requested lines against the catalog, locks
// the product rows, freezes name and price snapshots, decrements stock
// and persists the order, all in one transaction. When FromCart is set
// the lines come from the caller's cart, which is emptied on success.
func (srv *orderService) CreateOrder(ctx context.Context, input *usecase.CreateOrderInput) (*entity.Order, error) {
	srv.log(ctx).Info("Creating order", slog.Any("userID", input.UserID), slog.Bool("fromCart", input.FromCart))

	var newOrder *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.NewOrderRepository()
		productRepo := repoFactory.NewProductRepository()
		cartRepo := repoFactory.NewCartRepository()

		lines, err := resolveOrderLines(ctx, cartRepo, input)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
		}

		// Lock the product rows so concurrent orders cannot oversell.
		products, err := productRepo.FindByIDsForUpdate(ctx, ids)
		if err != nil {
			return errors.Wrap(err, "failed to lock products for order")
		}

		byID := make(map[uuid.UUID]*entity.Product, len(products))
		for _, product := range products {
			byID[product.ID] = product
		}

		items, err := buildOrderItems(lines, byID)
		if err != nil {
			return err
		}

		newOrder = &entity.Order{
			UserID:          input.UserID,
			Items:           items,
			Status:          entity.OrderStatusPending,
			ShippingAddress: input.ShippingAddress,
			PaymentStatus:   entity.PaymentStatusPending,
		}
		newOrder.TotalAmount = newOrder.ComputeTotal()

		if err := orderRepo.Create(ctx, newOrder); err != nil {
			return errors.Wrap(err, "failed to create order")
		}

		for _, item := range items {
			if err := productRepo.AdjustStock(ctx, item.ProductID, -item.Quantity, item.Quantity); err != nil {
				return errors.Wrap(err, "failed to decrement stock")
			}
		}

		if input.FromCart {
			if err := cartRepo.Clear(ctx, input.UserID); err != nil {
				return errors.Wrap(err, "failed to clear cart after order")
			}
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Order creation failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute order creation transaction")
	}

	srv.log(ctx).Debug("Order created",
		slog.Any("orderID", newOrder.ID),
		slog.String("total", newOrder.TotalAmount.String()),
	)

	return newOrder, nil
}

// GetOrder returns any order by ID. Intended for admin callers.
func (srv *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find order by id")
	}

	return order, nil
}

// GetUserOrder returns the order only when it belongs to userID.
// Foreign orders surface as not found rather than forbidden, so order
// IDs cannot be probed.
func (srv *orderService) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	order, err := srv.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order lookup failed")
	}

	return order, nil
}

// ListOrders returns one page of orders. A zero UserID lists across all
// customers (admin path).
func (srv *orderService) ListOrders(ctx context.Context, input *usecase.ListOrdersInput) (*usecase.OrderListOutput, error) {
	page, limit := normalizePagination(input.Page, input.Limit)
	filter := repository.OrderFilter{
		Status:    input.Status,
		MinAmount: input.MinAmount,
		MaxAmount: input.MaxAmount,
		From:      input.From,
		To:        input.To,
		Page:      page,
		Limit:     limit,
	}
	if input.UserID != uuid.Nil {
		userID := input.UserID
		filter.UserID = &userID
	}

	orders, total, err := srv.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	return &usecase.OrderListOutput{
		Orders: orders,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}, nil
}

// UpdateStatus moves an order through its lifecycle. Cancelling
// restocks the order's items; re-marking a delivered order delivered is
// an idempotent no-op.
func (srv *orderService) UpdateStatus(ctx context.Context, input *usecase.UpdateOrderStatusInput) (*entity.Order, error) {
	srv.log(ctx).Info("Updating order status",
		slog.Any("orderID", input.OrderID),
		slog.String("target", input.Status.String()),
	)

	if !input.Status.IsValid() {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "invalid order status")
	}

	var updated *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		updated, err = transitionOrder(ctx, repoFactory, input.OrderID, input.Status, nil)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Order status update failed", slog.Any("orderID", input.OrderID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute order status transaction")
	}

	return updated, nil
}

// CancelOrder is the customer-facing cancellation.
func (srv *orderService) CancelOrder(ctx context.Context, userID, orderID uuid.UUID) (*entity.Order, error) {
	srv.log(ctx).Info("Cancelling order", slog.Any("userID", userID), slog.Any("orderID", orderID))

	var updated *entity.Order
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		var err error
		updated, err = transitionOrder(ctx, repoFactory, orderID, entity.OrderStatusCancelled, &userID)

		return err
	})
	if err != nil {
		srv.log(ctx).Warn("Order cancellation failed", slog.Any("orderID", orderID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute order cancellation transaction")
	}

	return updated, nil
}

// transitionOrder locks the order row, enforces the lifecycle rules and
// applies the side effects of the move. A non-nil ownerID additionally
// requires the order to belong to that user.
func transitionOrder(
	ctx context.Context,
	repoFactory repository.RepositoryFactory,
	orderID uuid.UUID,
	target entity.OrderStatus,
	ownerID *uuid.UUID,
) (*entity.Order, error) {
	orderRepo := repoFactory.NewOrderRepository()
	productRepo := repoFactory.NewProductRepository()

	order, err := orderRepo.FindByIDForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order transition failed")
		}

		return nil, errors.Wrap(err, "failed to lock order")
	}
	if ownerID != nil && order.UserID != *ownerID {
		return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order transition failed")
	}

	if order.Status == entity.OrderStatusDelivered && target == entity.OrderStatusDelivered {
		return order, nil
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, errors.Wrapf(domainerrors.ErrOrderNotModifiable,
			"cannot move order from %s to %s", order.Status, target)
	}

	// Cancelling returns the reserved units to the shelf. Orders that
	// were ever paid keep their stock deduction; a refund flow owns that.
	if target == entity.OrderStatusCancelled && !order.IsPaid {
		for _, item := range order.Items {
			if err := productRepo.AdjustStock(ctx, item.ProductID, item.Quantity, -item.Quantity); err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					continue // Product hard-removed since purchase; nothing to restock.
				}

				return nil, errors.Wrap(err, "failed to restock cancelled order")
			}
		}
	}

	order.Status = target
	if err := orderRepo.Update(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to update order status")
	}

	return order, nil
}

// resolveOrderLines returns the requested lines, from the cart when
// FromCart is set, merging duplicate product references.
func resolveOrderLines(ctx context.Context, cartRepo repository.CartRepository, input *usecase.CreateOrderInput) ([]usecase.OrderItemInput, error) {
	var raw []usecase.OrderItemInput

	if input.FromCart {
		cart, err := cartRepo.FindByUserID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) {
				return nil, errors.Wrap(domainerrors.ErrCartEmpty, "order creation failed")
			}

			return nil, errors.Wrap(err, "failed to find cart")
		}
		if cart.IsEmpty() {
			return nil, errors.Wrap(domainerrors.ErrCartEmpty, "order creation failed")
		}

		for _, item := range cart.Items {
			raw = append(raw, usecase.OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	} else {
		raw = input.Items
	}

	if len(raw) == 0 {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "order must contain at least one item")
	}

	merged := make([]usecase.OrderItemInput, 0, len(raw))
	index := make(map[uuid.UUID]int, len(raw))
	for _, line := range raw {
		if line.Quantity < 1 {
			return nil, errors.Wrap(domainerrors.ErrValidationFailed, "item quantity must be at least 1")
		}
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity

			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	return merged, nil
}

// buildOrderItems validates every line against the locked products and
// freezes the purchase snapshots. Validation problems are aggregated so
// the caller sees all of them at once.
func buildOrderItems(lines []usecase.OrderItemInput, byID map[uuid.UUID]*entity.Product) ([]entity.OrderItem, error) {
	items := make([]entity.OrderItem, 0, len(lines))

	var missing []string
	var inactive []string
	var short []string

	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			missing = append(missing, line.ProductID.String())

			continue
		}
		if !product.IsPurchasable() {
			inactive = append(inactive, product.Name)

			continue
		}
		if !product.HasStock(line.Quantity) {
			short = append(short, product.Name)

			continue
		}

		items = append(items, entity.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
		})
	}

	switch {
	case len(missing) > 0:
		return nil, domainerrors.ErrProductNotFound.WithDetails("unknown products: " + strings.Join(missing, ", "))
	case len(inactive) > 0:
		return nil, domainerrors.ErrProductInactive.WithDetails("unavailable products: " + strings.Join(inactive, ", "))
	case len(short) > 0:
		return nil, domainerrors.ErrInsufficientStock.WithDetails("insufficient stock for: " + strings.Join(short, ", "))
	}

	return items, nil
}
