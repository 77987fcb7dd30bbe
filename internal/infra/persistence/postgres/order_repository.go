package postgres

import (
	"context"

	"storefront/internal/domain/entity"
	domainerrors "storefront/internal/domain/errors"
	"storefront/internal/domain/repository"
	"storefront/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderRepository implements repository.OrderRepository using GORM.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create persists a new order with its item snapshots.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("order references a missing record")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	order.UpdatedAt = orderM.UpdatedAt

	return nil
}

// FindByID retrieves a single order with its items.
func (repo *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return repo.findByID(ctx, id, false)
}

// FindByIDForUpdate behaves like FindByID but locks the order row for
// the duration of the surrounding transaction.
func (repo *orderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return repo.findByID(ctx, id, true)
}

func (repo *orderRepository) findByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.Order, error) {
	query := repo.db.WithContext(ctx)
	if forUpdate {
		// Lock only the order row; preloading items would spread the
		// lock across the join.
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}})
	}

	var orderM model.OrderModel
	if err := query.Preload("Items").First(&orderM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order by id")
	}

	return toOrderDomain(&orderM), nil
}

// Update modifies an existing order's mutable fields.
func (repo *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	result := repo.db.WithContext(ctx).Model(&model.OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":         order.Status.String(),
			"payment_id":     order.PaymentID,
			"payment_status": order.PaymentStatus.String(),
			"is_paid":        order.IsPaid,
			"paid_at":        order.PaidAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update order")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

// List returns a page of orders matching the filter and the total match count.
func (repo *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, int64, error) {
	query := repo.db.WithContext(ctx).Model(&model.OrderModel{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.MinAmount != nil {
		query = query.Where("total_amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("total_amount <= ?", *filter.MaxAmount)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count orders")
	}

	page, limit := normalizePage(filter.Page, filter.Limit)

	var orderMs []model.OrderModel
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orderMs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list orders")
	}

	orders := make([]*entity.Order, 0, len(orderMs))
	for i := range orderMs {
		orders = append(orders, toOrderDomain(&orderMs[i]))
	}

	return orders, total, nil
}

// HasDeliveredProduct reports whether the user has a delivered order
// containing the product, and returns the qualifying order's ID.
func (repo *orderRepository) HasDeliveredProduct(ctx context.Context, userID, productID uuid.UUID) (uuid.UUID, bool, error) {
	var orderID uuid.UUID
	err := repo.db.WithContext(ctx).Model(&model.OrderModel{}).
		Select("orders.id").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, entity.OrderStatusDelivered.String(), productID).
		Limit(1).
		Scan(&orderID).Error
	if err != nil {
		return uuid.Nil, false, errors.Wrap(err, "failed to check delivered product")
	}

	return orderID, orderID != uuid.Nil, nil
}

// Revenue aggregates total revenue and order count over the given statuses.
func (repo *orderRepository) Revenue(ctx context.Context, statuses []entity.OrderStatus) (*repository.RevenueStats, error) {
	statusStrings := make([]string, 0, len(statuses))
	for _, s := range statuses {
		statusStrings = append(statusStrings, s.String())
	}

	var row struct {
		Total decimal.Decimal
		Count int64
	}
	if err := repo.db.WithContext(ctx).Model(&model.OrderModel{}).
		Select("COALESCE(SUM(total_amount), 0) AS total, COUNT(*) AS count").
		Where("status IN ?", statusStrings).
		Scan(&row).Error; err != nil {
		return nil, errors.Wrap(err, "failed to aggregate revenue")
	}

	return &repository.RevenueStats{Total: row.Total, OrderCount: row.Count}, nil
}

// TopProducts returns the best-selling products by units across all
// non-cancelled orders, best first.
func (repo *orderRepository) TopProducts(ctx context.Context, limit int) ([]repository.ProductSales, error) {
	if limit < 1 {
		limit = 5
	}

	var rows []struct {
		ProductID uuid.UUID
		Name      string
		UnitsSold int64
	}
	if err := repo.db.WithContext(ctx).Model(&model.OrderItemModel{}).
		Select("order_items.product_id, order_items.name, SUM(order_items.quantity) AS units_sold").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", entity.OrderStatusCancelled.String()).
		Group("order_items.product_id, order_items.name").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to aggregate top products")
	}

	sales := make([]repository.ProductSales, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, repository.ProductSales{
			ProductID: row.ProductID,
			Name:      row.Name,
			UnitsSold: row.UnitsSold,
		})
	}

	return sales, nil
}

// Recent returns the most recently created orders, newest first.
func (repo *orderRepository) Recent(ctx context.Context, limit int) ([]*entity.Order, error) {
	if limit < 1 {
		limit = 5
	}

	var orderMs []model.OrderModel
	if err := repo.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&orderMs).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list recent orders")
	}

	orders := make([]*entity.Order, 0, len(orderMs))
	for i := range orderMs {
		orders = append(orders, toOrderDomain(&orderMs[i]))
	}

	return orders, nil
}

// Count returns the total number of orders.
func (repo *orderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.OrderModel{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count orders")
	}

	return count, nil
}

// toOrderDomain converts a GORM OrderModel to a domain Order entity.
func toOrderDomain(data *model.OrderModel) *entity.Order {
	if data == nil {
		return nil
	}

	items := make([]entity.OrderItem, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, entity.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return &entity.Order{
		ID:          data.ID,
		UserID:      data.UserID,
		Items:       items,
		TotalAmount: data.TotalAmount,
		Status:      entity.OrderStatus(data.Status),
		ShippingAddress: entity.ShippingAddress{
			Street:  data.ShippingStreet,
			City:    data.ShippingCity,
			ZipCode: data.ShippingZipCode,
			Country: data.ShippingCountry,
		},
		PaymentID:     data.PaymentID,
		PaymentStatus: entity.PaymentStatus(data.PaymentStatus),
		IsPaid:        data.IsPaid,
		PaidAt:        data.PaidAt,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

// fromOrderDomain converts a domain Order entity to a GORM OrderModel.
func fromOrderDomain(data *entity.Order) *model.OrderModel {
	if data == nil {
		return nil
	}

	items := make([]model.OrderItemModel, 0, len(data.Items))
	for _, item := range data.Items {
		items = append(items, model.OrderItemModel{
			OrderID:   data.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return &model.OrderModel{
		ID:              data.ID,
		UserID:          data.UserID,
		TotalAmount:     data.TotalAmount,
		Status:          data.Status.String(),
		ShippingStreet:  data.ShippingAddress.Street,
		ShippingCity:    data.ShippingAddress.City,
		ShippingZipCode: data.ShippingAddress.ZipCode,
		ShippingCountry: data.ShippingAddress.Country,
		PaymentID:       data.PaymentID,
		PaymentStatus:   data.PaymentStatus.String(),
		IsPaid:          data.IsPaid,
		PaidAt:          data.PaidAt,
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
		Items:           items,
	}
}
