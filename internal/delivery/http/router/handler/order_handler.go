package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/delivery/http/response"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// OrderHandler holds dependencies for order handlers.
type OrderHandler struct {
	uc     usecase.OrderUsecase
	logger *slog.Logger
}

// NewOrderHandler is the constructor for OrderHandler, injected by Fx.
func NewOrderHandler(uc usecase.OrderUsecase, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{uc: uc, logger: logger}
}

type orderItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

type shippingAddressRequest struct {
	Street  string `json:"street" validate:"required,max=200"`
	City    string `json:"city" validate:"required,max=100"`
	ZipCode string `json:"zipCode" validate:"required,max=20"`
	Country string `json:"country" validate:"required,max=100"`
}

type createOrderRequest struct {
	Items           []orderItemRequest     `json:"items" validate:"omitempty,dive"`
	FromCart        bool                   `json:"fromCart"`
	ShippingAddress shippingAddressRequest `json:"shippingAddress" validate:"required"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
}

// CreateOrder places a new order, either from an explicit item list or
// from the caller's cart.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid order input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	input := &usecase.CreateOrderInput{
		UserID:   userID,
		FromCart: req.FromCart,
		ShippingAddress: entity.ShippingAddress{
			Street:  req.ShippingAddress.Street,
			City:    req.ShippingAddress.City,
			ZipCode: req.ShippingAddress.ZipCode,
			Country: req.ShippingAddress.Country,
		},
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, usecase.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.uc.CreateOrder(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newOrderView(order), "Order created successfully")
}

// ListMyOrders returns the caller's orders, newest first.
func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	input := &usecase.ListOrdersInput{UserID: userID}
	if raw := c.QueryParam("status"); raw != "" {
		status := entity.OrderStatus(raw)
		if !status.IsValid() {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid order status")
		}
		input.Status = &status
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	output, err := h.uc.ListOrders(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, response.Paginated{
		Items: newOrderViews(output.Orders),
		Pagination: response.Pagination{
			Page:  output.Page,
			Limit: output.Limit,
			Total: output.Total,
		},
	}, "Orders retrieved successfully")
}

// GetMyOrder returns one of the caller's orders.
func (h *OrderHandler) GetMyOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	orderID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid order id")
	}

	order, err := h.uc.GetUserOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order), "Order retrieved successfully")
}

// CancelOrder cancels one of the caller's orders while still allowed.
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	orderID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid order id")
	}

	order, err := h.uc.CancelOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order), "Order cancelled successfully")
}

// ListOrders returns orders across all customers. Admin only.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	input := &usecase.ListOrdersInput{}
	if raw := c.QueryParam("status"); raw != "" {
		status := entity.OrderStatus(raw)
		if !status.IsValid() {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid order status")
		}
		input.Status = &status
	}
	if raw := c.QueryParam("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
		}
		input.UserID = userID
	}
	if raw := c.QueryParam("minAmount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid minimum amount")
		}
		input.MinAmount = &amount
	}
	if raw := c.QueryParam("maxAmount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid maximum amount")
		}
		input.MaxAmount = &amount
	}
	if raw := c.QueryParam("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid from date")
		}
		input.From = &from
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid to date")
		}
		input.To = &to
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	output, err := h.uc.ListOrders(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, response.Paginated{
		Items: newOrderViews(output.Orders),
		Pagination: response.Pagination{
			Page:  output.Page,
			Limit: output.Limit,
			Total: output.Total,
		},
	}, "Orders retrieved successfully")
}

// GetOrder returns any order by ID. Admin only.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid order id")
	}

	order, err := h.uc.GetOrder(c.Request().Context(), orderID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order), "Order retrieved successfully")
}

// UpdateOrderStatus moves an order through its lifecycle. Admin only.
func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid order id")
	}

	var req updateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	order, err := h.uc.UpdateStatus(c.Request().Context(), &usecase.UpdateOrderStatusInput{
		OrderID: orderID,
		Status:  entity.OrderStatus(req.Status),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newOrderView(order), "Order status updated successfully")
}
