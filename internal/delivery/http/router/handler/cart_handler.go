package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/http/response"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CartHandler holds dependencies for shopping cart handlers.
type CartHandler struct {
	uc     usecase.CartUsecase
	logger *slog.Logger
}

// NewCartHandler is the constructor for CartHandler, injected by Fx.
func NewCartHandler(uc usecase.CartUsecase, logger *slog.Logger) *CartHandler {
	return &CartHandler{uc: uc, logger: logger}
}

type cartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

// GetCart returns the caller's cart with derived totals.
func (h *CartHandler) GetCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	cart, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cart, "Cart retrieved successfully")
}

// AddItem adds a product to the caller's cart.
func (h *CartHandler) AddItem(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid cart item input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	cart, err := h.uc.AddItem(c.Request().Context(), &usecase.AddCartItemInput{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cart, "Item added to cart")
}

// UpdateItem replaces the quantity of one cart line.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	productID, err := pathUUID(c, "productId")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid product id")
	}

	var req struct {
		Quantity int `json:"quantity" validate:"required,gte=1"`
	}
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid cart item input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	cart, err := h.uc.UpdateItem(c.Request().Context(), &usecase.UpdateCartItemInput{
		UserID:    userID,
		ProductID: productID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cart, "Cart item updated")
}

// RemoveItem deletes one line from the caller's cart.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	productID, err := pathUUID(c, "productId")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid product id")
	}

	cart, err := h.uc.RemoveItem(c.Request().Context(), userID, productID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, cart, "Cart item removed")
}

// ClearCart empties the caller's cart.
func (h *CartHandler) ClearCart(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	if err := h.uc.ClearCart(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Cart cleared"}, "Cart cleared successfully")
}
