package handler

import (
	"log/slog"
	"net/http"

	"storefront/internal/delivery/http/response"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CategoryHandler holds dependencies for category handlers.
type CategoryHandler struct {
	uc     usecase.CatalogUsecase
	logger *slog.Logger
}

// NewCategoryHandler is the constructor for CategoryHandler, injected by Fx.
func NewCategoryHandler(uc usecase.CatalogUsecase, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{uc: uc, logger: logger}
}

type createCategoryRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Status      *string `json:"status" validate:"omitempty,oneof=active disabled"`
}

// ListCategories handles the public category listing.
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	categories, err := h.uc.ListCategories(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newCategoryViews(categories), "Categories retrieved successfully")
}

// GetCategory handles a single category lookup.
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	categoryID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid category id")
	}

	category, err := h.uc.GetCategory(c.Request().Context(), categoryID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newCategoryView(category), "Category retrieved successfully")
}

// CreateCategory handles the admin category creation request.
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid category input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	category, err := h.uc.CreateCategory(c.Request().Context(), &usecase.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newCategoryView(category), "Category created successfully")
}

// UpdateCategory handles the admin partial category update request.
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	categoryID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid category id")
	}

	var req updateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid category input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	input := &usecase.UpdateCategoryInput{
		CategoryID:  categoryID,
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Status != nil {
		status := entity.RecordStatus(*req.Status)
		input.Status = &status
	}

	category, err := h.uc.UpdateCategory(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newCategoryView(category), "Category updated successfully")
}

// DeleteCategory handles the admin category soft deletion request.
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	categoryID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid category id")
	}

	if err := h.uc.DeleteCategory(c.Request().Context(), categoryID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Category deleted"}, "Category deleted successfully")
}
