package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"storefront/internal/delivery/http/response"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ProductHandler holds dependencies for catalog handlers.
type ProductHandler struct {
	uc     usecase.CatalogUsecase
	logger *slog.Logger
}

// NewProductHandler is the constructor for ProductHandler, injected by Fx.
func NewProductHandler(uc usecase.CatalogUsecase, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{uc: uc, logger: logger}
}

type createProductRequest struct {
	Name        string          `json:"name" validate:"required,min=1,max=200"`
	SKU         string          `json:"sku" validate:"omitempty,max=64"`
	Description string          `json:"description" validate:"omitempty,max=5000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
	CategoryID  uuid.UUID       `json:"categoryId" validate:"required"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Images      []string        `json:"images" validate:"omitempty,dive,url"`
	Tags        []string        `json:"tags" validate:"omitempty,dive,min=1,max=50"`
}

type updateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	SKU         *string          `json:"sku" validate:"omitempty,max=64"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uuid.UUID       `json:"categoryId"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	Images      []string         `json:"images" validate:"omitempty,dive,url"`
	Tags        []string         `json:"tags" validate:"omitempty,dive,min=1,max=50"`
	Status      *string          `json:"status" validate:"omitempty,oneof=active disabled"`
}

// ListProducts handles the public catalog listing with filters.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	input := &usecase.ListProductsInput{
		Search:   c.QueryParam("search"),
		Tag:      c.QueryParam("tag"),
		SortBy:   c.QueryParam("sortBy"),
		SortDesc: c.QueryParam("sortDesc") == "true",
		InStock:  c.QueryParam("inStock") == "true",
	}

	if raw := c.QueryParam("categoryId"); raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid category id")
		}
		input.CategoryID = &categoryID
	}
	if raw := c.QueryParam("minPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid minimum price")
		}
		input.MinPrice = &price
	}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid maximum price")
		}
		input.MaxPrice = &price
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	output, err := h.uc.ListProducts(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, response.Paginated{
		Items: newProductViews(output.Products),
		Pagination: response.Pagination{
			Page:  output.Page,
			Limit: output.Limit,
			Total: output.Total,
		},
	}, "Products retrieved successfully")
}

// GetProduct handles a single product lookup.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid product id")
	}

	product, err := h.uc.GetProduct(c.Request().Context(), productID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductView(product), "Product retrieved successfully")
}

// CreateProduct handles the admin product creation request.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	product, err := h.uc.CreateProduct(c.Request().Context(), &usecase.CreateProductInput{
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Stock:       req.Stock,
		Images:      req.Images,
		Tags:        req.Tags,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newProductView(product), "Product created successfully")
}

// UpdateProduct handles the admin partial product update request.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid product id")
	}

	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	input := &usecase.UpdateProductInput{
		ProductID:   productID,
		Name:        req.Name,
		SKU:         req.SKU,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Stock:       req.Stock,
		Images:      req.Images,
		Tags:        req.Tags,
	}
	if req.Status != nil {
		status := entity.RecordStatus(*req.Status)
		input.Status = &status
	}

	product, err := h.uc.UpdateProduct(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductView(product), "Product updated successfully")
}

// DeleteProduct handles the admin product soft deletion request.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid product id")
	}

	if err := h.uc.DeleteProduct(c.Request().Context(), productID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Product deleted"}, "Product deleted successfully")
}
