package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"storefront/internal/delivery/http/response"
	"storefront/internal/domain/entity"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ReviewHandler holds dependencies for review handlers.
type ReviewHandler struct {
	uc     usecase.ReviewUsecase
	logger *slog.Logger
}

// NewReviewHandler is the constructor for ReviewHandler, injected by Fx.
func NewReviewHandler(uc usecase.ReviewUsecase, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{uc: uc, logger: logger}
}

type createReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"omitempty,max=500"`
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=500"`
}

// ListProductReviews returns one page of a product's reviews.
func (h *ReviewHandler) ListProductReviews(c echo.Context) error {
	productID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid product id")
	}

	input := &usecase.ListReviewsInput{ProductID: productID}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	output, err := h.uc.ListByProduct(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, response.Paginated{
		Items: newReviewViews(output.Reviews),
		Pagination: response.Pagination{
			Page:  output.Page,
			Limit: output.Limit,
			Total: output.Total,
		},
	}, "Reviews retrieved successfully")
}

// CreateReview posts a review on a delivered purchase.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	productID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid product id")
	}

	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid review input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	review, err := h.uc.CreateReview(c.Request().Context(), &usecase.CreateReviewInput{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newReviewView(review), "Review created successfully")
}

// CanReview reports whether the caller may review the product.
func (h *ReviewHandler) CanReview(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	productID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid product id")
	}

	output, err := h.uc.CanReview(c.Request().Context(), userID, productID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Review eligibility retrieved")
}

// UpdateReview edits the caller's own review.
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	reviewID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid review id")
	}

	var req updateReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid review input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	review, err := h.uc.UpdateReview(c.Request().Context(), &usecase.UpdateReviewInput{
		UserID:   userID,
		ReviewID: reviewID,
		Rating:   req.Rating,
		Comment:  req.Comment,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newReviewView(review), "Review updated successfully")
}

// DeleteReview removes a review. Admins may remove any review.
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	reviewID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid review id")
	}

	role, _ := currentRole(c)

	if err := h.uc.DeleteReview(c.Request().Context(), &usecase.DeleteReviewInput{
		UserID:   userID,
		ReviewID: reviewID,
		IsAdmin:  role == entity.RoleAdmin,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Review deleted"}, "Review deleted successfully")
}
