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
)

// AdminHandler holds dependencies for the admin panel handlers.
type AdminHandler struct {
	uc       usecase.AdminUsecase
	reviewUC usecase.ReviewUsecase
	logger   *slog.Logger
}

// NewAdminHandler is the constructor for AdminHandler, injected by Fx.
func NewAdminHandler(uc usecase.AdminUsecase, reviewUC usecase.ReviewUsecase, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{uc: uc, reviewUC: reviewUC, logger: logger}
}

type adminUpdateUserRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Address *string `json:"address" validate:"omitempty,max=300"`
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type setUserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active disabled"`
}

// Dashboard returns aggregate store metrics.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	output, err := h.uc.Dashboard(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output, "Dashboard retrieved successfully")
}

// ListUsers returns one page of accounts, optionally filtered.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	input := &usecase.ListUsersInput{
		Search: c.QueryParam("search"),
	}
	if raw := c.QueryParam("role"); raw != "" {
		role := entity.Role(raw)
		if !role.IsValid() {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid role")
		}
		input.Role = &role
	}
	if raw := c.QueryParam("status"); raw != "" {
		status := entity.RecordStatus(raw)
		if !status.IsValid() {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid status")
		}
		input.Status = &status
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	output, err := h.uc.ListUsers(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, response.Paginated{
		Items: newUserViews(output.Users),
		Pagination: response.Pagination{
			Page:  output.Page,
			Limit: output.Limit,
			Total: output.Total,
		},
	}, "Users retrieved successfully")
}

// GetUser returns one account by ID.
func (h *AdminHandler) GetUser(c echo.Context) error {
	userID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}

	user, err := h.uc.GetUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserView(user), "User retrieved successfully")
}

// UpdateUser edits an account's profile fields.
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	userID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}

	var req adminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid user input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.UpdateUser(c.Request().Context(), &usecase.AdminUpdateUserInput{
		UserID:  userID,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserView(user), "User updated successfully")
}

// ChangeRole promotes or demotes an account.
func (h *AdminHandler) ChangeRole(c echo.Context) error {
	userID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}

	var req changeRoleRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid role input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.ChangeRole(c.Request().Context(), &usecase.ChangeRoleInput{
		UserID: userID,
		Role:   entity.Role(req.Role),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserView(user), "User role updated successfully")
}

// SetUserStatus enables or disables an account.
func (h *AdminHandler) SetUserStatus(c echo.Context) error {
	userID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}

	var req setUserStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.uc.SetUserStatus(c.Request().Context(), &usecase.SetUserStatusInput{
		UserID: userID,
		Status: entity.RecordStatus(req.Status),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserView(user), "User status updated successfully")
}

// DeleteUser soft deletes an account.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	userID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}

	if err := h.uc.DeleteUser(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "User deleted"}, "User deleted successfully")
}

// RestoreUser reactivates a soft-deleted account.
func (h *AdminHandler) RestoreUser(c echo.Context) error {
	userID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid user id")
	}

	user, err := h.uc.RestoreUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newUserView(user), "User restored successfully")
}

// ListAllReviews returns reviews across all products for moderation.
func (h *AdminHandler) ListAllReviews(c echo.Context) error {
	input := &usecase.ListAllReviewsInput{}
	if raw := c.QueryParam("productId"); raw != "" {
		productID, err := uuid.Parse(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid product id")
		}
		input.ProductID = &productID
	}
	if raw := c.QueryParam("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil || rating < 1 || rating > 5 {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid rating filter")
		}
		input.Rating = &rating
	}
	input.Page, _ = strconv.Atoi(c.QueryParam("page"))
	input.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	output, err := h.uc.ListAllReviews(c.Request().Context(), input)
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

// DeleteReview removes any review as a moderation action.
func (h *AdminHandler) DeleteReview(c echo.Context) error {
	adminID, ok := currentUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	reviewID, err := pathUUID(c, "id")
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid review id")
	}

	if err := h.reviewUC.DeleteReview(c.Request().Context(), &usecase.DeleteReviewInput{
		UserID:   adminID,
		ReviewID: reviewID,
		IsAdmin:  true,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Review deleted"}, "Review deleted successfully")
}
