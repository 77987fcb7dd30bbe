package impl

import (
	"context"
	"log/slog"
	"time"

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

// revenueStatuses are the order states that count as realized revenue.
var revenueStatuses = []entity.OrderStatus{
	entity.OrderStatusConfirmed,
	entity.OrderStatusShipped,
	entity.OrderStatusDelivered,
}

const (
	dashboardRecentOrders = 5
	dashboardTopProducts  = 5
)

// adminService implements the AdminUsecase interface.
type adminService struct {
	txManager   repository.TransactionManager
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	reviewRepo  repository.ReviewRepository
	logger      *slog.Logger
}

// AdminServiceParams holds dependencies for adminService, injected by Fx.
type AdminServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	UserRepo    repository.UserRepository
	ProductRepo repository.ProductRepository
	OrderRepo   repository.OrderRepository
	ReviewRepo  repository.ReviewRepository
	Logger      *slog.Logger
}

// NewAdminService is the constructor for adminService.
func NewAdminService(params AdminServiceParams) usecase.AdminUsecase {
	return &adminService{
		txManager:   params.TxManager,
		userRepo:    params.UserRepo,
		productRepo: params.ProductRepo,
		orderRepo:   params.OrderRepo,
		reviewRepo:  params.ReviewRepo,
		logger:      params.Logger,
	}
}

func (srv *adminService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListUsers returns one page of accounts matching the filter.
func (srv *adminService) ListUsers(ctx context.Context, input *usecase.ListUsersInput) (*usecase.UserListOutput, error) {
	page, limit := normalizePagination(input.Page, input.Limit)

	users, total, err := srv.userRepo.List(ctx, repository.UserFilter{
		Role:   input.Role,
		Status: input.Status,
		Search: input.Search,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	return &usecase.UserListOutput{
		Users: users,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// GetUser returns a single account.
func (srv *adminService) GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "user lookup failed")
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return user, nil
}

// UpdateUser edits another user's account fields.
func (srv *adminService) UpdateUser(ctx context.Context, input *usecase.AdminUpdateUserInput) (*entity.User, error) {
	srv.log(ctx).Info("Admin updating user", slog.Any("userID", input.UserID))

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		user, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user update failed")
			}

			return errors.Wrap(err, "failed to find user by id")
		}

		if input.Name != nil {
			user.Name = *input.Name
		}
		if input.Phone != nil {
			user.Phone = *input.Phone
		}
		if input.Address != nil {
			user.Address = *input.Address
		}

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to update user")
		}
		updated = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Admin user update failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user update transaction")
	}

	return updated, nil
}

// ChangeRole promotes or demotes a user. Demoting the last active
// administrator is rejected so the panel can never lock itself out.
func (srv *adminService) ChangeRole(ctx context.Context, input *usecase.ChangeRoleInput) (*entity.User, error) {
	srv.log(ctx).Info("Changing user role", slog.Any("userID", input.UserID), slog.String("role", input.Role.String()))

	if !input.Role.IsValid() {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "invalid role")
	}

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		user, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "role change failed")
			}

			return errors.Wrap(err, "failed to find user by id")
		}

		if user.IsAdmin() && input.Role != entity.RoleAdmin {
			if err := ensureNotLastAdmin(ctx, userRepo, user.ID); err != nil {
				return err
			}
		}

		user.Role = input.Role
		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to update user role")
		}
		updated = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Role change failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute role change transaction")
	}

	return updated, nil
}

// SetUserStatus enables or disables an account. Disabling revokes every
// active session.
func (srv *adminService) SetUserStatus(ctx context.Context, input *usecase.SetUserStatusInput) (*entity.User, error) {
	srv.log(ctx).Info("Setting user status", slog.Any("userID", input.UserID), slog.String("status", input.Status.String()))

	if input.Status != entity.RecordStatusActive && input.Status != entity.RecordStatusDisabled {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "status must be active or disabled")
	}

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		user, err := userRepo.FindByID(ctx, input.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "status change failed")
			}

			return errors.Wrap(err, "failed to find user by id")
		}

		if user.IsAdmin() && input.Status == entity.RecordStatusDisabled {
			if err := ensureNotLastAdmin(ctx, userRepo, user.ID); err != nil {
				return err
			}
		}

		user.Status = input.Status
		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to update user status")
		}

		if input.Status == entity.RecordStatusDisabled {
			if err := repoFactory.NewRefreshTokenRepository().DeleteByUserID(ctx, user.ID); err != nil {
				return errors.Wrap(err, "failed to revoke sessions")
			}
		}
		updated = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Status change failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute status change transaction")
	}

	return updated, nil
}

// DeleteUser soft-deletes an account and revokes its sessions.
func (srv *adminService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Deleting user", slog.Any("userID", userID))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user deletion failed")
			}

			return errors.Wrap(err, "failed to find user by id")
		}

		if user.IsAdmin() {
			if err := ensureNotLastAdmin(ctx, userRepo, user.ID); err != nil {
				return err
			}
		}

		now := time.Now()
		user.Status = entity.RecordStatusDeleted
		user.DeletedAt = &now

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to soft delete user")
		}

		return errors.Wrap(
			repoFactory.NewRefreshTokenRepository().DeleteByUserID(ctx, user.ID),
			"failed to revoke sessions",
		)
	})
	if err != nil {
		srv.log(ctx).Warn("User deletion failed", slog.Any("userID", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to execute user deletion transaction")
	}

	return nil
}

// RestoreUser brings a soft-deleted or disabled account back to active.
func (srv *adminService) RestoreUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	srv.log(ctx).Info("Restoring user", slog.Any("userID", userID))

	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.NewUserRepository()

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user restore failed")
			}

			return errors.Wrap(err, "failed to find user by id")
		}

		user.Status = entity.RecordStatusActive
		user.DeletedAt = nil

		if err := userRepo.Update(ctx, user); err != nil {
			return errors.Wrap(err, "failed to restore user")
		}
		updated = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("User restore failed", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user restore transaction")
	}

	return updated, nil
}

// ListAllReviews pages reviews across all products for moderation.
func (srv *adminService) ListAllReviews(ctx context.Context, input *usecase.ListAllReviewsInput) (*usecase.ReviewListOutput, error) {
	page, limit := normalizePagination(input.Page, input.Limit)

	reviews, total, err := srv.reviewRepo.List(ctx, repository.ReviewFilter{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Rating:    input.Rating,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reviews")
	}

	return &usecase.ReviewListOutput{
		Reviews: reviews,
		Total:   total,
		Page:    page,
		Limit:   limit,
	}, nil
}

// Dashboard aggregates the storefront metrics shown on the admin panel.
func (srv *adminService) Dashboard(ctx context.Context) (*usecase.DashboardOutput, error) {
	srv.log(ctx).Debug("Building dashboard")

	output := &usecase.DashboardOutput{
		TotalRevenue: decimal.Zero,
		AverageOrder: decimal.Zero,
	}

	var err error
	if output.TotalUsers, err = srv.userRepo.Count(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to count users")
	}
	if output.TotalProducts, err = srv.productRepo.Count(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to count products")
	}
	if output.TotalOrders, err = srv.orderRepo.Count(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to count orders")
	}
	if output.TotalReviews, err = srv.reviewRepo.Count(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to count reviews")
	}

	revenue, err := srv.orderRepo.Revenue(ctx, revenueStatuses)
	if err != nil {
		return nil, errors.Wrap(err, "failed to aggregate revenue")
	}
	output.TotalRevenue = revenue.Total
	if revenue.OrderCount > 0 {
		output.AverageOrder = revenue.Total.DivRound(decimal.NewFromInt(revenue.OrderCount), 2)
	}

	pending, err := srv.orderRepo.Revenue(ctx, []entity.OrderStatus{entity.OrderStatusPending})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count pending orders")
	}
	output.PendingOrders = pending.OrderCount

	delivered, err := srv.orderRepo.Revenue(ctx, []entity.OrderStatus{entity.OrderStatusDelivered})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count delivered orders")
	}
	output.DeliveredOrders = delivered.OrderCount

	if output.RecentOrders, err = srv.orderRepo.Recent(ctx, dashboardRecentOrders); err != nil {
		return nil, errors.Wrap(err, "failed to load recent orders")
	}

	sales, err := srv.orderRepo.TopProducts(ctx, dashboardTopProducts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load top products")
	}
	output.TopProducts = make([]usecase.ProductSalesRow, 0, len(sales))
	for _, row := range sales {
		output.TopProducts = append(output.TopProducts, usecase.ProductSalesRow{
			ProductID: row.ProductID,
			Name:      row.Name,
			UnitsSold: row.UnitsSold,
		})
	}

	return output, nil
}

// ensureNotLastAdmin rejects the mutation when no other active
// administrator would remain.
func ensureNotLastAdmin(ctx context.Context, userRepo repository.UserRepository, excludeID uuid.UUID) error {
	remaining, err := userRepo.CountActiveAdmins(ctx, &excludeID)
	if err != nil {
		return errors.Wrap(err, "failed to count active admins")
	}
	if remaining == 0 {
		return errors.Wrap(domainerrors.ErrLastAdmin, "operation would remove the last administrator")
	}

	return nil
}
