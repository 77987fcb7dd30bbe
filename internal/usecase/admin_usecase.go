package usecase

import (
	"context"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Input DTOs ---

// ListUsersInput filters the admin user listing.
type ListUsersInput struct {
	Search string
	Role   *entity.Role
	Status *entity.RecordStatus
	Page   int
	Limit  int
}

// AdminUpdateUserInput edits another user's account fields.
type AdminUpdateUserInput struct {
	UserID  uuid.UUID
	Name    *string
	Phone   *string
	Address *string
}

// ChangeRoleInput promotes or demotes a user.
type ChangeRoleInput struct {
	UserID uuid.UUID
	Role   entity.Role
}

// SetUserStatusInput enables or disables an account.
type SetUserStatusInput struct {
	UserID uuid.UUID
	Status entity.RecordStatus
}

// ListAllReviewsInput pages reviews across all products for moderation.
type ListAllReviewsInput struct {
	ProductID *uuid.UUID
	UserID    *uuid.UUID
	Rating    *int
	Page      int
	Limit     int
}

// --- Output DTOs ---

// UserListOutput returns one page of users and the total match count.
type UserListOutput struct {
	Users []*entity.User
	Total int64
	Page  int
	Limit int
}

// DashboardOutput aggregates storefront metrics for the admin panel.
// Revenue figures only count orders that were actually paid for, that
// is confirmed, shipped or delivered ones.
type DashboardOutput struct {
	TotalUsers      int64             `json:"totalUsers"`
	TotalProducts   int64             `json:"totalProducts"`
	TotalOrders     int64             `json:"totalOrders"`
	TotalReviews    int64             `json:"totalReviews"`
	TotalRevenue    decimal.Decimal   `json:"totalRevenue"`
	AverageOrder    decimal.Decimal   `json:"averageOrderValue"`
	RecentOrders    []*entity.Order   `json:"recentOrders"`
	TopProducts     []ProductSalesRow `json:"topProducts"`
	PendingOrders   int64             `json:"pendingOrders"`
	DeliveredOrders int64             `json:"deliveredOrders"`
}

// ProductSalesRow is one best-seller entry on the dashboard.
type ProductSalesRow struct {
	ProductID uuid.UUID `json:"productId"`
	Name      string    `json:"name"`
	UnitsSold int64     `json:"unitsSold"`
}

// AdminUsecase defines the interface for the administration panel:
// user management, review moderation and the metrics dashboard.
type AdminUsecase interface {
	ListUsers(ctx context.Context, input *ListUsersInput) (*UserListOutput, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateUser(ctx context.Context, input *AdminUpdateUserInput) (*entity.User, error)
	ChangeRole(ctx context.Context, input *ChangeRoleInput) (*entity.User, error)
	SetUserStatus(ctx context.Context, input *SetUserStatusInput) (*entity.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	RestoreUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)

	ListAllReviews(ctx context.Context, input *ListAllReviewsInput) (*ReviewListOutput, error)

	Dashboard(ctx context.Context) (*DashboardOutput, error)
}
