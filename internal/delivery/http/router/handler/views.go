package handler

import (
	"time"

	"storefront/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// View models decouple the JSON surface from the domain entities and
// keep internals such as password hashes out of responses.

type userView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserView(user *entity.User) *userView {
	if user == nil {
		return nil
	}

	return &userView{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role.String(),
		Status:    user.Status.String(),
		Phone:     user.Phone,
		Address:   user.Address,
		CreatedAt: user.CreatedAt,
	}
}

func newUserViews(users []*entity.User) []*userView {
	views := make([]*userView, 0, len(users))
	for _, user := range users {
		views = append(views, newUserView(user))
	}

	return views
}

type categoryView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newCategoryView(category *entity.Category) *categoryView {
	if category == nil {
		return nil
	}

	return &categoryView{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		Status:      category.Status.String(),
		CreatedAt:   category.CreatedAt,
	}
}

func newCategoryViews(categories []*entity.Category) []*categoryView {
	views := make([]*categoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, newCategoryView(category))
	}

	return views
}

type productView struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku,omitempty"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    uuid.UUID       `json:"categoryId"`
	Stock         int             `json:"stock"`
	SoldCount     int             `json:"soldCount"`
	Images        []string        `json:"images"`
	Tags          []string        `json:"tags"`
	Status        string          `json:"status"`
	AverageRating float64         `json:"averageRating"`
	ReviewsCount  int             `json:"reviewsCount"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func newProductView(product *entity.Product) *productView {
	if product == nil {
		return nil
	}

	return &productView{
		ID:            product.ID,
		Name:          product.Name,
		SKU:           product.SKU,
		Description:   product.Description,
		Price:         product.Price,
		CategoryID:    product.CategoryID,
		Stock:         product.Stock,
		SoldCount:     product.SoldCount,
		Images:        product.Images,
		Tags:          product.Tags,
		Status:        product.Status.String(),
		AverageRating: product.AverageRating,
		ReviewsCount:  product.ReviewsCount,
		CreatedAt:     product.CreatedAt,
	}
}

func newProductViews(products []*entity.Product) []*productView {
	views := make([]*productView, 0, len(products))
	for _, product := range products {
		views = append(views, newProductView(product))
	}

	return views
}

type orderItemView struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type shippingAddressView struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type orderView struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"userId"`
	Items           []orderItemView     `json:"items"`
	TotalAmount     decimal.Decimal     `json:"totalAmount"`
	Status          string              `json:"status"`
	ShippingAddress shippingAddressView `json:"shippingAddress"`
	PaymentID       string              `json:"paymentId,omitempty"`
	PaymentStatus   string              `json:"paymentStatus"`
	IsPaid          bool                `json:"isPaid"`
	PaidAt          *time.Time          `json:"paidAt,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

func newOrderView(order *entity.Order) *orderView {
	if order == nil {
		return nil
	}

	items := make([]orderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemView{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal(),
		})
	}

	return &orderView{
		ID:          order.ID,
		UserID:      order.UserID,
		Items:       items,
		TotalAmount: order.TotalAmount,
		Status:      order.Status.String(),
		ShippingAddress: shippingAddressView{
			Street:  order.ShippingAddress.Street,
			City:    order.ShippingAddress.City,
			ZipCode: order.ShippingAddress.ZipCode,
			Country: order.ShippingAddress.Country,
		},
		PaymentID:     order.PaymentID,
		PaymentStatus: order.PaymentStatus.String(),
		IsPaid:        order.IsPaid,
		PaidAt:        order.PaidAt,
		CreatedAt:     order.CreatedAt,
	}
}

func newOrderViews(orders []*entity.Order) []*orderView {
	views := make([]*orderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, newOrderView(order))
	}

	return views
}

type reviewView struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	UserID    uuid.UUID `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newReviewView(review *entity.Review) *reviewView {
	if review == nil {
		return nil
	}

	return &reviewView{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		Status:    review.Status.String(),
		CreatedAt: review.CreatedAt,
		UpdatedAt: review.UpdatedAt,
	}
}

func newReviewViews(reviews []*entity.Review) []*reviewView {
	views := make([]*reviewView, 0, len(reviews))
	for _, review := range reviews {
		views = append(views, newReviewView(review))
	}

	return views
}
