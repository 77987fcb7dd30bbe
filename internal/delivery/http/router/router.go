// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"storefront/internal/delivery/http/middleware"
	"storefront/internal/delivery/http/router/handler"
	"storefront/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler     *handler.AuthHandler
	ProductHandler  *handler.ProductHandler
	CategoryHandler *handler.CategoryHandler
	CartHandler     *handler.CartHandler
	OrderHandler    *handler.OrderHandler
	PaymentHandler  *handler.PaymentHandler
	ReviewHandler   *handler.ReviewHandler
	AdminHandler    *handler.AdminHandler
	UploadHandler   *handler.UploadHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	auth           *handler.AuthHandler
	product        *handler.ProductHandler
	category       *handler.CategoryHandler
	cart           *handler.CartHandler
	order          *handler.OrderHandler
	payment        *handler.PaymentHandler
	review         *handler.ReviewHandler
	admin          *handler.AdminHandler
	upload         *handler.UploadHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		auth:           params.AuthHandler,
		product:        params.ProductHandler,
		category:       params.CategoryHandler,
		cart:           params.CartHandler,
		order:          params.OrderHandler,
		payment:        params.PaymentHandler,
		review:         params.ReviewHandler,
		admin:          params.AdminHandler,
		upload:         params.UploadHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.auth.Register)
		authGroup.POST("/login", r.auth.Login)
		authGroup.POST("/refresh", r.auth.RefreshToken)
		authGroup.POST("/logout", r.auth.Logout)
	}

	profileGroup := api.Group("/auth/profile")
	profileGroup.Use(r.authMiddleware.Authenticate)
	{
		profileGroup.GET("", r.auth.GetProfile)
		profileGroup.PUT("", r.auth.UpdateProfile)
	}

	// Public catalog routes
	productGroup := api.Group("/products")
	{
		productGroup.GET("", r.product.ListProducts)
		productGroup.GET("/:id", r.product.GetProduct)
		productGroup.GET("/:id/reviews", r.review.ListProductReviews)
	}
	productGroup.POST("/:id/reviews", r.review.CreateReview, r.authMiddleware.Authenticate)
	productGroup.GET("/:id/reviews/eligibility", r.review.CanReview, r.authMiddleware.Authenticate)

	categoryGroup := api.Group("/categories")
	{
		categoryGroup.GET("", r.category.ListCategories)
		categoryGroup.GET("/:id", r.category.GetCategory)
	}

	// Review routes that require authentication
	reviewGroup := api.Group("/reviews")
	reviewGroup.Use(r.authMiddleware.Authenticate)
	{
		reviewGroup.PUT("/:id", r.review.UpdateReview)
		reviewGroup.DELETE("/:id", r.review.DeleteReview)
	}

	// Cart routes that require authentication
	cartGroup := api.Group("/cart")
	cartGroup.Use(r.authMiddleware.Authenticate)
	{
		cartGroup.GET("", r.cart.GetCart)
		cartGroup.POST("/items", r.cart.AddItem)
		cartGroup.PUT("/items/:productId", r.cart.UpdateItem)
		cartGroup.DELETE("/items/:productId", r.cart.RemoveItem)
		cartGroup.DELETE("", r.cart.ClearCart)
	}

	// Order routes that require authentication
	orderGroup := api.Group("/orders")
	orderGroup.Use(r.authMiddleware.Authenticate)
	{
		orderGroup.POST("", r.order.CreateOrder)
		orderGroup.GET("", r.order.ListMyOrders)
		orderGroup.GET("/:id", r.order.GetMyOrder)
		orderGroup.POST("/:id/cancel", r.order.CancelOrder)
		orderGroup.POST("/:id/checkout", r.payment.CreateCheckout)
	}

	// Payment routes. The webhook and checkout back URLs stay public
	// because the gateway calls them without credentials.
	paymentGroup := api.Group("/payments")
	{
		paymentGroup.POST("/webhook", r.payment.Webhook)
		paymentGroup.GET("/success", r.payment.PaymentReturn)
		paymentGroup.GET("/failure", r.payment.PaymentReturn)
		paymentGroup.GET("/pending", r.payment.PaymentReturn)
	}
	paymentGroup.GET("/verify", r.payment.VerifyPayment, r.authMiddleware.Authenticate)

	subscriptionGroup := api.Group("/subscriptions")
	subscriptionGroup.Use(r.authMiddleware.Authenticate)
	{
		subscriptionGroup.POST("", r.payment.CreateSubscription)
		subscriptionGroup.GET("/:id", r.payment.GetSubscription)
		subscriptionGroup.DELETE("/:id", r.payment.CancelSubscription)
	}

	// Admin routes that require authentication and the "admin" role
	adminGroup := api.Group("/admin")
	adminGroup.Use(r.authMiddleware.Authenticate)
	adminGroup.Use(r.authMiddleware.RequireRole(entity.RoleAdmin))
	{
		adminGroup.GET("/dashboard", r.admin.Dashboard)

		adminGroup.GET("/users", r.admin.ListUsers)
		adminGroup.GET("/users/:id", r.admin.GetUser)
		adminGroup.PUT("/users/:id", r.admin.UpdateUser)
		adminGroup.PUT("/users/:id/role", r.admin.ChangeRole)
		adminGroup.PUT("/users/:id/status", r.admin.SetUserStatus)
		adminGroup.DELETE("/users/:id", r.admin.DeleteUser)
		adminGroup.POST("/users/:id/restore", r.admin.RestoreUser)

		adminGroup.POST("/products", r.product.CreateProduct)
		adminGroup.PUT("/products/:id", r.product.UpdateProduct)
		adminGroup.DELETE("/products/:id", r.product.DeleteProduct)

		adminGroup.POST("/categories", r.category.CreateCategory)
		adminGroup.PUT("/categories/:id", r.category.UpdateCategory)
		adminGroup.DELETE("/categories/:id", r.category.DeleteCategory)

		adminGroup.GET("/orders", r.order.ListOrders)
		adminGroup.GET("/orders/:id", r.order.GetOrder)
		adminGroup.PUT("/orders/:id/status", r.order.UpdateOrderStatus)

		adminGroup.GET("/reviews", r.admin.ListAllReviews)
		adminGroup.DELETE("/reviews/:id", r.admin.DeleteReview)

		adminGroup.POST("/uploads", r.upload.UploadImage)

		adminGroup.GET("/payments/:id", r.payment.GetPayment)
	}
}
