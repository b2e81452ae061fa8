// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"storefront/internal/delivery/api/router/handler"
	"storefront/internal/delivery/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	HealthHandler     *handler.HealthHandler
	AuthHandler       *handler.AuthHandler
	CatalogHandler    *handler.CatalogHandler
	CartHandler       *handler.CartHandler
	OrderHandler      *handler.OrderHandler
	SellerHandler     *handler.SellerHandler
	AdminHandler      *handler.AdminHandler
	VisitorMiddleware *middleware.VisitorMiddleware
	GuardMiddleware   *middleware.GuardMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	health  *handler.HealthHandler
	auth    *handler.AuthHandler
	catalog *handler.CatalogHandler
	cart    *handler.CartHandler
	orders  *handler.OrderHandler
	seller  *handler.SellerHandler
	admin   *handler.AdminHandler
	visitor *middleware.VisitorMiddleware
	guard   *middleware.GuardMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		health:  params.HealthHandler,
		auth:    params.AuthHandler,
		catalog: params.CatalogHandler,
		cart:    params.CartHandler,
		orders:  params.OrderHandler,
		seller:  params.SellerHandler,
		admin:   params.AdminHandler,
		visitor: params.VisitorMiddleware,
		guard:   params.GuardMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", r.health.Check)

	// Every /api route runs on the visitor's own client with a resolved session
	api := e.Group("/api")
	api.Use(r.visitor.Attach)

	api.GET("/session", r.auth.Session)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", r.auth.Login)
		authGroup.POST("/register", r.auth.Register)
		authGroup.POST("/logout", r.auth.Logout)
	}

	api.GET("/profile", r.auth.Profile, r.guard.Require)

	// Public catalog
	api.GET("/categories", r.catalog.Categories)
	productsGroup := api.Group("/products")
	{
		productsGroup.GET("", r.catalog.Products)
		productsGroup.GET("/:id", r.catalog.Product)
		productsGroup.GET("/:id/reviews", r.catalog.Reviews)
		productsGroup.POST("/:id/reviews", r.catalog.CreateReview)
		productsGroup.DELETE("/:id/reviews/:reviewId", r.catalog.DeleteReview)
	}

	// Cart and coupons work for guests too
	cartGroup := api.Group("/cart")
	{
		cartGroup.GET("", r.cart.Cart)
		cartGroup.DELETE("", r.cart.Clear)
		cartGroup.GET("/summary", r.cart.Summary)
		cartGroup.POST("/items", r.cart.AddItem)
		cartGroup.PATCH("/items/:productId", r.cart.UpdateItem)
		cartGroup.DELETE("/items/:productId", r.cart.RemoveItem)
	}
	couponsGroup := api.Group("/coupons")
	{
		couponsGroup.GET("", r.cart.Coupons)
		couponsGroup.POST("", r.cart.ApplyCoupon)
		couponsGroup.DELETE("/:code", r.cart.RemoveCoupon)
	}

	// Buyer routes require a signed in user
	api.POST("/checkout", r.orders.Checkout, r.guard.Require)
	ordersGroup := api.Group("/orders")
	ordersGroup.Use(r.guard.Require)
	{
		ordersGroup.GET("", r.orders.MyOrders)
		ordersGroup.GET("/:id", r.orders.Order)
		ordersGroup.POST("/:id/cancel", r.orders.Cancel)
		ordersGroup.GET("/:id/qr", r.orders.TrackingQR)
	}

	// Seller back office, also open to admins
	sellerGroup := api.Group("/seller")
	sellerGroup.Use(r.guard.Require)
	{
		sellerGroup.GET("/products", r.seller.Products)
		sellerGroup.GET("/products/deleted", r.seller.DeletedProducts)
		sellerGroup.POST("/products", r.seller.CreateProduct)
		sellerGroup.PUT("/products/:id", r.seller.UpdateProduct)
		sellerGroup.PATCH("/products/:id/publish", r.seller.SetPublished)
		sellerGroup.DELETE("/products/:id", r.seller.DeleteProduct)
		sellerGroup.POST("/products/:id/restore", r.seller.RestoreProduct)

		sellerGroup.GET("/coupons", r.seller.Coupons)
		sellerGroup.POST("/coupons", r.seller.CreateCoupon)
		sellerGroup.PUT("/coupons/:id", r.seller.UpdateCoupon)
		sellerGroup.DELETE("/coupons/:id", r.seller.DeleteCoupon)
	}

	// Admin back office
	adminGroup := api.Group("/admin")
	adminGroup.Use(r.guard.Require)
	{
		adminGroup.POST("/categories", r.admin.CreateCategory)
		adminGroup.PUT("/categories/:id", r.admin.UpdateCategory)
		adminGroup.DELETE("/categories/:id", r.admin.DeleteCategory)

		adminGroup.GET("/orders", r.admin.Orders)
		adminGroup.PATCH("/orders/:id/status", r.admin.UpdateOrderStatus)
		adminGroup.DELETE("/orders/:id", r.admin.DeleteOrder)

		adminGroup.GET("/users", r.admin.Users)
		adminGroup.PATCH("/users/:id/role", r.admin.UpdateRole)
		adminGroup.DELETE("/users/:id", r.admin.DeleteUser)
	}
}
