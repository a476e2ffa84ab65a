// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// SetupRoutes wires all API routes. Shared services are constructed once
// here; the order service composes the cart, checkout and payment stacks.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	cartService := cart.NewService(db, cfg)
	pricingService := pricing.NewService(db, cfg, logger)
	checkoutService := checkout.NewService(db, redisClient, cfg, cartService, pricingService)

	mpesaClient := payment.NewMpesaClient(cfg, logger)
	registry := payment.NewRegistry(
		payment.NewCODInitiator(),
		payment.NewMpesaInitiator(mpesaClient),
	)

	emailService := email.NewEmailService(cfg, logger)
	orderService := order.NewService(db, cfg, logger, redisClient, cartService, checkoutService, registry, emailService)

	authHandler := handlers.NewAuthHandler(db, cfg)
	profileHandler := handlers.NewUserProfileHandler(db, cfg)
	productHandler := handlers.NewProductHandler(db, cfg)
	cartHandler := handlers.NewCartHandler(db, cfg)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, cfg)
	orderHandler := handlers.NewOrderHandler(orderService, cfg)
	invoiceHandler := handlers.NewInvoiceHandler(orderService, cfg)
	pricingHandler := handlers.NewPricingHandler(pricingService, cfg)
	couponHandler := handlers.NewCouponHandler(db, cfg)
	webhookHandler := handlers.NewWebhookHandler(orderService, cfg, logger)

	// Authentication
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.POST("/change-password", authHandler.ChangePassword)
			protected.GET("/validate", authHandler.ValidateToken)
		}
	}

	// User profile and addresses
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/profile", profileHandler.GetProfile)
		users.PUT("/profile", profileHandler.UpdateProfile)
		users.GET("/addresses", profileHandler.ListAddresses)
		users.POST("/addresses", profileHandler.AddAddress)
		users.DELETE("/addresses/:id", profileHandler.DeleteAddress)
	}

	// Public catalog
	products := rg.Group("/products")
	{
		products.GET("", productHandler.ListProducts)
		products.GET("/categories", productHandler.ListCategories)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
		products.GET("/:id", productHandler.GetProduct)
	}

	// Cart
	cartGroup := rg.Group("/cart")
	cartGroup.Use(middleware.AuthMiddleware(cfg))
	{
		cartGroup.GET("", cartHandler.GetCart)
		cartGroup.DELETE("", cartHandler.ClearCart)
		cartGroup.POST("/items", cartHandler.AddToCart)
		cartGroup.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartGroup.DELETE("/items/:id", cartHandler.RemoveFromCart)
	}

	// Checkout quotes and validation
	checkoutGroup := rg.Group("/checkout")
	checkoutGroup.Use(middleware.AuthMiddleware(cfg))
	{
		checkoutGroup.GET("/verify-cart", checkoutHandler.VerifyCart)
		checkoutGroup.POST("/calculate-tax", checkoutHandler.CalculateTax)
		checkoutGroup.POST("/shipping-options", checkoutHandler.GetShippingOptions)
		checkoutGroup.POST("/validate-coupon", checkoutHandler.ValidateCoupon)
	}

	// Orders
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/invoice", invoiceHandler.GenerateInvoice)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		orders.POST("/:id", middleware.AdminMiddleware(), orderHandler.UpdateOrderStatus)
	}

	// Payment gateway callbacks, authenticated by payload matching rather
	// than JWT
	webhooks := rg.Group("/webhooks")
	{
		webhooks.POST("/mpesa", webhookHandler.MpesaCallback)
	}

	// Admin
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg))
	admin.Use(middleware.AdminMiddleware())
	{
		adminProducts := admin.Group("/products")
		{
			adminProducts.POST("", productHandler.CreateProduct)
			adminProducts.PUT("/:id", productHandler.UpdateProduct)
		}

		adminOrders := admin.Group("/orders")
		{
			adminOrders.GET("", orderHandler.ListAllOrders)
		}

		adminPricing := admin.Group("/pricing")
		{
			adminPricing.GET("", pricingHandler.ListConfigs)
			adminPricing.PUT("", pricingHandler.UpsertConfig)
			adminPricing.GET("/:location", pricingHandler.GetConfig)
		}

		adminCoupons := admin.Group("/coupons")
		{
			adminCoupons.POST("", couponHandler.CreateCoupon)
			adminCoupons.GET("", couponHandler.ListCoupons)
			adminCoupons.DELETE("/:id", couponHandler.DeactivateCoupon)
		}
	}
}
