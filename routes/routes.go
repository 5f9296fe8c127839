package routes

import (
	"github.com/gin-gonic/gin"

	"motormart/config"
	"motormart/controllers"
	"motormart/middleware"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine) {
	// Uploaded receipts and gallery images are served statically
	r.Static("/uploads", config.AppConfig.UploadRoot)

	// Legacy dispatch endpoints, wire-compatible with the original SPA
	r.POST("/api/action", controllers.DispatchAction)
	r.POST("/api/controller", controllers.DispatchCommand)

	// Public routes (no authentication required)
	public := r.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", controllers.Login)
			auth.POST("/register", controllers.Register)
		}

		// Inventory browsing is public
		public.GET("/vehicles", controllers.GetVehicles)
		public.GET("/vehicles/:id", controllers.GetVehicleByID)
	}

	// Protected routes (authentication required)
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.POST("/auth/refresh", controllers.RefreshToken)

		protected.GET("/profile", controllers.GetUserProfile)
		protected.PUT("/profile", controllers.UpdateUserProfile)
		protected.POST("/profile/change-password", controllers.ChangePassword)

		protected.GET("/notifications", controllers.GetNotifications)
		protected.PATCH("/notifications/:id/read", controllers.MarkNotificationRead)

		// Admin routes
		admin := protected.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			admin.GET("/dashboard", controllers.AdminDashboard)
			admin.GET("/transactions", controllers.AdminGetTransactions)
			admin.GET("/audit-log", controllers.AdminGetAuditLog)
			admin.GET("/users", controllers.GetAllUsers)

			// Inventory management
			admin.POST("/vehicles", controllers.CreateVehicle)
			admin.PUT("/vehicles/:id", controllers.UpdateVehicle)
			admin.PATCH("/vehicles/:id/status", controllers.UpdateVehicleStatus)
			admin.DELETE("/vehicles/:id", controllers.DeleteVehicle)
		}

		// Orders
		orders := protected.Group("/orders")
		{
			orders.POST("", middleware.UserAuthMiddleware(), controllers.CreateOrder)
			orders.GET("", controllers.GetOrders)
			orders.GET("/:id", controllers.GetOrderByID)
			orders.GET("/:id/certificate", controllers.GetOrderCertificate)
			orders.PUT("/:id/status", middleware.AdminAuthMiddleware(), controllers.UpdateOrderStatus)
		}

		// Payments
		payments := protected.Group("/payments")
		{
			payments.POST("", middleware.UserAuthMiddleware(), controllers.CreatePayment)
			payments.PUT("/:id/verify", middleware.AdminAuthMiddleware(), controllers.VerifyPayment)
			payments.POST("/gateway/order", middleware.UserAuthMiddleware(), controllers.GenerateGatewayOrder)
			payments.POST("/gateway/verify", middleware.UserAuthMiddleware(), controllers.VerifyGatewayPayment)
		}

		// Wishlist
		wishlist := protected.Group("/wishlist")
		wishlist.Use(middleware.UserAuthMiddleware())
		{
			wishlist.GET("", controllers.GetWishlist)
			wishlist.POST("/toggle", controllers.ToggleWishlist)
		}
	}
}
