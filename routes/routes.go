package routes

import (
	"market-delivery-api/config"
	"market-delivery-api/handlers"
	"market-delivery-api/middleware"
	"market-delivery-api/repositories"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes wires repositories and handlers around the injected DB handle
// and registers the API surface.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	orderRepo := repositories.NewOrderRepository(db)
	userRepo := repositories.NewUserRepository(db)
	productRepo := repositories.NewProductRepository(db)

	authHandler := handlers.NewAuthHandler(userRepo)
	orderHandler := handlers.NewOrderHandler(orderRepo, userRepo)
	productHandler := handlers.NewProductHandler(productRepo, config.GetEnv("UPLOAD_DIR", "uploads"))
	adminHandler := handlers.NewAdminHandler(orderRepo, userRepo)

	api := r.Group("/api")
	api.Use(middleware.IdentityOptional())
	{
		// Auth
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/register", authHandler.Register)
		api.GET("/auth/me", authHandler.Me)

		// Orders
		api.POST("/orders", orderHandler.Create)
		api.GET("/orders", orderHandler.List)
		api.GET("/orders/:id", orderHandler.Get)
		api.PATCH("/orders/:id", orderHandler.Update)
		api.POST("/orders/:id/claim", orderHandler.Claim)
		api.GET("/orders/:id/items", orderHandler.Items)
		api.GET("/orders/:id/tracking", orderHandler.Tracking)
		api.POST("/orders/:id/courier-location", orderHandler.CourierLocation)

		// Catalog
		api.GET("/products", productHandler.List)
		api.GET("/products/active", productHandler.ListActive)
		api.POST("/products", productHandler.Create)
		api.PATCH("/products/:id", productHandler.Update)

		// Couriers & admin dashboard
		api.GET("/couriers", adminHandler.ListCouriers)
		api.GET("/couriers/stats/:email", adminHandler.CourierStats)
		api.GET("/admin/stats", adminHandler.Stats)

		// State machine info (great for docs/Postman)
		api.GET("/state-machine", adminHandler.StateMachineInfo)
	}
}
