package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler *Handler) {
	// Health and readiness checks
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Product mirror endpoints
		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)                // GET /api/v1/products
			products.GET("/:id", handler.GetProduct)              // GET /api/v1/products/:id
			products.GET("/:id/status", handler.GetProductStatus) // GET /api/v1/products/:id/status
			products.PUT("/:id/draft", handler.SaveDraft)         // PUT /api/v1/products/:id/draft
			products.GET("/:id/draft", handler.GetDraft)          // GET /api/v1/products/:id/draft
			products.DELETE("/:id/draft", handler.DeleteDraft)    // DELETE /api/v1/products/:id/draft
			products.POST("/:id/publish", handler.PublishProduct) // POST /api/v1/products/:id/publish
		}

		// Bulk status endpoint
		status := v1.Group("/status")
		{
			status.POST("/batch", handler.BatchStatus) // POST /api/v1/status/batch
		}

		v1.POST("/preview", handler.Preview)   // POST /api/v1/preview
		v1.GET("/stats", handler.GetStats)     // GET /api/v1/stats
		v1.POST("/sync", handler.TriggerSync)  // POST /api/v1/sync
	}
}
