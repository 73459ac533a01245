package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/config"
	infragin "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/gin"
	infralogger "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
)

// Default timeout values.
const (
	defaultReadTimeout  = 30 * time.Second
	defaultWriteTimeout = 60 * time.Second
	defaultIdleTimeout  = 120 * time.Second
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// NewServer creates a new HTTP server using the infrastructure gin package.
func NewServer(handler *Handler, serverCfg ServerConfig, cfg *config.Config, infraLog infralogger.Logger) *infragin.Server {
	// Set timeout defaults if not provided
	readTimeout := serverCfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = defaultReadTimeout
	}
	writeTimeout := serverCfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = defaultWriteTimeout
	}

	// Build server using infrastructure gin package
	builder := infragin.NewServerBuilder(cfg.Service.Name, serverCfg.Port).
		WithLogger(infraLog).
		WithDebug(serverCfg.Debug).
		WithVersion(cfg.Service.Version).
		WithTimeouts(readTimeout, writeTimeout, defaultIdleTimeout).
		WithRoutes(func(router *gin.Engine) {
			// Setup service-specific routes (health routes added by builder)
			SetupServiceRoutes(router, handler, cfg)
		})

	// Lock CORS down to the configured origins when the deployment names
	// them; the default allows any origin.
	if len(cfg.Service.CORSOrigins) > 0 {
		builder = builder.WithCORSOrigins(cfg.Service.CORSOrigins)
	}

	return builder.Build()
}

// SetupServiceRoutes configures service-specific API routes (not health
// routes; the infrastructure gin package registers those). An empty JWT
// secret leaves the v1 group open.
func SetupServiceRoutes(router *gin.Engine, handler *Handler, cfg *config.Config) {
	v1 := infragin.ProtectedGroup(router, "/api/v1", cfg.Auth.JWTSecret)

	// Product mirror endpoints
	products := v1.Group("/products")
	products.GET("", handler.ListProducts)                // GET /api/v1/products
	products.GET("/:id", handler.GetProduct)              // GET /api/v1/products/:id
	products.GET("/:id/status", handler.GetProductStatus) // GET /api/v1/products/:id/status
	products.PUT("/:id/draft", handler.SaveDraft)         // PUT /api/v1/products/:id/draft
	products.GET("/:id/draft", handler.GetDraft)          // GET /api/v1/products/:id/draft
	products.DELETE("/:id/draft", handler.DeleteDraft)    // DELETE /api/v1/products/:id/draft
	products.POST("/:id/publish", handler.PublishProduct) // POST /api/v1/products/:id/publish

	// Bulk status endpoint
	status := v1.Group("/status")
	status.POST("/batch", handler.BatchStatus) // POST /api/v1/status/batch

	v1.POST("/preview", handler.Preview)  // POST /api/v1/preview
	v1.GET("/stats", handler.GetStats)    // GET /api/v1/stats
	v1.POST("/sync", handler.TriggerSync) // POST /api/v1/sync

	// Prometheus scrape endpoint, outside the protected group.
	if handler.telemetry != nil {
		router.GET("/metrics", gin.WrapH(handler.telemetry.Handler()))
	}

	// Keep the plain readiness handler alongside the builder's health routes.
	router.GET("/ready", handler.ReadyCheck)
}
