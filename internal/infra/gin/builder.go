package gin

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/jwt"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
)

// ServerBuilder assembles a Server step by step. Every producthub binary
// goes through it so they all expose the same probe surface and middleware
// stack.
type ServerBuilder struct {
	config       *Config
	logger       logger.Logger
	setupRoutes  func(*gin.Engine)
	healthChecks map[string]HealthChecker
}

// NewServerBuilder starts a builder for the named service listening on port.
func NewServerBuilder(serviceName string, port int) *ServerBuilder {
	return &ServerBuilder{
		config:       newConfig(serviceName, port),
		healthChecks: make(map[string]HealthChecker),
	}
}

// WithLogger sets the server logger. Without one, Build creates a default.
func (b *ServerBuilder) WithLogger(log logger.Logger) *ServerBuilder {
	b.logger = log
	return b
}

// WithDebug toggles gin debug mode.
func (b *ServerBuilder) WithDebug(debug bool) *ServerBuilder {
	b.config.Debug = debug
	return b
}

// WithVersion sets the version reported by the health endpoints.
func (b *ServerBuilder) WithVersion(version string) *ServerBuilder {
	b.config.ServiceVersion = version
	return b
}

// WithCORSOrigins restricts cross-origin requests to the given origins.
func (b *ServerBuilder) WithCORSOrigins(origins []string) *ServerBuilder {
	b.config.CORS.AllowedOrigins = origins
	return b
}

// WithTimeouts overrides the read, write, and idle timeouts.
func (b *ServerBuilder) WithTimeouts(read, write, idle time.Duration) *ServerBuilder {
	b.config.ReadTimeout = read
	b.config.WriteTimeout = write
	b.config.IdleTimeout = idle
	return b
}

// WithHealthCheck registers a named dependency check on GET /health.
func (b *ServerBuilder) WithHealthCheck(name string, checker HealthChecker) *ServerBuilder {
	b.healthChecks[name] = checker
	return b
}

// WithDatabaseHealthCheck registers a database check; a failed ping marks
// the service unhealthy.
func (b *ServerBuilder) WithDatabaseHealthCheck(pingFunc func() error) *ServerBuilder {
	return b.WithHealthCheck("database", DatabaseHealthChecker(pingFunc))
}

// WithRedisHealthCheck registers a Redis check; a failed ping only degrades
// the service because the status cache is optional.
func (b *ServerBuilder) WithRedisHealthCheck(pingFunc func() error) *ServerBuilder {
	return b.WithHealthCheck("redis", RedisHealthChecker(pingFunc))
}

// WithRoutes sets the function that registers the service's own routes.
func (b *ServerBuilder) WithRoutes(setupRoutes func(*gin.Engine)) *ServerBuilder {
	b.setupRoutes = setupRoutes
	return b
}

// Build creates the server. Health routes are registered ahead of the
// service routes so every server exposes the same probe surface.
func (b *ServerBuilder) Build() *Server {
	if b.logger == nil {
		b.logger = logger.Must(logger.Config{
			Level:       "info",
			Development: b.config.Debug,
		})
	}

	wrappedSetup := func(router *gin.Engine) {
		RegisterHealthRoutes(router, HealthOptions{
			ServiceName:    b.config.ServiceName,
			ServiceVersion: b.config.ServiceVersion,
			Checks:         b.healthChecks,
		})

		if b.setupRoutes != nil {
			b.setupRoutes(router)
		}
	}

	return NewServer(b.config, b.logger, wrappedSetup)
}

// ProtectedGroup creates a router group guarded by JWT authentication.
// An empty jwtSecret leaves the group open.
func ProtectedGroup(router *gin.Engine, path, jwtSecret string) *gin.RouterGroup {
	group := router.Group(path)
	if jwtSecret != "" {
		group.Use(jwt.Middleware(jwtSecret))
	}
	return group
}
