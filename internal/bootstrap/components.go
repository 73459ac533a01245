// Package bootstrap wires configuration, storage, and domain components
// into runnable services.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/api"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/config"
	infragin "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/gin"
	infralogger "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/layout"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/logging"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/processor"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/render"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/shopify"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/status"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/statuscache"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/telemetry"
)

const (
	defaultHTTPPort    = 8080
	defaultHTTPTimeout = 30 * time.Second
	defaultConcurrency = 10
)

// HTTPComponents holds all components needed for the HTTP server.
type HTTPComponents struct {
	DB      *sqlx.DB
	Redis   *redis.Client
	Handler *api.Handler
	Server  *infragin.Server
}

// NewHTTPComponents creates all components for the HTTP server.
func NewHTTPComponents(cfg *config.Config, logger infralogger.Logger) (*HTTPComponents, error) {
	dbComps, err := SetupDatabase(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	cache, redisClient, err := SetupStatusCache(cfg, logger)
	if err != nil {
		_ = dbComps.DB.Close()
		return nil, fmt.Errorf("setup status cache: %w", err)
	}

	tp := telemetry.NewProvider()
	classifier := layout.New()
	renderer := render.New()

	statusService := status.NewService(
		classifier,
		dbComps.Products,
		dbComps.Drafts,
		dbComps.Snapshots,
		cache,
		tp,
		logger,
	)

	catalog := newCatalogClient(cfg, logger)
	syncer := newSyncer(cfg, classifier, catalog, dbComps, cache, tp, logger)

	handler := api.NewHandler(
		classifier,
		renderer,
		dbComps.Products,
		dbComps.Drafts,
		statusService,
		catalog,
		syncer,
		tp,
		logging.NewAdapter(logger),
	)

	port := cfg.Service.Port
	if port == 0 {
		port = defaultHTTPPort
	}

	serverConfig := api.ServerConfig{
		Port:         port,
		ReadTimeout:  defaultHTTPTimeout,
		WriteTimeout: defaultHTTPTimeout,
		Debug:        cfg.Service.Debug,
	}
	server := api.NewServer(handler, serverConfig, cfg, logger)

	return &HTTPComponents{
		DB:      dbComps.DB,
		Redis:   redisClient,
		Handler: handler,
		Server:  server,
	}, nil
}

// SyncComponents holds everything the catalog sync worker runs.
type SyncComponents struct {
	DB        *sqlx.DB
	Redis     *redis.Client
	Syncer    *processor.Syncer
	Scheduler *processor.Scheduler
	Monitor   *infragin.Server
}

// NewSyncComponents creates the catalog sync worker: the syncer, its cron
// schedule, and a small monitoring server exposing health and metrics.
func NewSyncComponents(cfg *config.Config, logger infralogger.Logger) (*SyncComponents, error) {
	dbComps, err := SetupDatabase(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}

	cache, redisClient, err := SetupStatusCache(cfg, logger)
	if err != nil {
		_ = dbComps.DB.Close()
		return nil, fmt.Errorf("setup status cache: %w", err)
	}

	tp := telemetry.NewProvider()
	catalog := newCatalogClient(cfg, logger)
	syncer := newSyncer(cfg, layout.New(), catalog, dbComps, cache, tp, logger)
	scheduler := processor.NewScheduler(syncer, cfg.Sync.Schedule, logger)

	monitor := infragin.NewServerBuilder("producthub-sync", cfg.Sync.MonitorPort).
		WithLogger(logger).
		WithDebug(cfg.Service.Debug).
		WithVersion(cfg.Service.Version).
		WithDatabaseHealthCheck(dbComps.DB.Ping).
		WithRedisHealthCheck(func() error {
			return redisClient.Ping(context.Background()).Err()
		}).
		WithRoutes(func(router *gin.Engine) {
			router.GET("/metrics", gin.WrapH(tp.Handler()))
		}).
		Build()

	return &SyncComponents{
		DB:        dbComps.DB,
		Redis:     redisClient,
		Syncer:    syncer,
		Scheduler: scheduler,
		Monitor:   monitor,
	}, nil
}

// HTTPShutdownTimeout returns the timeout for HTTP server graceful shutdown.
func HTTPShutdownTimeout() time.Duration {
	return defaultHTTPTimeout
}

func newCatalogClient(cfg *config.Config, logger infralogger.Logger) *shopify.Client {
	return shopify.NewClient(shopify.Config{
		StoreDomain:       cfg.Shopify.StoreDomain,
		AccessToken:       cfg.Shopify.AccessToken,
		APIVersion:        cfg.Shopify.APIVersion,
		PageSize:          cfg.Shopify.PageSize,
		RequestsPerSecond: cfg.Shopify.RequestsPerSecond,
		Timeout:           cfg.Shopify.Timeout,
	}, logger)
}

func newSyncer(
	cfg *config.Config,
	classifier *layout.Classifier,
	catalog *shopify.Client,
	dbComps *DatabaseComponents,
	cache *statuscache.Cache,
	tp *telemetry.Provider,
	logger infralogger.Logger,
) *processor.Syncer {
	concurrency := cfg.Service.Concurrency
	if concurrency == 0 {
		concurrency = defaultConcurrency
	}
	batch := processor.NewBatchClassifier(classifier, concurrency, logger)
	return processor.NewSyncer(
		catalog,
		dbComps.Products,
		dbComps.Drafts,
		dbComps.Snapshots,
		cache,
		batch,
		tp,
		logger,
	)
}
