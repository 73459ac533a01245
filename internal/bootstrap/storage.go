package bootstrap

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/config"
	infralogger "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
	infraredis "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/redis"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/statuscache"
)

// SetupStatusCache connects to Redis and wraps it in the status cache.
// The cache fronts every status lookup, so an unreachable Redis fails
// startup instead of degrading silently.
func SetupStatusCache(cfg *config.Config, logger infralogger.Logger) (*statuscache.Cache, *redis.Client, error) {
	address := cfg.Redis.Address
	if address == "" {
		address = "localhost:6379"
	}

	client, err := infraredis.NewClient(infraredis.Config{
		Address:  address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.Info("Redis connected successfully",
		infralogger.String("address", address),
	)

	cache := statuscache.New(client, cfg.Redis.StatusCacheTTL, logger)
	return cache, client, nil
}
