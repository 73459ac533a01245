package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/config"
	infraconfig "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/config"
	infralogger "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
)

// LoadConfig loads the config file named by CONFIG_PATH (default config.yml).
// Running without a file is supported (defaults plus environment overrides,
// which is how the containers deploy); a file that exists but fails to parse
// or validate is fatal rather than silently degraded.
func LoadConfig() (*config.Config, error) {
	configPath := infraconfig.GetConfigPath("config.yml")

	cfg, err := config.Load(configPath)
	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, os.ErrNotExist):
		log.Printf("Warning: Failed to load config file (%s), using defaults: %v", configPath, err)
		return config.FromEnv()
	default:
		return nil, err
	}
}

// CreateLogger builds the process logger from the logging section and tags
// every entry with the service name.
func CreateLogger(cfg *config.Config) (infralogger.Logger, error) {
	l, err := infralogger.New(infralogger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return l.With(infralogger.String("service", cfg.Service.Name)), nil
}
