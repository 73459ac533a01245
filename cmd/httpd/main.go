// Command httpd runs the product hub HTTP API: product listings, drafts,
// previews, publishes, and status lookups.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/bootstrap"
	infralogger "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "producthub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	comps, err := bootstrap.NewHTTPComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = comps.DB.Close() }()
	defer func() { _ = comps.Redis.Close() }()

	logger.Info("Starting product hub API",
		infralogger.Int("port", cfg.Service.Port),
		infralogger.String("version", cfg.Service.Version),
		infralogger.Bool("debug", cfg.Service.Debug),
	)

	return comps.Server.RunWithGracefulShutdown(context.Background())
}
