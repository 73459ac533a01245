// Command syncd runs the catalog sync worker. It mirrors the Shopify
// catalog into Postgres on a cron schedule, recomputes content statuses,
// and serves health and metrics endpoints for monitoring.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/bootstrap"
	infralogger "github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/processor"
)

const monitorShutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "producthub-sync: %v\n", err)
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

	comps, err := bootstrap.NewSyncComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = comps.DB.Close() }()
	defer func() { _ = comps.Redis.Close() }()

	logger.Info("Starting catalog sync worker",
		infralogger.String("schedule", cfg.Sync.Schedule),
		infralogger.Int("monitor_port", cfg.Sync.MonitorPort),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A full refresh reclassifies every mirrored product. Run it before
	// the schedule starts so the two can't contend for the run slot.
	if cfg.Sync.RefreshOnStart {
		logger.Info("Recomputing statuses for the full mirror")
		stats, refreshErr := comps.Syncer.RefreshAll(ctx)
		if refreshErr != nil {
			logger.Error("Full status refresh failed", infralogger.Error(refreshErr))
		} else {
			logger.Info("Full status refresh complete",
				infralogger.Int("products", stats.Products),
				infralogger.Int64("duration_ms", stats.DurationMs),
			)
		}
	}

	monitorErrors := comps.Monitor.StartAsync()

	if err := comps.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	// The first scheduled tick may be a long way off; sync now so a fresh
	// worker has a mirror to serve.
	go func() {
		if _, syncErr := comps.Syncer.SyncOnce(ctx); syncErr != nil &&
			!errors.Is(syncErr, processor.ErrSyncInProgress) {
			logger.Error("Initial catalog sync failed", infralogger.Error(syncErr))
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-monitorErrors:
		if err != nil {
			return fmt.Errorf("monitor server: %w", err)
		}
		return errors.New("monitor server stopped unexpectedly")
	case sig := <-shutdown:
		logger.Info("Shutdown signal received", infralogger.String("signal", sig.String()))
	}

	cancel()
	<-comps.Scheduler.Stop().Done()

	if err := comps.Monitor.ShutdownWithTimeout(monitorShutdownTimeout); err != nil {
		logger.Error("Monitor server shutdown failed", infralogger.Error(err))
	}

	logger.Info("Sync worker stopped")
	return nil
}
