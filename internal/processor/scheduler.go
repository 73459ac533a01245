package processor

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
)

const defaultSyncSchedule = "@every 15m"

// Scheduler triggers catalog syncs on a cron schedule. A trigger that
// lands while the previous run is still active is skipped, not queued.
type Scheduler struct {
	syncer   *Syncer
	cron     *cron.Cron
	schedule string
	logger   logger.Logger
}

// NewScheduler creates a scheduler for the syncer. An empty schedule
// falls back to every 15 minutes.
func NewScheduler(syncer *Syncer, schedule string, log logger.Logger) *Scheduler {
	if schedule == "" {
		schedule = defaultSyncSchedule
	}
	// Standard 5-field format plus @every/@hourly style descriptors.
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return &Scheduler{
		syncer:   syncer,
		cron:     c,
		schedule: schedule,
		logger:   log,
	}
}

// Start registers the sync job and begins the schedule. The given context
// bounds every triggered run, so canceling it aborts in-flight syncs.
func (s *Scheduler) Start(ctx context.Context) error {
	entryID, err := s.cron.AddFunc(s.schedule, func() {
		_, err := s.syncer.SyncOnce(ctx)
		if errors.Is(err, ErrSyncInProgress) {
			s.logger.Warn("skipping scheduled sync, previous run still active")
			return
		}
		if err != nil {
			s.logger.Error("scheduled sync failed", logger.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sync: %w", err)
	}

	s.cron.Start()

	s.logger.Info("sync scheduler started",
		logger.String("schedule", s.schedule),
		logger.Time("next_run", s.cron.Entry(entryID).Next),
	)

	return nil
}

// Stop halts the schedule. The returned context is done once any run the
// scheduler triggered has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("sync scheduler stopping")
	return s.cron.Stop()
}
