package processor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/telemetry"
)

// ErrSyncInProgress indicates a sync or refresh is already running. The API
// surfaces this as a conflict rather than queueing a second run.
var ErrSyncInProgress = errors.New("sync already in progress")

const refreshBatchSize = 500

// CatalogClient pulls product pages from the live store.
type CatalogClient interface {
	ListProducts(ctx context.Context, cursor string) (products []domain.Product, nextCursor string, err error)
}

// ProductStore is the slice of the product repository the syncer needs.
type ProductStore interface {
	UpsertBatch(ctx context.Context, products []domain.Product) error
	ListIDs(ctx context.Context) ([]string, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
}

// DraftStore reports draft existence for status combination.
type DraftStore interface {
	ExistsForProducts(ctx context.Context, productIDs []string) (map[string]bool, error)
}

// SnapshotStore persists derived statuses.
type SnapshotStore interface {
	UpsertBatch(ctx context.Context, snapshots []domain.StatusSnapshot) error
	PruneOrphans(ctx context.Context) (int64, error)
}

// StatusCache is warmed with fresh statuses as they are computed.
type StatusCache interface {
	SetBatch(ctx context.Context, statuses []domain.ContentStatus) error
	Flush(ctx context.Context) error
}

// SyncStats summarizes one catalog sync run.
type SyncStats struct {
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Pages      int       `json:"pages"`
	Products   int       `json:"products"`
	Snapshots  int       `json:"snapshots"`
	Pruned     int64     `json:"pruned"`
}

// RefreshStats summarizes one full status recomputation.
type RefreshStats struct {
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Batches    int       `json:"batches"`
	Products   int       `json:"products"`
	Pruned     int64     `json:"pruned"`
}

// Syncer mirrors the catalog into Postgres and keeps status snapshots in
// step with what was mirrored. One run at a time; concurrent calls get
// ErrSyncInProgress.
type Syncer struct {
	catalog   CatalogClient
	products  ProductStore
	drafts    DraftStore
	snapshots SnapshotStore
	cache     StatusCache
	batch     *BatchClassifier
	telemetry *telemetry.Provider
	logger    logger.Logger

	running atomic.Bool
	now     func() time.Time
}

// NewSyncer creates a syncer over the given stores. The telemetry provider
// may be nil.
func NewSyncer(
	catalog CatalogClient,
	products ProductStore,
	drafts DraftStore,
	snapshots SnapshotStore,
	cache StatusCache,
	batch *BatchClassifier,
	tp *telemetry.Provider,
	log logger.Logger,
) *Syncer {
	return &Syncer{
		catalog:   catalog,
		products:  products,
		drafts:    drafts,
		snapshots: snapshots,
		cache:     cache,
		batch:     batch,
		telemetry: tp,
		logger:    log,
		now:       time.Now,
	}
}

// Running reports whether a sync or refresh is currently active.
func (s *Syncer) Running() bool {
	return s.running.Load()
}

// SyncOnce walks the whole catalog page by page: mirrors each page,
// classifies it, and persists the resulting snapshots. Rate-limit errors
// from the catalog abort the run with partial progress kept; the next
// scheduled run picks up from a fresh listing.
func (s *Syncer) SyncOnce(ctx context.Context) (*SyncStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	stats, err := s.syncOnce(ctx)
	if s.telemetry != nil {
		s.telemetry.RecordSyncRun(err == nil, time.Duration(stats.DurationMs)*time.Millisecond)
		s.telemetry.RecordProductsSynced(stats.Products)
		s.telemetry.RecordSnapshotsWritten(stats.Snapshots)
	}
	return stats, err
}

func (s *Syncer) syncOnce(ctx context.Context) (*SyncStats, error) {
	start := time.Now()
	stats := &SyncStats{StartedAt: s.now()}

	s.logger.Info("catalog sync starting")

	cursor := ""
	for {
		products, next, err := s.catalog.ListProducts(ctx, cursor)
		if err != nil {
			stats.DurationMs = time.Since(start).Milliseconds()
			return stats, fmt.Errorf("list products page %d: %w", stats.Pages+1, err)
		}
		stats.Pages++

		if len(products) > 0 {
			if err := s.processPage(ctx, products, stats); err != nil {
				stats.DurationMs = time.Since(start).Milliseconds()
				return stats, err
			}
		}

		if next == "" {
			break
		}
		cursor = next
	}

	pruned, err := s.snapshots.PruneOrphans(ctx)
	if err != nil {
		s.logger.Warn("failed to prune orphan snapshots", logger.Error(err))
	}
	stats.Pruned = pruned
	stats.DurationMs = time.Since(start).Milliseconds()

	s.logger.Info("catalog sync complete",
		logger.Int("pages", stats.Pages),
		logger.Int("products", stats.Products),
		logger.Int("snapshots", stats.Snapshots),
		logger.Int64("pruned", stats.Pruned),
		logger.Int64("duration_ms", stats.DurationMs),
	)

	return stats, nil
}

// processPage mirrors one page and derives its statuses.
func (s *Syncer) processPage(ctx context.Context, products []domain.Product, stats *SyncStats) error {
	if err := s.products.UpsertBatch(ctx, products); err != nil {
		return fmt.Errorf("mirror products: %w", err)
	}
	stats.Products += len(products)

	ids := make([]string, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}

	hasDraft, err := s.drafts.ExistsForProducts(ctx, ids)
	if err != nil {
		return fmt.Errorf("check drafts: %w", err)
	}

	snapshots := s.batch.Classify(ctx, products, hasDraft, s.now())
	if err := s.snapshots.UpsertBatch(ctx, snapshots); err != nil {
		return fmt.Errorf("persist snapshots: %w", err)
	}
	stats.Snapshots += len(snapshots)

	s.warmCache(ctx, snapshots)

	return nil
}

// RefreshAll recomputes every product's status from the mirror without
// touching the live store. Used after vocabulary changes; the cache is
// flushed up front so no stale-vocabulary entries survive.
func (s *Syncer) RefreshAll(ctx context.Context) (*RefreshStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	start := time.Now()
	stats := &RefreshStats{StartedAt: s.now()}

	s.logger.Info("full status refresh starting")

	if err := s.cache.Flush(ctx); err != nil {
		s.logger.Warn("failed to flush status cache before refresh", logger.Error(err))
	}

	ids, err := s.products.ListIDs(ctx)
	if err != nil {
		stats.DurationMs = time.Since(start).Milliseconds()
		return stats, fmt.Errorf("list product ids: %w", err)
	}

	for offset := 0; offset < len(ids); offset += refreshBatchSize {
		end := offset + refreshBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[offset:end]

		if err := s.refreshChunk(ctx, chunk); err != nil {
			stats.DurationMs = time.Since(start).Milliseconds()
			return stats, err
		}
		stats.Batches++
		stats.Products += len(chunk)
	}

	pruned, err := s.snapshots.PruneOrphans(ctx)
	if err != nil {
		s.logger.Warn("failed to prune orphan snapshots", logger.Error(err))
	}
	stats.Pruned = pruned
	stats.DurationMs = time.Since(start).Milliseconds()

	s.logger.Info("full status refresh complete",
		logger.Int("batches", stats.Batches),
		logger.Int("products", stats.Products),
		logger.Int64("pruned", stats.Pruned),
		logger.Int64("duration_ms", stats.DurationMs),
	)

	return stats, nil
}

func (s *Syncer) refreshChunk(ctx context.Context, ids []string) error {
	productPtrs, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	products := make([]domain.Product, len(productPtrs))
	for i, p := range productPtrs {
		products[i] = *p
	}

	hasDraft, err := s.drafts.ExistsForProducts(ctx, ids)
	if err != nil {
		return fmt.Errorf("check drafts: %w", err)
	}

	snapshots := s.batch.Classify(ctx, products, hasDraft, s.now())
	if err := s.snapshots.UpsertBatch(ctx, snapshots); err != nil {
		return fmt.Errorf("persist snapshots: %w", err)
	}

	s.warmCache(ctx, snapshots)

	return nil
}

// warmCache pushes fresh statuses into the cache. Best effort: a cache
// write failure never fails the run.
func (s *Syncer) warmCache(ctx context.Context, snapshots []domain.StatusSnapshot) {
	statuses := make([]domain.ContentStatus, len(snapshots))
	for i := range snapshots {
		statuses[i] = snapshots[i].Status()
	}
	if err := s.cache.SetBatch(ctx, statuses); err != nil {
		s.logger.Warn("failed to warm status cache", logger.Error(err))
	}
}
