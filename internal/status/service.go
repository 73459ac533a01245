// Package status resolves content statuses for the API surface. Lookups go
// cache first, persisted snapshots second, and recompute from the local
// mirror last, so an answer always comes back even when every layer above
// the mirror is cold or unavailable.
package status

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/layout"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/telemetry"
)

// ProductStore loads mirrored products for recomputation.
type ProductStore interface {
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
}

// DraftStore reports draft existence.
type DraftStore interface {
	ExistsForProducts(ctx context.Context, productIDs []string) (map[string]bool, error)
}

// SnapshotStore reads and writes persisted statuses.
type SnapshotStore interface {
	UpsertBatch(ctx context.Context, snapshots []domain.StatusSnapshot) error
	GetByProductIDs(ctx context.Context, productIDs []string) (map[string]*domain.StatusSnapshot, error)
	Overview(ctx context.Context) (*domain.StatusOverview, error)
}

// Cache is the Redis status cache. Read misses and write failures both
// degrade to the slower layers below, never to an error.
type Cache interface {
	GetBatch(ctx context.Context, productIDs []string) (map[string]domain.ContentStatus, []string)
	SetBatch(ctx context.Context, statuses []domain.ContentStatus) error
	Invalidate(ctx context.Context, productIDs ...string) error
}

// Service answers status lookups.
type Service struct {
	classifier *layout.Classifier
	products   ProductStore
	drafts     DraftStore
	snapshots  SnapshotStore
	cache      Cache
	telemetry  *telemetry.Provider
	logger     logger.Logger

	now func() time.Time
}

// NewService creates the status service. The telemetry provider may be nil.
func NewService(
	classifier *layout.Classifier,
	products ProductStore,
	drafts DraftStore,
	snapshots SnapshotStore,
	cache Cache,
	tp *telemetry.Provider,
	log logger.Logger,
) *Service {
	return &Service{
		classifier: classifier,
		products:   products,
		drafts:     drafts,
		snapshots:  snapshots,
		cache:      cache,
		telemetry:  tp,
		logger:     log,
		now:        time.Now,
	}
}

// GetBatch resolves a status for every requested id. The result always
// carries exactly the requested id set (duplicates collapse): ids with no
// product and no draft get the zero status, never an error or omission.
func (s *Service) GetBatch(ctx context.Context, productIDs []string) (map[string]domain.ContentStatus, error) {
	result := make(map[string]domain.ContentStatus, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	start := time.Now()
	unique := dedupe(productIDs)

	if s.telemetry != nil {
		var span trace.Span
		ctx, span = s.telemetry.StartSpan(ctx, "status.batch_lookup",
			attribute.Int("batch_size", len(unique)))
		defer span.End()
	}

	hits, misses := s.cache.GetBatch(ctx, unique)
	for id, status := range hits {
		result[id] = status
	}
	if s.telemetry != nil {
		s.telemetry.RecordCacheLookup(len(hits), len(misses))
	}

	if len(misses) > 0 {
		if err := s.resolveMisses(ctx, misses, result); err != nil {
			return nil, err
		}

		writeBack := make([]domain.ContentStatus, 0, len(misses))
		for _, id := range misses {
			writeBack = append(writeBack, result[id])
		}
		if err := s.cache.SetBatch(ctx, writeBack); err != nil {
			s.logger.Warn("failed to write statuses back to cache", logger.Error(err))
		}
	}

	if s.telemetry != nil {
		s.telemetry.RecordStatusBatch(len(unique), time.Since(start))
	}

	return result, nil
}

// resolveMisses fills result for ids the cache could not answer: persisted
// snapshots where current, fresh recomputation for the rest. Snapshots from
// an older vocabulary are recomputed rather than served, so a counted value
// never crosses vocabulary versions.
func (s *Service) resolveMisses(ctx context.Context, ids []string, result map[string]domain.ContentStatus) error {
	snapshots, err := s.snapshots.GetByProductIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load snapshots: %w", err)
	}

	var stale []string
	for _, id := range ids {
		snapshot, ok := snapshots[id]
		if !ok || snapshot.VocabularyVersion != layout.VocabularyVersion {
			stale = append(stale, id)
			continue
		}
		result[id] = snapshot.Status()
	}

	if len(stale) == 0 {
		return nil
	}

	computed, err := s.recompute(ctx, stale)
	if err != nil {
		return err
	}
	for id, status := range computed {
		result[id] = status
	}

	return nil
}

// recompute derives statuses for the given ids from the mirror and drafts,
// persisting snapshots for ids that have a product. Ids with no product and
// no draft resolve to the zero status and are not persisted.
func (s *Service) recompute(ctx context.Context, ids []string) (map[string]domain.ContentStatus, error) {
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	hasDraft, err := s.drafts.ExistsForProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("check drafts: %w", err)
	}

	now := s.now()
	statuses := make(map[string]domain.ContentStatus, len(ids))
	snapshots := make([]domain.StatusSnapshot, 0, len(products))

	for _, id := range ids {
		product, known := byID[id]
		if !known && !hasDraft[id] {
			statuses[id] = domain.ZeroStatus(id, now)
			continue
		}

		var classified layout.Result
		var hasContent bool
		if known {
			classified = s.classifier.Classify(product.BodyHTML)
			hasContent = product.HasContent()
		}

		status := domain.CombineStatus(id, classified.IsNewLayout, classified.ContentCount, hasContent, hasDraft[id], now)
		statuses[id] = status
		if s.telemetry != nil {
			s.telemetry.RecordStatusComputed(status.HasShopifyContent, status.HasNewLayout, status.HasDraftContent)
		}

		if known {
			snapshots = append(snapshots, domain.NewSnapshot(status, layout.VocabularyVersion))
		}
	}

	if len(snapshots) > 0 {
		if err := s.snapshots.UpsertBatch(ctx, snapshots); err != nil {
			return nil, fmt.Errorf("persist snapshots: %w", err)
		}
	}

	return statuses, nil
}

// Get resolves a single product's status.
func (s *Service) Get(ctx context.Context, productID string) (domain.ContentStatus, error) {
	statuses, err := s.GetBatch(ctx, []string{productID})
	if err != nil {
		return domain.ContentStatus{}, err
	}
	return statuses[productID], nil
}

// Recompute derives one product's status fresh, bypassing cache and
// snapshots. Called after a draft save or delete and after a publish. The
// cache entry is dropped before computing so readers never see the
// pre-change status, even if the refresh write below fails.
func (s *Service) Recompute(ctx context.Context, productID string) (domain.ContentStatus, error) {
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.Warn("failed to invalidate status cache",
			logger.String("product_id", productID), logger.Error(err))
	}

	statuses, err := s.recompute(ctx, []string{productID})
	if err != nil {
		return domain.ContentStatus{}, err
	}
	status := statuses[productID]

	if err := s.cache.SetBatch(ctx, []domain.ContentStatus{status}); err != nil {
		s.logger.Warn("failed to refresh status cache",
			logger.String("product_id", productID), logger.Error(err))
	}

	return status, nil
}

// Overview returns the aggregate bucket counts for the stats endpoint.
func (s *Service) Overview(ctx context.Context) (*domain.StatusOverview, error) {
	overview, err := s.snapshots.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("load status overview: %w", err)
	}
	return overview, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
