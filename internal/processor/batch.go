// Package processor drives catalog synchronization and bulk status
// recomputation. The classifier itself is pure; this package feeds it
// products in parallel and persists what comes out.
package processor

import (
	"context"
	"sync"
	"time"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/layout"
)

const defaultConcurrency = 10

// BatchClassifier classifies product HTML in parallel using a worker pool.
type BatchClassifier struct {
	classifier  *layout.Classifier
	concurrency int
	logger      logger.Logger
}

// NewBatchClassifier creates a new batch classifier.
func NewBatchClassifier(classifier *layout.Classifier, concurrency int, log logger.Logger) *BatchClassifier {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &BatchClassifier{
		classifier:  classifier,
		concurrency: concurrency,
		logger:      log,
	}
}

// Classify runs the layout classifier over every product and combines the
// result with the draft flag into a status snapshot. The whole batch is
// stamped with the same timestamp and vocabulary version. Order of the
// returned snapshots is not defined.
func (b *BatchClassifier) Classify(ctx context.Context, products []domain.Product, hasDraft map[string]bool, now time.Time) []domain.StatusSnapshot {
	if len(products) == 0 {
		return nil
	}

	start := time.Now()

	jobs := make(chan *domain.Product, len(products))
	results := make(chan domain.StatusSnapshot, len(products))

	var wg sync.WaitGroup
	for i := 0; i < b.concurrency; i++ {
		wg.Add(1)
		go b.worker(ctx, jobs, results, hasDraft, now, &wg)
	}

	for i := range products {
		jobs <- &products[i]
	}
	close(jobs)

	wg.Wait()
	close(results)

	snapshots := make([]domain.StatusSnapshot, 0, len(products))
	newLayout := 0
	for snapshot := range results {
		if snapshot.HasNewLayout {
			newLayout++
		}
		snapshots = append(snapshots, snapshot)
	}

	b.logger.Debug("classified product batch",
		logger.Int("batch_size", len(products)),
		logger.Int("new_layout", newLayout),
		logger.Int("concurrency", b.concurrency),
		logger.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	return snapshots
}

func (b *BatchClassifier) worker(
	ctx context.Context,
	jobs <-chan *domain.Product,
	results chan<- domain.StatusSnapshot,
	hasDraft map[string]bool,
	now time.Time,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for product := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := b.classifier.Classify(product.BodyHTML)
		status := domain.CombineStatus(
			product.ID,
			result.IsNewLayout,
			result.ContentCount,
			product.HasContent(),
			hasDraft[product.ID],
			now,
		)
		results <- domain.NewSnapshot(status, layout.VocabularyVersion)
	}
}
