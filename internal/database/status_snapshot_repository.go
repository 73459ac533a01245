package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
)

// StatusSnapshotRepository persists derived content statuses so list
// filtering and overview counts run in SQL. Rows here are always
// recomputable from products and drafts.
type StatusSnapshotRepository struct {
	db *sqlx.DB
}

// NewStatusSnapshotRepository creates a new status snapshot repository.
func NewStatusSnapshotRepository(db *sqlx.DB) *StatusSnapshotRepository {
	return &StatusSnapshotRepository{db: db}
}

// UpsertBatch writes a batch of snapshots in one transaction.
func (r *StatusSnapshotRepository) UpsertBatch(ctx context.Context, snapshots []domain.StatusSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO status_snapshots (
			product_id, has_shopify_content, has_new_layout, has_draft_content,
			content_count, vocabulary_version, computed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_id) DO UPDATE SET
			has_shopify_content = EXCLUDED.has_shopify_content,
			has_new_layout = EXCLUDED.has_new_layout,
			has_draft_content = EXCLUDED.has_draft_content,
			content_count = EXCLUDED.content_count,
			vocabulary_version = EXCLUDED.vocabulary_version,
			computed_at = EXCLUDED.computed_at`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i := range snapshots {
		s := &snapshots[i]
		_, err = stmt.ExecContext(ctx,
			s.ProductID,
			s.HasShopifyContent,
			s.HasNewLayout,
			s.HasDraftContent,
			s.ContentCount,
			s.VocabularyVersion,
			s.ComputedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert snapshot for product %s: %w", s.ProductID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByProductIDs retrieves snapshots keyed by product id. Products without
// a snapshot are simply absent from the map.
func (r *StatusSnapshotRepository) GetByProductIDs(ctx context.Context, productIDs []string) (map[string]*domain.StatusSnapshot, error) {
	result := make(map[string]*domain.StatusSnapshot, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	var snapshots []*domain.StatusSnapshot
	query := `
		SELECT product_id, has_shopify_content, has_new_layout, has_draft_content,
		       content_count, vocabulary_version, computed_at
		FROM status_snapshots
		WHERE product_id = ANY($1)
	`

	if err := r.db.SelectContext(ctx, &snapshots, query, pq.Array(productIDs)); err != nil {
		return nil, fmt.Errorf("failed to get snapshots: %w", err)
	}

	for _, s := range snapshots {
		result[s.ProductID] = s
	}

	return result, nil
}

// Overview aggregates bucket counts across the whole mirror in one query.
// The buckets use the same predicates as the product list filters, so each
// count equals what the corresponding filtered list would return. Products
// never classified have no snapshot row and count toward "none" only.
func (r *StatusSnapshotRepository) Overview(ctx context.Context) (*domain.StatusOverview, error) {
	var overview domain.StatusOverview
	query := `
		SELECT
			COUNT(p.id) AS total,
			COALESCE(SUM(CASE WHEN s.has_shopify_content THEN 1 ELSE 0 END), 0) AS shopify_content,
			COALESCE(SUM(CASE WHEN s.has_new_layout THEN 1 ELSE 0 END), 0) AS new_layout,
			COALESCE(SUM(CASE WHEN s.has_draft_content THEN 1 ELSE 0 END), 0) AS draft_mode,
			COALESCE(SUM(CASE WHEN s.product_id IS NULL
				OR (s.has_shopify_content = FALSE AND s.has_new_layout = FALSE)
				THEN 1 ELSE 0 END), 0) AS none,
			MAX(s.computed_at) AS last_computed_at
		FROM products p
		LEFT JOIN status_snapshots s ON s.product_id = p.id
	`

	if err := r.db.GetContext(ctx, &overview, query); err != nil {
		return nil, fmt.Errorf("failed to get status overview: %w", err)
	}

	return &overview, nil
}

// PruneOrphans removes snapshots whose product left the mirror. Run after
// full refreshes so deleted products stop counting.
func (r *StatusSnapshotRepository) PruneOrphans(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM status_snapshots
		WHERE product_id NOT IN (SELECT id FROM products)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prune orphan snapshots: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected, nil
}
