package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
)

// ErrDraftNotFound indicates no draft exists for the requested product.
var ErrDraftNotFound = errors.New("draft not found")

// DraftRepository handles database operations for section drafts. At most
// one draft exists per product.
type DraftRepository struct {
	db *sqlx.DB
}

// NewDraftRepository creates a new draft repository.
func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Upsert inserts or replaces the draft for draft.ProductID. The stored
// row's id and timestamps are written back into the struct.
func (r *DraftRepository) Upsert(ctx context.Context, draft *domain.Draft) error {
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}

	query := `
		INSERT INTO drafts (id, product_id, sections)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id) DO UPDATE SET
			sections = EXCLUDED.sections,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		draft.ID,
		draft.ProductID,
		draft.Sections,
	).Scan(&draft.ID, &draft.CreatedAt, &draft.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert draft for product %s: %w", draft.ProductID, err)
	}

	return nil
}

// GetByProductID retrieves the draft for one product.
func (r *DraftRepository) GetByProductID(ctx context.Context, productID string) (*domain.Draft, error) {
	var draft domain.Draft
	query := `
		SELECT id, product_id, sections, created_at, updated_at
		FROM drafts
		WHERE product_id = $1
	`

	err := r.db.GetContext(ctx, &draft, query, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", ErrDraftNotFound, productID)
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	return &draft, nil
}

// Delete removes the draft for one product.
func (r *DraftRepository) Delete(ctx context.Context, productID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM drafts WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: product %s", ErrDraftNotFound, productID)
	}

	return nil
}

// ExistsForProducts reports draft existence for every requested product id.
// The result has an entry for each input id, false when no draft exists.
func (r *DraftRepository) ExistsForProducts(ctx context.Context, productIDs []string) (map[string]bool, error) {
	exists := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		exists[id] = false
	}
	if len(productIDs) == 0 {
		return exists, nil
	}

	var found []string
	query := `SELECT product_id FROM drafts WHERE product_id = ANY($1)`
	if err := r.db.SelectContext(ctx, &found, query, pq.Array(productIDs)); err != nil {
		return nil, fmt.Errorf("failed to check drafts: %w", err)
	}

	for _, id := range found {
		exists[id] = true
	}

	return exists, nil
}

// List retrieves drafts page by page, newest first.
func (r *DraftRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Draft, int, error) {
	if page < defaultPage {
		page = defaultPage
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	offset := (page - 1) * pageSize

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM drafts`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count drafts: %w", err)
	}

	var drafts []*domain.Draft
	query := `
		SELECT id, product_id, sections, created_at, updated_at
		FROM drafts
		ORDER BY updated_at DESC, id ASC
		LIMIT $1 OFFSET $2
	`
	if err := r.db.SelectContext(ctx, &drafts, query, pageSize, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list drafts: %w", err)
	}

	return drafts, total, nil
}
