package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
)

// ErrProductNotFound indicates the requested product is not in the mirror.
var ErrProductNotFound = errors.New("product not found")

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 250
)

// ProductListFilter holds pagination, search, sort, and status filter params
// for List.
type ProductListFilter struct {
	Page      int
	PageSize  int
	SortBy    string // title, sku, vendor, product_type, status, synced_at, updated_at
	SortOrder string // asc, desc
	Search    string // ILIKE on title, sku, handle
	Status    domain.StatusFilter
}

// productColumns is the SELECT list every product query shares.
const productColumns = `p.id, p.title, p.handle, p.sku, p.vendor, p.product_type,
	       p.image_url, p.status, p.body_html, p.shopify_updated_at,
	       p.synced_at, p.created_at, p.updated_at`

// ProductRepository handles database operations for the product mirror.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Upsert inserts or refreshes one mirrored product.
func (r *ProductRepository) Upsert(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (
			id, title, handle, sku, vendor, product_type, image_url,
			status, body_html, shopify_updated_at, synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			handle = EXCLUDED.handle,
			sku = EXCLUDED.sku,
			vendor = EXCLUDED.vendor,
			product_type = EXCLUDED.product_type,
			image_url = EXCLUDED.image_url,
			status = EXCLUDED.status,
			body_html = EXCLUDED.body_html,
			shopify_updated_at = EXCLUDED.shopify_updated_at,
			synced_at = EXCLUDED.synced_at,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Title,
		product.Handle,
		product.SKU,
		product.Vendor,
		product.ProductType,
		product.ImageURL,
		product.Status,
		product.BodyHTML,
		product.ShopifyUpdatedAt,
		product.SyncedAt,
	).Scan(&product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", product.ID, err)
	}

	return nil
}

// UpsertBatch writes one synced page of products in a single transaction.
func (r *ProductRepository) UpsertBatch(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
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
		INSERT INTO products (
			id, title, handle, sku, vendor, product_type, image_url,
			status, body_html, shopify_updated_at, synced_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			handle = EXCLUDED.handle,
			sku = EXCLUDED.sku,
			vendor = EXCLUDED.vendor,
			product_type = EXCLUDED.product_type,
			image_url = EXCLUDED.image_url,
			status = EXCLUDED.status,
			body_html = EXCLUDED.body_html,
			shopify_updated_at = EXCLUDED.shopify_updated_at,
			synced_at = EXCLUDED.synced_at,
			updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i := range products {
		p := &products[i]
		_, err = stmt.ExecContext(ctx,
			p.ID,
			p.Title,
			p.Handle,
			p.SKU,
			p.Vendor,
			p.ProductType,
			p.ImageURL,
			p.Status,
			p.BodyHTML,
			p.ShopifyUpdatedAt,
			p.SyncedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByID retrieves one product from the mirror.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.id = $1
	`

	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return &product, nil
}

// GetByIDs retrieves the products that exist among the given ids. Missing
// ids are simply absent from the result; callers decide what absence means.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var products []*domain.Product
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.id = ANY($1)
	`

	err := r.db.SelectContext(ctx, &products, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get products by ids: %w", err)
	}

	return products, nil
}

// List retrieves products with pagination, search, sorting, and content
// status filtering. The status filter runs against the snapshot table via
// LEFT JOIN; products that were never classified have no snapshot row and
// match only the "none" filter.
func (r *ProductRepository) List(ctx context.Context, filter ProductListFilter) ([]*domain.Product, int, error) {
	if filter.Page < defaultPage {
		filter.Page = defaultPage
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	offset := (filter.Page - 1) * filter.PageSize

	const fromClause = `
		FROM products p
		LEFT JOIN status_snapshots s ON s.product_id = p.id`

	whereClause, countArgs := buildProductWhere(filter)

	countQuery := `SELECT COUNT(*)` + fromClause + ` WHERE 1=1` + whereClause
	var total int
	err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	orderClause := buildProductOrder(filter)
	limitPlaceholder := len(countArgs) + 1
	offsetPlaceholder := len(countArgs) + 2
	query := `
		SELECT ` + productColumns + fromClause + `
		WHERE 1=1` + whereClause + orderClause + fmt.Sprintf(`
		LIMIT $%d OFFSET $%d`, limitPlaceholder, offsetPlaceholder)

	args := append(append([]any{}, countArgs...), filter.PageSize, offset)
	var products []*domain.Product
	err = r.db.SelectContext(ctx, &products, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

// Count returns the number of mirrored products.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// ListIDs returns every product id in the mirror, ordered for stable
// batching during full status refreshes.
func (r *ProductRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT id FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list product ids: %w", err)
	}
	return ids, nil
}

// LastSyncedAt returns the most recent catalog sync time, nil when the
// mirror is empty. The sync worker and the HTTP API run as separate
// processes, so the mirror itself is the shared record of the last run.
func (r *ProductRepository) LastSyncedAt(ctx context.Context) (*time.Time, error) {
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT MAX(synced_at) FROM products`).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to read last sync time: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

func buildProductWhere(filter ProductListFilter) (whereClause string, args []any) {
	var clauses []string
	args = make([]any, 0)
	pos := 1

	if filter.Search != "" {
		clauses = append(clauses, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.sku ILIKE $%d OR p.handle ILIKE $%d)", pos, pos, pos))
		args = append(args, "%"+filter.Search+"%")
		pos++
	}

	switch filter.Status {
	case domain.FilterShopify:
		clauses = append(clauses, "s.has_shopify_content = TRUE")
	case domain.FilterNewLayout:
		clauses = append(clauses, "s.has_new_layout = TRUE")
	case domain.FilterDraftMode:
		clauses = append(clauses, "s.has_draft_content = TRUE")
	case domain.FilterNone:
		// Unclassified products have no snapshot row and land here too.
		clauses = append(clauses,
			"(s.product_id IS NULL OR (s.has_shopify_content = FALSE AND s.has_new_layout = FALSE))")
	}

	if len(clauses) == 0 {
		whereClause = ""
		return
	}
	whereClause = " AND " + strings.Join(clauses, " AND ")
	return
}

func buildProductOrder(filter ProductListFilter) string {
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "title"
	}
	columnMap := map[string]string{
		"title":        "p.title",
		"sku":          "p.sku",
		"handle":       "p.handle",
		"vendor":       "p.vendor",
		"product_type": "p.product_type",
		"status":       "p.status",
		"synced_at":    "p.synced_at",
		"created_at":   "p.created_at",
		"updated_at":   "p.updated_at",
	}
	column, ok := columnMap[sortBy]
	if !ok {
		column = "p.title"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, p.id ASC", column, order)
}
