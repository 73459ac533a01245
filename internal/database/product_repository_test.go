package database_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/database"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
)

// productColumns lists the columns returned by product SELECT queries.
var productColumns = []string{
	"id", "title", "handle", "sku", "vendor", "product_type", "image_url",
	"status", "body_html", "shopify_updated_at", "synced_at", "created_at",
	"updated_at",
}

func newProductRepo(t *testing.T) (*database.ProductRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	db := sqlx.NewDb(mockDB, "postgres")
	repo := database.NewProductRepository(db)

	return repo, mock, func() { mockDB.Close() }
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func productRow(id, title string) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, title, "handle-" + id, "SKU-" + id, "Foxx Life Sciences", "Bottles",
		"", "active", "<p>body</p>", nil, now, now, now,
	}
}

func TestProductRepository_Upsert(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery("INSERT INTO products").
		WithArgs(
			"7421", "EZBio Bottle", "ezbio-bottle", "EZB-500", "Foxx Life Sciences",
			"Bottles", "", "active", "<p>body</p>", nil, sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	product := &domain.Product{
		ID:          "7421",
		Title:       "EZBio Bottle",
		Handle:      "ezbio-bottle",
		SKU:         "EZB-500",
		Vendor:      "Foxx Life Sciences",
		ProductType: "Bottles",
		Status:      "active",
		BodyHTML:    "<p>body</p>",
		SyncedAt:    now,
	}
	if err := repo.Upsert(ctx, product); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if product.CreatedAt.IsZero() || product.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be written back")
	}

	expectationsMet(t, mock)
}

func TestProductRepository_UpsertBatch(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO products")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	products := []domain.Product{
		{ID: "1", Title: "A", Handle: "a"},
		{ID: "2", Title: "B", Handle: "b"},
	}
	if err := repo.UpsertBatch(ctx, products); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestProductRepository_UpsertBatch_Empty(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	if err := repo.UpsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestProductRepository_UpsertBatch_RollsBackOnError(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO products")
	prep.ExpectExec().WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.UpsertBatch(context.Background(), []domain.Product{{ID: "1"}})
	if err == nil {
		t.Fatal("expected error from failing insert")
	}

	expectationsMet(t, mock)
}

func TestProductRepository_GetByID(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs("7421").
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(productRow("7421", "EZBio Bottle")...))

	product, err := repo.GetByID(ctx, "7421")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if product.ID != "7421" {
		t.Errorf("expected id 7421, got %s", product.ID)
	}
	if product.Title != "EZBio Bottle" {
		t.Errorf("expected title, got %s", product.Title)
	}

	expectationsMet(t, mock)
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, database.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestProductRepository_GetByIDs(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	ids := []string{"1", "2", "3"}

	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs(pq.Array(ids)).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(productRow("1", "A")...).
			AddRow(productRow("3", "C")...))

	products, err := repo.GetByIDs(context.Background(), ids)
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	expectationsMet(t, mock)
}

func TestProductRepository_GetByIDs_Empty(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	products, err := repo.GetByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetByIDs() error = %v", err)
	}
	if products != nil {
		t.Errorf("expected nil result for empty input, got %v", products)
	}

	expectationsMet(t, mock)
}

func TestProductRepository_List(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT .+ FROM products p").
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow(productRow("1", "A")...).
			AddRow(productRow("2", "B")...))

	products, total, err := repo.List(context.Background(), database.ProductListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 12 {
		t.Errorf("expected total 12, got %d", total)
	}
	if len(products) != 2 {
		t.Errorf("expected 2 products on page, got %d", len(products))
	}

	expectationsMet(t, mock)
}

func TestProductRepository_List_SearchArgs(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	mock.ExpectQuery("ILIKE").
		WithArgs("%bottle%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("ILIKE").
		WithArgs("%bottle%", 25, 25).
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(productRow("1", "Bottle")...))

	_, _, err := repo.List(context.Background(), database.ProductListFilter{
		Page:     2,
		PageSize: 25,
		Search:   "bottle",
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestProductRepository_List_StatusFilterPredicates(t *testing.T) {
	tests := []struct {
		name         string
		status       domain.StatusFilter
		wantFragment string
	}{
		{"shopify", domain.FilterShopify, "has_shopify_content = TRUE"},
		{"new layout", domain.FilterNewLayout, "has_new_layout = TRUE"},
		{"draft mode", domain.FilterDraftMode, "has_draft_content = TRUE"},
		{"none includes unclassified", domain.FilterNone, `s\.product_id IS NULL`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newProductRepo(t)
			defer cleanup()

			mock.ExpectQuery(tt.wantFragment).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
			mock.ExpectQuery(tt.wantFragment).
				WithArgs(50, 0).
				WillReturnRows(sqlmock.NewRows(productColumns))

			_, _, err := repo.List(context.Background(), database.ProductListFilter{Status: tt.status})
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}

			expectationsMet(t, mock)
		})
	}
}

func TestProductRepository_ListIDs(t *testing.T) {
	repo, mock, cleanup := newProductRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("1").AddRow("2"))

	ids, err := repo.ListIDs(context.Background())
	if err != nil {
		t.Fatalf("ListIDs() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Errorf("unexpected ids %v", ids)
	}

	expectationsMet(t, mock)
}
