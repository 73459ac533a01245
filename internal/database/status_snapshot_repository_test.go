package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/database"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
)

var snapshotColumns = []string{
	"product_id", "has_shopify_content", "has_new_layout", "has_draft_content",
	"content_count", "vocabulary_version", "computed_at",
}

func newSnapshotRepo(t *testing.T) (*database.StatusSnapshotRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	db := sqlx.NewDb(mockDB, "postgres")
	repo := database.NewStatusSnapshotRepository(db)

	return repo, mock, func() { mockDB.Close() }
}

func TestStatusSnapshotRepository_UpsertBatch(t *testing.T) {
	repo, mock, cleanup := newSnapshotRepo(t)
	defer cleanup()

	now := time.Now()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO status_snapshots")
	prep.ExpectExec().
		WithArgs("1", true, true, false, 4, 1, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("2", false, false, false, 0, 1, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	snapshots := []domain.StatusSnapshot{
		{ProductID: "1", HasShopifyContent: true, HasNewLayout: true, ContentCount: 4, VocabularyVersion: 1, ComputedAt: now},
		{ProductID: "2", VocabularyVersion: 1, ComputedAt: now},
	}
	if err := repo.UpsertBatch(context.Background(), snapshots); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestStatusSnapshotRepository_UpsertBatch_Empty(t *testing.T) {
	repo, mock, cleanup := newSnapshotRepo(t)
	defer cleanup()

	if err := repo.UpsertBatch(context.Background(), nil); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestStatusSnapshotRepository_GetByProductIDs(t *testing.T) {
	repo, mock, cleanup := newSnapshotRepo(t)
	defer cleanup()

	now := time.Now()
	ids := []string{"1", "2"}

	mock.ExpectQuery("SELECT .+ FROM status_snapshots").
		WithArgs(pq.Array(ids)).
		WillReturnRows(sqlmock.NewRows(snapshotColumns).
			AddRow("1", true, true, false, 3, 1, now))

	snapshots, err := repo.GetByProductIDs(context.Background(), ids)
	if err != nil {
		t.Fatalf("GetByProductIDs() error = %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if snapshots["1"] == nil || snapshots["1"].ContentCount != 3 {
		t.Errorf("unexpected snapshot %+v", snapshots["1"])
	}
	if _, ok := snapshots["2"]; ok {
		t.Error("product without a snapshot should be absent from the map")
	}

	expectationsMet(t, mock)
}

func TestStatusSnapshotRepository_Overview(t *testing.T) {
	repo, mock, cleanup := newSnapshotRepo(t)
	defer cleanup()

	now := time.Now()

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{
			"total", "shopify_content", "new_layout", "draft_mode", "none", "last_computed_at",
		}).AddRow(100, 60, 45, 12, 40, now))

	overview, err := repo.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if overview.Total != 100 || overview.ShopifyContent != 60 || overview.NewLayout != 45 {
		t.Errorf("unexpected overview %+v", overview)
	}
	if overview.LastComputedAt == nil {
		t.Error("expected last_computed_at to be set")
	}

	expectationsMet(t, mock)
}

func TestStatusSnapshotRepository_Overview_EmptyMirror(t *testing.T) {
	repo, mock, cleanup := newSnapshotRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{
			"total", "shopify_content", "new_layout", "draft_mode", "none", "last_computed_at",
		}).AddRow(0, 0, 0, 0, 0, nil))

	overview, err := repo.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if overview.Total != 0 {
		t.Errorf("expected empty overview, got %+v", overview)
	}
	if overview.LastComputedAt != nil {
		t.Error("expected nil last_computed_at for empty mirror")
	}

	expectationsMet(t, mock)
}

func TestStatusSnapshotRepository_PruneOrphans(t *testing.T) {
	repo, mock, cleanup := newSnapshotRepo(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM status_snapshots").
		WillReturnResult(sqlmock.NewResult(0, 3))

	pruned, err := repo.PruneOrphans(context.Background())
	if err != nil {
		t.Fatalf("PruneOrphans() error = %v", err)
	}
	if pruned != 3 {
		t.Errorf("expected 3 pruned rows, got %d", pruned)
	}

	expectationsMet(t, mock)
}
