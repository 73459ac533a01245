//nolint:testpackage // Testing internal syncer plumbing requires same package access
package processor

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/layout"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// opRecorder captures the order of store and cache operations across fakes.
// The syncer drives everything sequentially, so no locking is needed.
type opRecorder struct {
	ops []string
}

func (r *opRecorder) record(op string) {
	r.ops = append(r.ops, op)
}

func (r *opRecorder) indexOf(op string) int {
	for i, o := range r.ops {
		if o == op {
			return i
		}
	}
	return -1
}

type catalogPage struct {
	products []domain.Product
	next     string
}

type fakeCatalog struct {
	pages   []catalogPage
	cursors []string
	err     error
}

func (f *fakeCatalog) ListProducts(_ context.Context, cursor string) ([]domain.Product, string, error) {
	f.cursors = append(f.cursors, cursor)
	if f.err != nil {
		return nil, "", f.err
	}
	page := f.pages[len(f.cursors)-1]
	return page.products, page.next, nil
}

type fakeProductStore struct {
	rec       *opRecorder
	upserted  [][]domain.Product
	ids       []string
	byID      map[string]*domain.Product
	getCalls  [][]string
	upsertErr error
	listErr   error
}

func (f *fakeProductStore) UpsertBatch(_ context.Context, products []domain.Product) error {
	f.rec.record("products.upsert")
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, products)
	return nil
}

func (f *fakeProductStore) ListIDs(_ context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ids, nil
}

func (f *fakeProductStore) GetByIDs(_ context.Context, ids []string) ([]*domain.Product, error) {
	f.getCalls = append(f.getCalls, ids)
	out := make([]*domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, &domain.Product{ID: id})
	}
	return out, nil
}

type fakeDraftStore struct {
	drafts  map[string]bool
	queried [][]string
	err     error
}

func (f *fakeDraftStore) ExistsForProducts(_ context.Context, ids []string) (map[string]bool, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.queried = append(f.queried, ids)
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = f.drafts[id]
	}
	return out, nil
}

type fakeSnapshotStore struct {
	rec       *opRecorder
	upserted  [][]domain.StatusSnapshot
	pruned    int64
	upsertErr error
	pruneErr  error
}

func (f *fakeSnapshotStore) UpsertBatch(_ context.Context, snapshots []domain.StatusSnapshot) error {
	f.rec.record("snapshots.upsert")
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, snapshots)
	return nil
}

func (f *fakeSnapshotStore) PruneOrphans(_ context.Context) (int64, error) {
	f.rec.record("snapshots.prune")
	if f.pruneErr != nil {
		return 0, f.pruneErr
	}
	return f.pruned, nil
}

type fakeStatusCache struct {
	rec        *opRecorder
	setBatches [][]domain.ContentStatus
	flushes    int
	setErr     error
	flushErr   error
}

func (f *fakeStatusCache) SetBatch(_ context.Context, statuses []domain.ContentStatus) error {
	f.rec.record("cache.set")
	if f.setErr != nil {
		return f.setErr
	}
	f.setBatches = append(f.setBatches, statuses)
	return nil
}

func (f *fakeStatusCache) Flush(_ context.Context) error {
	f.rec.record("cache.flush")
	f.flushes++
	return f.flushErr
}

type syncerFixture struct {
	catalog   *fakeCatalog
	products  *fakeProductStore
	drafts    *fakeDraftStore
	snapshots *fakeSnapshotStore
	cache     *fakeStatusCache
	rec       *opRecorder
	syncer    *Syncer
}

func newSyncerFixture(pages ...catalogPage) *syncerFixture {
	rec := &opRecorder{}
	fix := &syncerFixture{
		catalog:   &fakeCatalog{pages: pages},
		products:  &fakeProductStore{rec: rec},
		drafts:    &fakeDraftStore{drafts: map[string]bool{}},
		snapshots: &fakeSnapshotStore{rec: rec},
		cache:     &fakeStatusCache{rec: rec},
		rec:       rec,
	}
	batch := NewBatchClassifier(layout.New(), 2, logger.NewNop())
	fix.syncer = NewSyncer(fix.catalog, fix.products, fix.drafts, fix.snapshots, fix.cache, batch, nil, logger.NewNop())
	fix.syncer.now = func() time.Time { return fixedNow }
	return fix
}

func snapshotByID(t *testing.T, batches [][]domain.StatusSnapshot, id string) domain.StatusSnapshot {
	t.Helper()
	for _, batch := range batches {
		for _, s := range batch {
			if s.ProductID == id {
				return s
			}
		}
	}
	t.Fatalf("no snapshot persisted for product %s", id)
	return domain.StatusSnapshot{}
}

func TestSyncer_SyncOnce_WalksAllPages(t *testing.T) {
	fix := newSyncerFixture(
		catalogPage{
			products: []domain.Product{
				{ID: "1", BodyHTML: tabbedBodyHTML},
				{ID: "2", BodyHTML: "<p>legacy description</p>"},
			},
			next: "cursor-two",
		},
		catalogPage{
			products: []domain.Product{{ID: "3"}},
		},
	)
	fix.drafts.drafts["2"] = true
	fix.snapshots.pruned = 4

	stats, err := fix.syncer.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("SyncOnce failed: %v", err)
	}

	wantCursors := []string{"", "cursor-two"}
	if len(fix.catalog.cursors) != len(wantCursors) {
		t.Fatalf("expected %d catalog calls, got %d", len(wantCursors), len(fix.catalog.cursors))
	}
	for i, want := range wantCursors {
		if fix.catalog.cursors[i] != want {
			t.Errorf("call %d: expected cursor %q, got %q", i, want, fix.catalog.cursors[i])
		}
	}

	if stats.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", stats.Pages)
	}
	if stats.Products != 3 {
		t.Errorf("expected 3 products, got %d", stats.Products)
	}
	if stats.Snapshots != 3 {
		t.Errorf("expected 3 snapshots, got %d", stats.Snapshots)
	}
	if stats.Pruned != 4 {
		t.Errorf("expected 4 pruned, got %d", stats.Pruned)
	}
	if !stats.StartedAt.Equal(fixedNow) {
		t.Errorf("expected started_at %v, got %v", fixedNow, stats.StartedAt)
	}

	if len(fix.products.upserted) != 2 {
		t.Fatalf("expected 2 mirrored batches, got %d", len(fix.products.upserted))
	}
	if len(fix.products.upserted[0]) != 2 || len(fix.products.upserted[1]) != 1 {
		t.Errorf("unexpected mirrored batch sizes: %d and %d",
			len(fix.products.upserted[0]), len(fix.products.upserted[1]))
	}

	tabbed := snapshotByID(t, fix.snapshots.upserted, "1")
	if !tabbed.HasNewLayout || tabbed.ContentCount != 2 {
		t.Errorf("expected tabbed snapshot with 2 sections, got %+v", tabbed)
	}
	drafted := snapshotByID(t, fix.snapshots.upserted, "2")
	if !drafted.HasDraftContent || drafted.HasNewLayout {
		t.Errorf("expected draft-only flags for product 2, got %+v", drafted)
	}
	bare := snapshotByID(t, fix.snapshots.upserted, "3")
	if bare.HasShopifyContent || bare.HasNewLayout || bare.HasDraftContent || bare.ContentCount != 0 {
		t.Errorf("expected zero status for empty product, got %+v", bare)
	}

	if len(fix.cache.setBatches) != 2 {
		t.Errorf("expected 2 cache warm batches, got %d", len(fix.cache.setBatches))
	}

	if fix.syncer.Running() {
		t.Error("expected running flag cleared after sync")
	}
}

func TestSyncer_SyncOnce_EmptyCatalog(t *testing.T) {
	fix := newSyncerFixture(catalogPage{})

	stats, err := fix.syncer.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("SyncOnce failed: %v", err)
	}

	if stats.Pages != 1 || stats.Products != 0 || stats.Snapshots != 0 {
		t.Errorf("unexpected stats for empty catalog: %+v", stats)
	}
	if len(fix.products.upserted) != 0 {
		t.Errorf("expected no mirror writes, got %d", len(fix.products.upserted))
	}
	if fix.rec.indexOf("snapshots.prune") == -1 {
		t.Error("expected orphan pruning to run even for an empty catalog")
	}
}

func TestSyncer_SyncOnce_PropagatesCatalogError(t *testing.T) {
	fix := newSyncerFixture()
	fix.catalog.err = errors.New("rate limited by shopify")

	stats, err := fix.syncer.SyncOnce(context.Background())
	if err == nil {
		t.Fatal("expected error from failing catalog")
	}
	if !errors.Is(err, fix.catalog.err) {
		t.Errorf("expected wrapped catalog error, got %v", err)
	}
	if stats == nil || stats.Pages != 0 {
		t.Errorf("expected zero completed pages, got %+v", stats)
	}
	if fix.syncer.Running() {
		t.Error("expected running flag cleared after failed sync")
	}
}

func TestSyncer_SyncOnce_SnapshotWriteAborts(t *testing.T) {
	fix := newSyncerFixture(catalogPage{products: []domain.Product{{ID: "1"}}})
	fix.snapshots.upsertErr = errors.New("postgres gone")

	_, err := fix.syncer.SyncOnce(context.Background())
	if err == nil {
		t.Fatal("expected error from failing snapshot store")
	}
	if !errors.Is(err, fix.snapshots.upsertErr) {
		t.Errorf("expected wrapped snapshot error, got %v", err)
	}
}

func TestSyncer_SyncOnce_CacheWriteFailureDoesNotAbort(t *testing.T) {
	fix := newSyncerFixture(catalogPage{products: []domain.Product{{ID: "1", BodyHTML: tabbedBodyHTML}}})
	fix.cache.setErr = errors.New("redis down")

	stats, err := fix.syncer.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("expected cache failure to be tolerated, got %v", err)
	}
	if stats.Snapshots != 1 {
		t.Errorf("expected snapshot persisted despite cache failure, got %d", stats.Snapshots)
	}
}

func TestSyncer_RejectsConcurrentRuns(t *testing.T) {
	fix := newSyncerFixture(catalogPage{})

	fix.syncer.running.Store(true)
	if !fix.syncer.Running() {
		t.Fatal("expected Running to report true")
	}

	if _, err := fix.syncer.SyncOnce(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("expected ErrSyncInProgress from SyncOnce, got %v", err)
	}
	if _, err := fix.syncer.RefreshAll(context.Background()); !errors.Is(err, ErrSyncInProgress) {
		t.Errorf("expected ErrSyncInProgress from RefreshAll, got %v", err)
	}

	fix.syncer.running.Store(false)
	if _, err := fix.syncer.SyncOnce(context.Background()); err != nil {
		t.Errorf("expected sync to run once flag is released, got %v", err)
	}
}

func TestSyncer_RefreshAll_FlushesCacheBeforeWriting(t *testing.T) {
	fix := newSyncerFixture()
	fix.products.ids = []string{"1", "2"}
	fix.products.byID = map[string]*domain.Product{
		"1": {ID: "1", BodyHTML: tabbedBodyHTML},
		"2": {ID: "2", BodyHTML: "<p>legacy</p>"},
	}

	stats, err := fix.syncer.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll failed: %v", err)
	}

	if fix.cache.flushes != 1 {
		t.Fatalf("expected exactly one cache flush, got %d", fix.cache.flushes)
	}
	flushIdx := fix.rec.indexOf("cache.flush")
	writeIdx := fix.rec.indexOf("snapshots.upsert")
	if flushIdx == -1 || writeIdx == -1 || flushIdx > writeIdx {
		t.Errorf("expected flush before snapshot writes, ops: %v", fix.rec.ops)
	}

	if stats.Batches != 1 || stats.Products != 2 {
		t.Errorf("unexpected refresh stats: %+v", stats)
	}

	refreshed := snapshotByID(t, fix.snapshots.upserted, "1")
	if !refreshed.HasNewLayout || refreshed.ContentCount != 2 {
		t.Errorf("expected recomputed layout snapshot, got %+v", refreshed)
	}
}

func TestSyncer_RefreshAll_ChunksProductIDs(t *testing.T) {
	fix := newSyncerFixture()
	ids := make([]string, 1200)
	for i := range ids {
		ids[i] = fmt.Sprintf("p-%d", i)
	}
	fix.products.ids = ids

	stats, err := fix.syncer.RefreshAll(context.Background())
	if err != nil {
		t.Fatalf("RefreshAll failed: %v", err)
	}

	wantChunks := []int{500, 500, 200}
	if len(fix.products.getCalls) != len(wantChunks) {
		t.Fatalf("expected %d chunks, got %d", len(wantChunks), len(fix.products.getCalls))
	}
	for i, want := range wantChunks {
		if len(fix.products.getCalls[i]) != want {
			t.Errorf("chunk %d: expected %d ids, got %d", i, want, len(fix.products.getCalls[i]))
		}
	}
	if stats.Batches != 3 || stats.Products != 1200 {
		t.Errorf("unexpected refresh stats: %+v", stats)
	}
}

func TestSyncer_RefreshAll_FlushFailureDoesNotAbort(t *testing.T) {
	fix := newSyncerFixture()
	fix.products.ids = []string{"1"}
	fix.cache.flushErr = errors.New("redis down")

	if _, err := fix.syncer.RefreshAll(context.Background()); err != nil {
		t.Fatalf("expected flush failure to be tolerated, got %v", err)
	}
}

func TestSyncer_RefreshAll_PropagatesListError(t *testing.T) {
	fix := newSyncerFixture()
	fix.products.listErr = errors.New("postgres gone")

	_, err := fix.syncer.RefreshAll(context.Background())
	if !errors.Is(err, fix.products.listErr) {
		t.Errorf("expected wrapped list error, got %v", err)
	}
	if fix.syncer.Running() {
		t.Error("expected running flag cleared after failed refresh")
	}
}
