package statuscache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/statuscache"
)

const testTTL = 5 * time.Minute

// fixedClock returns a clock pinned to base plus a controllable offset.
type fixedClock struct {
	base   time.Time
	offset time.Duration
}

func (f *fixedClock) Now() time.Time {
	return f.base.Add(f.offset)
}

func newTestCache(t *testing.T) (*statuscache.Cache, *miniredis.Miniredis, *fixedClock) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &fixedClock{base: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := statuscache.NewWithClock(client, testTTL, clock.Now, logger.NewNop())

	return cache, mr, clock
}

func statusFor(id string, clock *fixedClock) domain.ContentStatus {
	return domain.ContentStatus{
		ProductID:         id,
		HasShopifyContent: true,
		HasNewLayout:      true,
		ContentCount:      3,
		ComputedAt:        clock.Now(),
	}
}

func TestCache_SetBatchThenGetBatch(t *testing.T) {
	cache, _, clock := newTestCache(t)
	ctx := context.Background()

	stored := []domain.ContentStatus{statusFor("1", clock), statusFor("2", clock)}
	require.NoError(t, cache.SetBatch(ctx, stored))

	hits, misses := cache.GetBatch(ctx, []string{"1", "2", "3"})

	assert.Len(t, hits, 2)
	assert.Equal(t, []string{"3"}, misses)
	assert.Equal(t, 3, hits["1"].ContentCount)
	assert.True(t, hits["2"].HasNewLayout)
}

func TestCache_GetBatch_Empty(t *testing.T) {
	cache, _, _ := newTestCache(t)

	hits, misses := cache.GetBatch(context.Background(), nil)

	assert.Empty(t, hits)
	assert.Empty(t, misses)
}

func TestCache_RedisExpiryMakesMisses(t *testing.T) {
	cache, mr, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetBatch(ctx, []domain.ContentStatus{statusFor("1", clock)}))

	mr.FastForward(testTTL + time.Second)

	hits, misses := cache.GetBatch(ctx, []string{"1"})
	assert.Empty(t, hits)
	assert.Equal(t, []string{"1"}, misses)
}

func TestCache_StaleByClockIsMissEvenIfRedisKeptIt(t *testing.T) {
	cache, _, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetBatch(ctx, []domain.ContentStatus{statusFor("1", clock)}))

	// Advance only our clock; miniredis has not expired the key.
	clock.offset = testTTL + time.Second

	hits, misses := cache.GetBatch(ctx, []string{"1"})
	assert.Empty(t, hits)
	assert.Equal(t, []string{"1"}, misses)
}

func TestCache_FreshWithinTTL(t *testing.T) {
	cache, _, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetBatch(ctx, []domain.ContentStatus{statusFor("1", clock)}))

	clock.offset = testTTL - time.Second

	hits, misses := cache.GetBatch(ctx, []string{"1"})
	assert.Len(t, hits, 1)
	assert.Empty(t, misses)
}

func TestCache_UndecodableEntryIsMiss(t *testing.T) {
	cache, mr, _ := newTestCache(t)

	require.NoError(t, mr.Set("producthub:status:1", "not-json"))

	hits, misses := cache.GetBatch(context.Background(), []string{"1"})
	assert.Empty(t, hits)
	assert.Equal(t, []string{"1"}, misses)
}

func TestCache_Invalidate(t *testing.T) {
	cache, _, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetBatch(ctx, []domain.ContentStatus{
		statusFor("1", clock),
		statusFor("2", clock),
	}))

	require.NoError(t, cache.Invalidate(ctx, "1"))

	hits, misses := cache.GetBatch(ctx, []string{"1", "2"})
	assert.Equal(t, []string{"1"}, misses)
	assert.Contains(t, hits, "2")
}

func TestCache_Flush(t *testing.T) {
	cache, mr, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetBatch(ctx, []domain.ContentStatus{
		statusFor("1", clock),
		statusFor("2", clock),
	}))
	// A foreign key in the same database must survive the flush.
	require.NoError(t, mr.Set("other:key", "keep"))

	require.NoError(t, cache.Flush(ctx))

	hits, misses := cache.GetBatch(ctx, []string{"1", "2"})
	assert.Empty(t, hits)
	assert.Len(t, misses, 2)
	assert.True(t, mr.Exists("other:key"))
}

func TestCache_RedisDownDegradesToMisses(t *testing.T) {
	cache, mr, clock := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetBatch(ctx, []domain.ContentStatus{statusFor("1", clock)}))
	mr.Close()

	hits, misses := cache.GetBatch(ctx, []string{"1", "2"})
	assert.Empty(t, hits)
	assert.ElementsMatch(t, []string{"1", "2"}, misses)
}
