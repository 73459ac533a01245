// Package statuscache fronts status lookups with Redis. Entries are
// serialized ContentStatus values with a TTL; every failure mode degrades
// to a cache miss so callers fall back to recomputation, never to an error.
package statuscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/domain"
	"github.com/FoxxAdarshDev/ShopifyProductHub-sub001/internal/infra/logger"
)

const (
	keyPrefix  = "producthub:status:"
	defaultTTL = 5 * time.Minute

	scanBatchSize = 100
)

// Cache holds derived statuses for their freshness window. The clock is a
// field so tests control time; entries older than the TTL by that clock are
// misses even when Redis still holds them (the TTL may have been shortened
// between deploys).
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
	logger logger.Logger
}

// New creates a status cache with the wall clock.
func New(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	return NewWithClock(client, ttl, time.Now, log)
}

// NewWithClock creates a status cache with an injected clock.
func NewWithClock(client *redis.Client, ttl time.Duration, now func() time.Time, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		now:    now,
		logger: log,
	}
}

// TTL returns the configured freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) key(productID string) string {
	return keyPrefix + productID
}

// GetBatch fetches cached statuses for the given ids in one MGET. It
// returns the hits keyed by product id and the ids that need recomputation.
// Absent keys, undecodable entries, stale entries, and Redis errors are all
// misses.
func (c *Cache) GetBatch(ctx context.Context, productIDs []string) (map[string]domain.ContentStatus, []string) {
	hits := make(map[string]domain.ContentStatus, len(productIDs))
	if len(productIDs) == 0 {
		return hits, nil
	}

	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = c.key(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Warn("status cache read failed, recomputing batch",
			logger.Int("count", len(productIDs)),
			logger.Error(err),
		)
		return hits, append([]string(nil), productIDs...)
	}

	var misses []string
	for i, value := range values {
		id := productIDs[i]

		raw, ok := value.(string)
		if !ok {
			misses = append(misses, id)
			continue
		}

		var status domain.ContentStatus
		if err := json.Unmarshal([]byte(raw), &status); err != nil {
			c.logger.Warn("dropping undecodable status cache entry",
				logger.String("product_id", id),
				logger.Error(err),
			)
			misses = append(misses, id)
			continue
		}

		if c.now().Sub(status.ComputedAt) > c.ttl {
			misses = append(misses, id)
			continue
		}

		hits[id] = status
	}

	return hits, misses
}

// SetBatch writes statuses in one pipeline, each with the cache TTL.
func (c *Cache) SetBatch(ctx context.Context, statuses []domain.ContentStatus) error {
	if len(statuses) == 0 {
		return nil
	}

	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i := range statuses {
			payload, marshalErr := json.Marshal(&statuses[i])
			if marshalErr != nil {
				return fmt.Errorf("marshal status %s: %w", statuses[i].ProductID, marshalErr)
			}
			pipe.Set(ctx, c.key(statuses[i].ProductID), payload, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache statuses: %w", err)
	}

	return nil
}

// Invalidate drops the cached statuses for the given ids. Draft and
// publish writes call this so the next lookup recomputes.
func (c *Cache) Invalidate(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}

	keys := make([]string, len(productIDs))
	for i, id := range productIDs {
		keys[i] = c.key(id)
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate statuses: %w", err)
	}

	return nil
}

// Flush removes every cached status. Used after full refreshes and
// vocabulary version bumps. SCAN-based so only this cache's keys go,
// never the whole database.
func (c *Cache) Flush(ctx context.Context) error {
	pattern := keyPrefix + "*"
	var cursor uint64
	var deleted int

	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("scan status keys: %w", err)
		}

		if len(keys) > 0 {
			n, delErr := c.client.Del(ctx, keys...).Result()
			if delErr != nil {
				return fmt.Errorf("delete status keys: %w", delErr)
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	c.logger.Info("flushed status cache",
		logger.Int("keys_deleted", deleted),
	)

	return nil
}
