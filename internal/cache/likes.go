// Package cache holds the redis-backed read-through cache for derived
// favourite state. The database stays authoritative; entries are dropped on
// every ledger mutation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KeyLikeCounts = "recipe:likes:counts"

	likeCountsTTL = 5 * time.Minute
)

// LikeCache caches the full recipeID -> favourite-count map.
type LikeCache struct {
	client *redis.Client
}

func NewLikeCache(client *redis.Client) *LikeCache {
	return &LikeCache{client: client}
}

// GetCounts returns the cached counts map. The second return is false on a
// cache miss.
func (c *LikeCache) GetCounts(ctx context.Context) (map[int64]int64, bool, error) {
	data, err := c.client.Get(ctx, KeyLikeCounts).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}

	counts := make(map[int64]int64)
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, false, err
	}
	return counts, true, nil
}

// SetCounts stores the counts map with a TTL.
func (c *LikeCache) SetCounts(ctx context.Context, counts map[int64]int64) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, KeyLikeCounts, data, likeCountsTTL).Err()
}

// Invalidate drops the cached counts so the next read recomputes from the
// database.
func (c *LikeCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, KeyLikeCounts).Err()
}
