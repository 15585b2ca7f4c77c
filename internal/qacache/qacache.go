// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package qacache caches finished answers keyed by the normalized
// question. Entries expire after a TTL and the least-recently-used
// entry is evicted at capacity. Concurrent requests for the same key
// share a single in-flight computation.
package qacache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/answer-engine/pkg/types"
)

const (
	defaultTTL      = time.Hour
	defaultCapacity = 128
)

// Key derives the stable cache key for a request. Normalization
// happens in the classifier, so equal questions with different
// whitespace or casing share a key.
func Key(normalized, topic string, limit int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", normalized, topic, limit)))
	return hex.EncodeToString(sum[:])
}

type entry struct {
	result   types.AnswerResult
	storedAt time.Time
}

// Cache is a TTL-bounded LRU of answer results. Safe for concurrent use.
type Cache struct {
	lru   *lru.Cache[string, entry]
	ttl   time.Duration
	group singleflight.Group

	// now is replaced in tests to step time.
	now func() time.Time
}

// New creates a Cache from configuration, applying defaults for
// unset fields.
func New(cfg types.CacheConfig) (*Cache, error) {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	l, err := lru.New[string, entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	return &Cache{lru: l, ttl: ttl, now: time.Now}, nil
}

// Get returns the cached result for key if present, valid, and within
// TTL. Expired or corrupt entries are evicted and reported as misses.
func (c *Cache) Get(key string) (types.AnswerResult, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return types.AnswerResult{}, false
	}
	if !c.valid(e) {
		c.lru.Remove(key)
		return types.AnswerResult{}, false
	}
	return e.result, true
}

// Put stores a result under key, evicting the least-recently-used
// entry when at capacity.
func (c *Cache) Put(key string, result types.AnswerResult) {
	c.lru.Add(key, entry{result: result, storedAt: c.now()})
}

// Len returns the number of stored entries, including any that have
// expired but not yet been evicted.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// GetOrCompute returns the cached result for key, or runs compute and
// stores its result. Concurrent callers with the same key await one
// computation instead of each running the pipeline. The hit flag is
// true when the caller did not execute compute itself. A caller whose
// context expires while awaiting another caller's computation returns
// the context error instead of the result.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(context.Context) (types.AnswerResult, error)) (types.AnswerResult, bool, error) {
	if res, ok := c.Get(key); ok {
		return res, true, nil
	}

	ran := false
	ch := c.group.DoChan(key, func() (interface{}, error) {
		// A racing caller may have stored the entry between the miss
		// above and acquiring the flight.
		if res, ok := c.Get(key); ok {
			return res, nil
		}

		ran = true
		res, err := compute(ctx)
		if err != nil {
			return types.AnswerResult{}, err
		}
		c.Put(key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return types.AnswerResult{}, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return types.AnswerResult{}, false, r.Err
		}
		return r.Val.(types.AnswerResult), !ran, nil
	}
}

// valid rejects expired entries and structurally corrupt ones. A
// corrupt entry counts as a miss so the pipeline re-runs.
func (c *Cache) valid(e entry) bool {
	if e.storedAt.IsZero() || e.result.Status == "" {
		return false
	}
	return c.now().Sub(e.storedAt) < c.ttl
}
