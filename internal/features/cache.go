package features

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/fantasy-edge/internal/metrics"
)

// StatCache memoizes computed team aggregates keyed by team and as-of date.
// It is an explicit, TTL-bounded object passed by reference so concurrent
// predictions and tests stay isolated from each other.
type StatCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewStatCache creates a new team-stat cache with the given TTL
func NewStatCache(ttl time.Duration) *StatCache {
	return &StatCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

func statCacheKey(teamID uuid.UUID, asOf time.Time) string {
	return fmt.Sprintf("%s:%s", teamID, asOf.UTC().Format(time.RFC3339))
}

// Get retrieves cached aggregates for a team as of a date
func (sc *StatCache) Get(teamID uuid.UUID, asOf time.Time) (*teamAggregates, bool) {
	if sc == nil {
		return nil, false
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if v, found := sc.cache.Get(statCacheKey(teamID, asOf)); found {
		sc.hitCount++
		sc.publishRatio()
		if agg, ok := v.(*teamAggregates); ok {
			return agg, true
		}
	}
	sc.missCount++
	sc.publishRatio()
	return nil, false
}

// Set stores aggregates for a team as of a date
func (sc *StatCache) Set(teamID uuid.UUID, asOf time.Time, agg *teamAggregates) {
	if sc == nil {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache.Set(statCacheKey(teamID, asOf), agg, sc.ttl)
}

// Clear flushes the cache
func (sc *StatCache) Clear() {
	if sc == nil {
		return
	}
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cache.Flush()
	sc.hitCount = 0
	sc.missCount = 0
}

// Stats returns hit/miss counts and the hit ratio
func (sc *StatCache) Stats() (hits, misses uint64, ratio float64) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	hits = sc.hitCount
	misses = sc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (sc *StatCache) publishRatio() {
	total := sc.hitCount + sc.missCount
	if total > 0 {
		metrics.FeatureCacheHitRatio.Set(float64(sc.hitCount) / float64(total))
	}
}
