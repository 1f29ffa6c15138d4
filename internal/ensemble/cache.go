package ensemble

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/fantasy-edge/internal/metrics"
	"github.com/yourusername/fantasy-edge/internal/models"
)

// PredictionCache memoizes ensemble results keyed by matchup and serving
// ensemble version, so a model reload naturally invalidates every cached
// prediction.
type PredictionCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a prediction cache with the given TTL and a
// soft size cap
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

func predictionCacheKey(matchupID uuid.UUID, version string) string {
	return fmt.Sprintf("%s:%s", matchupID, version)
}

// Get retrieves a cached prediction, or nil
func (pc *PredictionCache) Get(matchupID uuid.UUID, version string) *models.PredictionResult {
	if pc == nil {
		return nil
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if v, found := pc.cache.Get(predictionCacheKey(matchupID, version)); found {
		pc.hitCount++
		pc.publishRatio()
		if result, ok := v.(*models.PredictionResult); ok {
			return result
		}
	}
	pc.missCount++
	pc.publishRatio()
	return nil
}

// Set stores a prediction. When the cache is over its size cap the whole
// cache is flushed rather than evicting piecemeal; entries are cheap to
// recompute.
func (pc *PredictionCache) Set(matchupID uuid.UUID, version string, result *models.PredictionResult) {
	if pc == nil {
		return
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.maxSize > 0 && pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.Flush()
	}
	pc.cache.Set(predictionCacheKey(matchupID, version), result, pc.ttl)
}

// Clear flushes the cache and resets counters
func (pc *PredictionCache) Clear() {
	if pc == nil {
		return
	}
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// Stats returns hit/miss counts and the hit ratio
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	hits = pc.hitCount
	misses = pc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (pc *PredictionCache) publishRatio() {
	total := pc.hitCount + pc.missCount
	if total > 0 {
		metrics.PredictionCacheHitRatio.Set(float64(pc.hitCount) / float64(total))
	}
}
