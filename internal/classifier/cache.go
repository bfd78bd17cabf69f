// Package classifier provides caching for classifier predictions.
package classifier

import (
	"fmt"
	"strings"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// CacheKey identifies one scored matchup.
type CacheKey struct {
	HomeTeamID   int
	AwayTeamID   int
	GameDate     string
	ModelVersion string
}

// String returns the flat cache key. No component contains a colon, so the
// key splits cleanly.
func (k CacheKey) String() string {
	return fmt.Sprintf("%d:%d:%s:%s", k.HomeTeamID, k.AwayTeamID, k.GameDate, k.ModelVersion)
}

// PredictionCache provides in-memory caching for classifier predictions.
type PredictionCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a prediction cache with the given TTL and size cap.
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached prediction, or nil on a miss.
func (pc *PredictionCache) Get(key CacheKey) *Prediction {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if result, found := pc.cache.Get(key.String()); found {
		if pred, ok := result.(*Prediction); ok {
			pc.hitCount++
			pc.updateMetricsLocked()
			return pred
		}
	}

	pc.missCount++
	pc.updateMetricsLocked()
	return nil
}

// Set stores a prediction in cache
func (pc *PredictionCache) Set(key CacheKey, prediction *Prediction) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	// Check size limit
	if pc.cache.ItemCount() >= pc.maxSize {
		// Remove expired items first
		pc.cache.DeleteExpired()
	}

	pc.cache.Set(key.String(), prediction, pc.ttl)
}

// InvalidateDate removes every cached prediction for one game date. Used
// when injury reports or market lines move after a slate was scored.
func (pc *PredictionCache) InvalidateDate(gameDate string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	// Cache key format: homeID:awayID:gameDate:modelVersion
	for k := range pc.cache.Items() {
		parts := strings.SplitN(k, ":", 4)
		if len(parts) == 4 && parts[2] == gameDate {
			pc.cache.Delete(k)
		}
	}
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hitCount = 0
	pc.missCount = 0
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	hits = pc.hitCount
	misses = pc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// updateMetricsLocked refreshes the hit ratio gauge. Caller holds mu.
func (pc *PredictionCache) updateMetricsLocked() {
	total := pc.hitCount + pc.missCount
	if total > 0 {
		CacheHitRatio.Set(float64(pc.hitCount) / float64(total))
	}
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}
