package availability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Entry is a cached availability adjustment for one team.
type Entry struct {
	TeamID     int       `json:"team_id"`
	TeamName   string    `json:"team_name"`
	Adjustment float64   `json:"adjustment"`
	Severity   float64   `json:"severity"`
	Count      int       `json:"injuries_count"`
	Summary    []string  `json:"injuries_summary"`
	CachedAt   time.Time `json:"cached_at"`
}

// Age returns how long ago the entry was cached.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}

// Expired checks whether the entry has outlived the TTL.
func (e *Entry) Expired(ttl time.Duration, now time.Time) bool {
	return e.Age(now) > ttl
}

// CacheConfig tunes the availability cache.
type CacheConfig struct {
	TTL     time.Duration
	Persist bool
	Path    string
}

// DefaultCacheConfig returns the production cache tuning.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:     4 * time.Hour,
		Persist: false,
		Path:    ".cache/injury_cache.json",
	}
}

// Cache holds availability adjustments per team with TTL semantics and an
// optional disk snapshot. Entries are stored without backend expiry so
// stale reads stay possible; staleness is checked against CachedAt.
//
// Cache is safe for concurrent use.
type Cache struct {
	store *cache.Cache
	ttl   time.Duration

	persist bool
	path    string

	mu     sync.RWMutex
	hits   uint64
	misses uint64

	now func() time.Time
}

// CacheStats summarizes cache contents and effectiveness.
type CacheStats struct {
	Total      int
	Fresh      int
	Expired    int
	AverageAge time.Duration
	TTL        time.Duration
	Hits       uint64
	Misses     uint64
}

// NewCache creates a Cache. When persistence is enabled, non-expired
// entries are loaded from the snapshot file; any snapshot I/O problem
// degrades to an empty cache rather than failing construction.
func NewCache(cfg CacheConfig) *Cache {
	c := &Cache{
		store:   cache.New(cache.NoExpiration, 0),
		ttl:     cfg.TTL,
		persist: cfg.Persist,
		path:    cfg.Path,
		now:     time.Now,
	}
	if c.persist {
		c.loadSnapshot()
	}
	return c
}

func cacheKey(teamID int) string {
	return strconv.Itoa(teamID)
}

// Get returns the entry for a team. Expired entries are returned only
// when allowStale is set.
func (c *Cache) Get(teamID int, allowStale bool) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, found := c.store.Get(cacheKey(teamID))
	if !found {
		c.misses++
		c.updateMetrics()
		return Entry{}, false
	}

	e := v.(Entry)
	if e.Expired(c.ttl, c.now()) && !allowStale {
		c.misses++
		c.updateMetrics()
		return Entry{}, false
	}

	c.hits++
	c.updateMetrics()
	return e, true
}

// Adjustment returns a team's cached adjustment, or zero when absent.
func (c *Cache) Adjustment(teamID int, allowStale bool) float64 {
	if e, ok := c.Get(teamID, allowStale); ok {
		return e.Adjustment
	}
	return 0.0
}

// Set stores an entry for a team, stamping it with the current time.
func (c *Cache) Set(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e.CachedAt = c.now()
	c.store.Set(cacheKey(e.TeamID), e, cache.NoExpiration)
	c.saveSnapshotLocked()
}

// Clear removes one team's entry.
func (c *Cache) Clear(teamID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Delete(cacheKey(teamID))
	c.saveSnapshotLocked()
}

// ClearAll empties the cache and resets counters.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Flush()
	c.hits = 0
	c.misses = 0
	c.saveSnapshotLocked()
}

// ClearExpired drops expired entries and returns how many were removed.
func (c *Cache) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, item := range c.store.Items() {
		e := item.Object.(Entry)
		if e.Expired(c.ttl, now) {
			c.store.Delete(key)
			removed++
		}
	}
	if removed > 0 {
		c.saveSnapshotLocked()
	}
	return removed
}

// Len returns the number of cached entries, fresh or not.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Stats returns cache statistics.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	stats := CacheStats{TTL: c.ttl, Hits: c.hits, Misses: c.misses}

	var ageSum time.Duration
	for _, item := range c.store.Items() {
		e := item.Object.(Entry)
		stats.Total++
		ageSum += e.Age(now)
		if e.Expired(c.ttl, now) {
			stats.Expired++
		} else {
			stats.Fresh++
		}
	}
	if stats.Total > 0 {
		stats.AverageAge = ageSum / time.Duration(stats.Total)
	}
	return stats
}

// updateMetrics refreshes the Prometheus view. Called with mu held.
func (c *Cache) updateMetrics() {
	total := c.hits + c.misses
	if total > 0 {
		CacheHitRatio.Set(float64(c.hits) / float64(total))
	}
	CacheEntries.Set(float64(c.store.ItemCount()))
}

type snapshotFile struct {
	SavedAt    time.Time        `json:"saved_at"`
	TTLSeconds int              `json:"ttl_seconds"`
	Entries    map[string]Entry `json:"entries"`
}

// saveSnapshotLocked writes the snapshot file. Called with mu held;
// failures are logged and swallowed.
func (c *Cache) saveSnapshotLocked() {
	if !c.persist {
		return
	}

	snap := snapshotFile{
		SavedAt:    c.now(),
		TTLSeconds: int(c.ttl.Seconds()),
		Entries:    make(map[string]Entry, c.store.ItemCount()),
	}
	for key, item := range c.store.Items() {
		snap.Entries[key] = item.Object.(Entry)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		logrus.WithError(err).Warn("Failed to encode availability cache snapshot")
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		logrus.WithError(err).Warn("Failed to create availability cache directory")
		return
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		logrus.WithError(err).Warn("Failed to persist availability cache")
	}
}

// loadSnapshot restores non-expired entries from disk. Missing or corrupt
// snapshots leave the cache empty.
func (c *Cache) loadSnapshot() {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Warn("Failed to read availability cache snapshot")
		}
		return
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		logrus.WithError(err).Warn("Failed to decode availability cache snapshot")
		return
	}

	now := c.now()
	for key, e := range snap.Entries {
		if !e.Expired(c.ttl, now) {
			c.store.Set(key, e, cache.NoExpiration)
		}
	}
}
