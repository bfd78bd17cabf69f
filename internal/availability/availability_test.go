package availability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courtside/internal/models"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		name string
		tier PlayerTier
	}{
		{"LeBron James", TierAllStar},
		{"lebron james", TierAllStar},
		{"De'Aaron Fox", TierAllStar},
		{"Jaren Jackson Jr.", TierAllStar},
		{"Random Role Player", TierStarter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tier, TierFor(tt.name))
		})
	}
}

func TestTierMultipliers(t *testing.T) {
	assert.Equal(t, 2.5, TierAllStar.Multiplier())
	assert.Equal(t, 1.5, TierStarter.Multiplier())
	assert.Equal(t, 1.0, TierBench.Multiplier())
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "deaaron fox", NormalizeName("De'Aaron   Fox "))
	assert.Equal(t, "jaren jackson jr", NormalizeName("Jaren Jackson Jr."))
}

func TestAdjustmentAllStarOut(t *testing.T) {
	calc := NewCalculator(DefaultCalculatorConfig())
	report := &models.TeamInjuryReport{
		TeamName: "Los Angeles Lakers",
		Players: []models.PlayerInjury{
			{PlayerName: "LeBron James", Status: "Out"},
		},
	}

	// 1.0 severity x 2.5 importance x 20 base.
	assert.Equal(t, -50.0, calc.Adjustment(report))
}

func TestAdjustmentClampedAtMax(t *testing.T) {
	calc := NewCalculator(DefaultCalculatorConfig())
	report := &models.TeamInjuryReport{
		TeamName: "Boston Celtics",
		Players: []models.PlayerInjury{
			{PlayerName: "Jayson Tatum", Status: "Out"},
			{PlayerName: "Jaylen Brown", Status: "Out"},
			{PlayerName: "Kristaps Porzingis", Status: "Out"},
		},
	}

	assert.Equal(t, -100.0, calc.Adjustment(report))
}

func TestAdjustmentSnapsSmallImpactToZero(t *testing.T) {
	cfg := DefaultCalculatorConfig()
	cfg.BaseMultiplier = 10.0
	calc := NewCalculator(cfg)
	report := &models.TeamInjuryReport{
		Players: []models.PlayerInjury{
			{PlayerName: "Role Player", Status: "Day-To-Day"},
		},
	}

	// 0.25 x 1.5 x 10 = 3.75, weaker than the 5 point floor.
	assert.Equal(t, 0.0, calc.Adjustment(report))
}

func TestAdjustmentDisabled(t *testing.T) {
	cfg := DefaultCalculatorConfig()
	cfg.Enabled = false
	calc := NewCalculator(cfg)
	report := &models.TeamInjuryReport{
		Players: []models.PlayerInjury{
			{PlayerName: "LeBron James", Status: "Out"},
		},
	}

	assert.Equal(t, 0.0, calc.Adjustment(report))
}

func TestAdjustmentEmptyReport(t *testing.T) {
	calc := NewCalculator(DefaultCalculatorConfig())

	assert.Equal(t, 0.0, calc.Adjustment(nil))
	assert.Equal(t, 0.0, calc.Adjustment(&models.TeamInjuryReport{}))
}

func TestBuildEntry(t *testing.T) {
	calc := NewCalculator(DefaultCalculatorConfig())
	report := &models.TeamInjuryReport{
		TeamName: "Los Angeles Lakers",
		Players: []models.PlayerInjury{
			{PlayerName: "LeBron James", Status: "Out"},
			{PlayerName: "Austin Reaves", Status: "Questionable"},
		},
	}

	e := calc.BuildEntry(1610612747, report)

	assert.Equal(t, 1610612747, e.TeamID)
	assert.Equal(t, "Los Angeles Lakers", e.TeamName)
	assert.Equal(t, 2, e.Count)
	assert.Equal(t, 1.5, e.Severity)
	assert.Equal(t, []string{"LeBron James (Out)", "Austin Reaves (Questionable)"}, e.Summary)
	assert.Less(t, e.Adjustment, 0.0)
}

func TestCacheGetSet(t *testing.T) {
	c := NewCache(CacheConfig{TTL: time.Hour})

	_, ok := c.Get(1, false)
	assert.False(t, ok)

	c.Set(Entry{TeamID: 1, TeamName: "Boston Celtics", Adjustment: -20.0})

	e, ok := c.Get(1, false)
	require.True(t, ok)
	assert.Equal(t, -20.0, e.Adjustment)
	assert.False(t, e.CachedAt.IsZero())

	assert.Equal(t, -20.0, c.Adjustment(1, false))
	assert.Equal(t, 0.0, c.Adjustment(2, false))
}

func TestCacheStaleEntries(t *testing.T) {
	c := NewCache(CacheConfig{TTL: time.Hour})
	c.Set(Entry{TeamID: 1, Adjustment: -35.0})

	// Move the clock past the TTL.
	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, ok := c.Get(1, false)
	assert.False(t, ok)

	e, ok := c.Get(1, true)
	require.True(t, ok)
	assert.Equal(t, -35.0, e.Adjustment)
}

func TestCacheClearExpired(t *testing.T) {
	c := NewCache(CacheConfig{TTL: time.Hour})
	c.Set(Entry{TeamID: 1, Adjustment: -10.0})

	c.now = func() time.Time { return time.Now().Add(30 * time.Minute) }
	c.Set(Entry{TeamID: 2, Adjustment: -15.0})

	c.now = func() time.Time { return time.Now().Add(90 * time.Minute) }

	removed := c.ClearExpired()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get(2, false)
	assert.True(t, ok)
}

func TestCacheStats(t *testing.T) {
	c := NewCache(CacheConfig{TTL: time.Hour})
	c.Set(Entry{TeamID: 1, Adjustment: -10.0})
	c.Set(Entry{TeamID: 2, Adjustment: -20.0})

	c.Get(1, false)
	c.Get(99, false)

	stats := c.Stats()

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Fresh)
	assert.Equal(t, 0, stats.Expired)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
}

func TestCachePersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "injury_cache.json")

	c := NewCache(CacheConfig{TTL: time.Hour, Persist: true, Path: path})
	c.Set(Entry{
		TeamID:     1610612747,
		TeamName:   "Los Angeles Lakers",
		Adjustment: -50.0,
		Severity:   2.5,
		Count:      2,
		Summary:    []string{"LeBron James (Out)", "Anthony Davis (Questionable)"},
	})

	reloaded := NewCache(CacheConfig{TTL: time.Hour, Persist: true, Path: path})

	e, ok := reloaded.Get(1610612747, false)
	require.True(t, ok)
	assert.Equal(t, -50.0, e.Adjustment)
	assert.Equal(t, "Los Angeles Lakers", e.TeamName)
	assert.Len(t, e.Summary, 2)
}

func TestCachePersistSkipsExpiredOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "injury_cache.json")

	c := NewCache(CacheConfig{TTL: time.Hour, Persist: true, Path: path})
	c.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	c.Set(Entry{TeamID: 1, Adjustment: -10.0})

	reloaded := NewCache(CacheConfig{TTL: time.Hour, Persist: true, Path: path})

	assert.Equal(t, 0, reloaded.Len())
}

func TestCacheCorruptSnapshotDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "injury_cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	c := NewCache(CacheConfig{TTL: time.Hour, Persist: true, Path: path})

	assert.Equal(t, 0, c.Len())
}
