package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courtside/internal/rating"
	"github.com/yourusername/courtside/internal/rolling"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "state"))
}

func TestExists(t *testing.T) {
	s := newStore(t)
	assert.False(t, s.Exists())

	ratings := rating.NewTracker(rating.DefaultConfig())
	form := rolling.NewTracker()
	require.NoError(t, s.Save(ratings, form, false))

	assert.True(t, s.Exists())
}

func TestLoadFreshWhenAbsent(t *testing.T) {
	s := newStore(t)

	ratings, form, err := s.Load(rating.DefaultConfig())

	require.NoError(t, err)
	assert.Equal(t, 0, ratings.Len())
	assert.Equal(t, 0, form.Len())
	assert.Equal(t, 1500.0, ratings.Get(1610612737))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newStore(t)

	ratings := rating.NewTracker(rating.DefaultConfig())
	ratings.Set(1610612738, 1602.5)
	ratings.Set(1610612747, 1488.25)

	form := rolling.NewTracker()
	form.Record(1610612738, 112, 105, true, "2024-01-15")
	form.Record(1610612747, 105, 112, false, "2024-01-15")

	require.NoError(t, s.Save(ratings, form, true))

	loadedRatings, loadedForm, err := s.Load(rating.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, ratings.Snapshot(), loadedRatings.Snapshot())
	assert.Equal(t, form.Snapshot(), loadedForm.Snapshot())
}

// TestStateFileFormat pins the on-disk layout: string team-id keys and
// the short record field names.
func TestStateFileFormat(t *testing.T) {
	s := newStore(t)

	ratings := rating.NewTracker(rating.DefaultConfig())
	ratings.Set(1610612738, 1602.5)
	form := rolling.NewTracker()
	form.Record(1610612738, 112, 105, true, "2024-01-15")

	require.NoError(t, s.Save(ratings, form, false))

	eloData, err := os.ReadFile(filepath.Join(s.Dir(), "elo.json"))
	require.NoError(t, err)
	var elo map[string]float64
	require.NoError(t, json.Unmarshal(eloData, &elo))
	assert.Equal(t, 1602.5, elo["1610612738"])

	statsData, err := os.ReadFile(filepath.Join(s.Dir(), "stats.json"))
	require.NoError(t, err)
	var stats map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(statsData, &stats))
	require.Len(t, stats["1610612738"], 1)
	rec := stats["1610612738"][0]
	assert.Equal(t, float64(112), rec["pf"])
	assert.Equal(t, float64(105), rec["pa"])
	assert.Equal(t, true, rec["won"])
	assert.Equal(t, "2024-01-15", rec["date"])
}

func TestLoadMalformedIsError(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "elo.json"), []byte("{broken"), 0o644))

	_, _, err := s.Load(rating.DefaultConfig())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestBackupAndRestore(t *testing.T) {
	s := newStore(t)

	ratings := rating.NewTracker(rating.DefaultConfig())
	ratings.Set(1, 1600.0)
	form := rolling.NewTracker()
	form.Record(1, 110, 100, true, "2024-01-10")
	require.NoError(t, s.Save(ratings, form, false))

	// Second save with backup preserves the first generation.
	ratings.Set(1, 1650.0)
	form.Record(1, 120, 90, true, "2024-01-12")
	require.NoError(t, s.Save(ratings, form, true))

	restored, err := s.RestoreBackup()
	require.NoError(t, err)
	require.True(t, restored)

	loadedRatings, loadedForm, err := s.Load(rating.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1600.0, loadedRatings.Get(1))
	assert.Equal(t, 1, loadedForm.Stats(1).Games)
}

func TestRestoreBackupRequiresBothFiles(t *testing.T) {
	s := newStore(t)

	restored, err := s.RestoreBackup()
	require.NoError(t, err)
	assert.False(t, restored)

	// Only one backup present still refuses.
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "elo.json.bak"), []byte("{}"), 0o644))

	restored, err = s.RestoreBackup()
	require.NoError(t, err)
	assert.False(t, restored)
}

func TestMetadataLifecycle(t *testing.T) {
	s := newStore(t)

	meta := s.Metadata()
	assert.Nil(t, meta.LastProcessedDate)
	assert.Equal(t, 0, meta.GamesProcessedTotal)
	assert.Equal(t, Version, meta.Version)

	_, ok := s.LastProcessedDate()
	assert.False(t, ok)

	d := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.SetLastProcessedDate(d))

	got, ok := s.LastProcessedDate()
	require.True(t, ok)
	assert.Equal(t, "2024-01-15", got.Format("2006-01-02"))

	total, err := s.IncrementGamesProcessed(7)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	total, err = s.IncrementGamesProcessed(3)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Equal(t, 10, s.GamesProcessedTotal())

	meta = s.Metadata()
	require.NotNil(t, meta.LastUpdated)
	assert.Equal(t, Version, meta.Version)
}

func TestCorruptMetadataFallsBackToDefaults(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "metadata.json"), []byte("not json"), 0o644))

	meta := s.Metadata()
	assert.Equal(t, 0, meta.GamesProcessedTotal)
	assert.Nil(t, meta.LastProcessedDate)
}

func TestSaveStampsLastUpdated(t *testing.T) {
	s := newStore(t)

	require.NoError(t, s.Save(rating.NewTracker(rating.DefaultConfig()), rolling.NewTracker(), false))

	meta := s.Metadata()
	require.NotNil(t, meta.LastUpdated)
	_, err := time.Parse(time.RFC3339, *meta.LastUpdated)
	assert.NoError(t, err)
}
