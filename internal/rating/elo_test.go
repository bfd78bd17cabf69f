package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerGetDefault(t *testing.T) {
	tracker := NewTracker(DefaultConfig())

	assert.Equal(t, 1500.0, tracker.Get(1610612737))
	assert.Equal(t, 0, tracker.Len())
}

func TestTrackerSetGet(t *testing.T) {
	tracker := NewTracker(DefaultConfig())

	tracker.Set(1610612737, 1580.5)
	assert.Equal(t, 1580.5, tracker.Get(1610612737))
	assert.Equal(t, 1, tracker.Len())
}

// TestWinProbabilityEqualRatings tests that home advantage tilts an
// otherwise even matchup toward the home side.
func TestWinProbabilityEqualRatings(t *testing.T) {
	tracker := NewTracker(DefaultConfig())

	p := tracker.MatchupProbability(1, 2)
	expected := 1.0 / (1.0 + math.Pow(10, -70.0/400.0))
	assert.InDelta(t, expected, p, 1e-12)
	assert.Greater(t, p, 0.5)
}

func TestWinProbabilityBounds(t *testing.T) {
	tracker := NewTracker(DefaultConfig())
	tracker.Set(1, 2200.0)
	tracker.Set(2, 1100.0)

	strong := tracker.MatchupProbability(1, 2)
	weak := tracker.MatchupProbability(2, 1)

	assert.Greater(t, strong, 0.95)
	assert.Less(t, weak, 0.05)
	assert.Greater(t, weak, 0.0)
	assert.Less(t, strong, 1.0)
}

func TestApplyResultZeroSum(t *testing.T) {
	tracker := NewTracker(DefaultConfig())
	tracker.Set(1, 1550.0)
	tracker.Set(2, 1450.0)

	before := tracker.Get(1) + tracker.Get(2)
	delta := tracker.ApplyResult(1, 2, true)
	after := tracker.Get(1) + tracker.Get(2)

	assert.Greater(t, delta, 0.0)
	assert.InDelta(t, before, after, 1e-9)
}

func TestApplyResultUpset(t *testing.T) {
	tracker := NewTracker(DefaultConfig())
	tracker.Set(1, 1700.0)
	tracker.Set(2, 1400.0)

	// Away upset moves more points than a home hold would.
	holdDelta := tracker.PreviewDelta(1, 2, true)
	upsetDelta := tracker.ApplyResult(1, 2, false)

	assert.Less(t, upsetDelta, 0.0)
	assert.Greater(t, math.Abs(upsetDelta), math.Abs(holdDelta))
	assert.Less(t, tracker.Get(1), 1700.0)
	assert.Greater(t, tracker.Get(2), 1400.0)
}

func TestApplyResultMaterializesUnknownTeams(t *testing.T) {
	tracker := NewTracker(DefaultConfig())

	// Equal 1500 ratings: home expectation ~0.599, so a home hold moves
	// both sides about 8 points.
	tracker.ApplyResult(10, 20, true)

	assert.Equal(t, 2, tracker.Len())
	assert.InDelta(t, 1508.0, tracker.Get(10), 0.1)
	assert.InDelta(t, 1492.0, tracker.Get(20), 0.1)
}

func TestPreviewDeltaDoesNotMutate(t *testing.T) {
	tracker := NewTracker(DefaultConfig())
	tracker.Set(1, 1600.0)
	tracker.Set(2, 1500.0)

	delta := tracker.PreviewDelta(1, 2, false)

	assert.Less(t, delta, 0.0)
	assert.Equal(t, 1600.0, tracker.Get(1))
	assert.Equal(t, 1500.0, tracker.Get(2))
}

func TestApplyRegression(t *testing.T) {
	tracker := NewTracker(DefaultConfig())
	tracker.Set(1, 1700.0)
	tracker.Set(2, 1300.0)

	tracker.ApplyRegression()

	assert.InDelta(t, 0.7*1700.0+0.3*1500.0, tracker.Get(1), 1e-9)
	assert.InDelta(t, 0.7*1300.0+0.3*1500.0, tracker.Get(2), 1e-9)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	tracker := NewTracker(DefaultConfig())
	tracker.Set(1, 1620.25)
	tracker.Set(2, 1480.75)

	snap := tracker.Snapshot()

	// Mutating the snapshot must not touch the tracker.
	snap[1] = 0
	assert.Equal(t, 1620.25, tracker.Get(1))

	restored := NewTracker(DefaultConfig())
	restored.Restore(map[int]float64{1: 1620.25, 2: 1480.75})

	assert.Equal(t, tracker.Snapshot(), restored.Snapshot())
}
