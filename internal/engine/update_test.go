package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/rating"
	"github.com/yourusername/courtside/internal/state"
)

// fakeScoreboard serves canned games per date and can fail on demand.
type fakeScoreboard struct {
	games   map[string][]models.Game
	failOn  map[string]error
	fetched []string
}

func (f *fakeScoreboard) FetchGames(_ context.Context, date time.Time) ([]models.Game, error) {
	key := date.Format(models.GameDateLayout)
	f.fetched = append(f.fetched, key)
	if err, ok := f.failOn[key]; ok {
		return nil, err
	}
	return f.games[key], nil
}

func (f *fakeScoreboard) Name() string    { return "fake" }
func (f *fakeScoreboard) IsEnabled() bool { return true }

func quietBase() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func finalOn(date string, homeID, awayID, homeScore, awayScore int) models.Game {
	return models.Game{
		GameID:     fmt.Sprintf("%s-%d-%d", date, homeID, awayID),
		GameDate:   date,
		HomeTeam:   fmt.Sprintf("Team %d", homeID),
		AwayTeam:   fmt.Sprintf("Team %d", awayID),
		HomeScore:  homeScore,
		AwayScore:  awayScore,
		Status:     "Final",
		HomeTeamID: homeID,
		AwayTeamID: awayID,
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.GameDateLayout, s)
	require.NoError(t, err)
	return d
}

func TestUpdatePipelineRun(t *testing.T) {
	store := state.NewStore(t.TempDir())
	require.NoError(t, store.SetLastProcessedDate(mustDate(t, "2024-01-12")))

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-01-13": {finalOn("2024-01-13", 1, 2, 110, 100)},
		"2024-01-14": {
			finalOn("2024-01-14", 3, 4, 98, 120),
			{GameDate: "2024-01-14", HomeTeam: "Team 5", AwayTeam: "Team 6", Status: "Scheduled", HomeTeamID: 5, AwayTeamID: 6},
		},
	}}

	p := NewUpdatePipeline(store, scores, rating.DefaultConfig(), quietBase())
	report, err := p.Run(context.Background(), UpdateConfig{Date: mustDate(t, "2024-01-14")})
	require.NoError(t, err)

	assert.Equal(t, 2, report.DatesProcessed)
	assert.Equal(t, 2, report.GamesProcessed)
	assert.Equal(t, 1, report.GamesSkipped)
	assert.Equal(t, 3, report.GamesSeen)
	assert.Equal(t, 2, report.LifetimeGames)
	assert.Equal(t, []string{"2024-01-13", "2024-01-14"}, scores.fetched)
	assert.False(t, report.UpToDate)

	last, ok := store.LastProcessedDate()
	require.True(t, ok)
	assert.Equal(t, "2024-01-14", last.Format(models.GameDateLayout))
	assert.True(t, store.Exists())

	ratings, _, err := store.Load(rating.DefaultConfig())
	require.NoError(t, err)
	assert.Greater(t, ratings.Get(1), 1500.0)
	assert.Greater(t, ratings.Get(4), 1500.0)
	assert.Less(t, ratings.Get(3), 1500.0)
}

func TestUpdatePipelineUpToDate(t *testing.T) {
	store := state.NewStore(t.TempDir())
	require.NoError(t, store.SetLastProcessedDate(mustDate(t, "2024-01-14")))

	scores := &fakeScoreboard{}
	p := NewUpdatePipeline(store, scores, rating.DefaultConfig(), quietBase())

	report, err := p.Run(context.Background(), UpdateConfig{Date: mustDate(t, "2024-01-14")})
	require.NoError(t, err)

	assert.True(t, report.UpToDate)
	assert.Zero(t, report.DatesProcessed)
	assert.Empty(t, scores.fetched)
}

func TestUpdatePipelineDryRun(t *testing.T) {
	store := state.NewStore(t.TempDir())

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-01-14": {finalOn("2024-01-14", 1, 2, 110, 100)},
	}}

	p := NewUpdatePipeline(store, scores, rating.DefaultConfig(), quietBase())
	report, err := p.Run(context.Background(), UpdateConfig{Date: mustDate(t, "2024-01-14"), DryRun: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	require.Len(t, report.Previews, 1)
	assert.True(t, report.Previews[0].WouldProcess)
	assert.Equal(t, "home", report.Previews[0].Winner)

	// Nothing persisted
	assert.False(t, store.Exists())
	_, ok := store.LastProcessedDate()
	assert.False(t, ok)
}

func TestUpdatePipelineFeedFailureSavesProgress(t *testing.T) {
	store := state.NewStore(t.TempDir())
	require.NoError(t, store.SetLastProcessedDate(mustDate(t, "2024-01-12")))

	scores := &fakeScoreboard{
		games: map[string][]models.Game{
			"2024-01-13": {finalOn("2024-01-13", 1, 2, 110, 100)},
		},
		failOn: map[string]error{
			"2024-01-14": errors.New("scoreboard unavailable"),
		},
	}

	p := NewUpdatePipeline(store, scores, rating.DefaultConfig(), quietBase())
	report, err := p.Run(context.Background(), UpdateConfig{Date: mustDate(t, "2024-01-15")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2024-01-14")

	// The date before the failure is saved, so the next run resumes there.
	assert.Equal(t, 1, report.GamesProcessed)
	last, ok := store.LastProcessedDate()
	require.True(t, ok)
	assert.Equal(t, "2024-01-13", last.Format(models.GameDateLayout))
}

func TestUpdatePipelineForceReprocesses(t *testing.T) {
	store := state.NewStore(t.TempDir())

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-01-14": {finalOn("2024-01-14", 1, 2, 110, 100)},
	}}

	p := NewUpdatePipeline(store, scores, rating.DefaultConfig(), quietBase())
	_, err := p.Run(context.Background(), UpdateConfig{Date: mustDate(t, "2024-01-14")})
	require.NoError(t, err)

	ratings, _, err := store.Load(rating.DefaultConfig())
	require.NoError(t, err)
	afterFirst := ratings.Get(1)

	// Without force the date is already recorded as processed.
	report, err := p.Run(context.Background(), UpdateConfig{Date: mustDate(t, "2024-01-14")})
	require.NoError(t, err)
	assert.True(t, report.UpToDate)

	report, err = p.Run(context.Background(), UpdateConfig{Date: mustDate(t, "2024-01-14"), Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.GamesProcessed)

	ratings, _, err = store.Load(rating.DefaultConfig())
	require.NoError(t, err)
	assert.Greater(t, ratings.Get(1), afterFirst)
}

func TestUpdatePipelineCatchUpCap(t *testing.T) {
	store := state.NewStore(t.TempDir())
	require.NoError(t, store.SetLastProcessedDate(mustDate(t, "2024-01-01")))

	scores := &fakeScoreboard{games: map[string][]models.Game{}}
	p := NewUpdatePipeline(store, scores, rating.DefaultConfig(), quietBase())

	report, err := p.Run(context.Background(), UpdateConfig{
		Date:           mustDate(t, "2024-01-20"),
		MaxCatchUpDays: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.DatesProcessed)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04"}, scores.fetched)

	last, ok := store.LastProcessedDate()
	require.True(t, ok)
	assert.Equal(t, "2024-01-04", last.Format(models.GameDateLayout))
}

func TestRunRollover(t *testing.T) {
	store := state.NewStore(t.TempDir())

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-06-01": {finalOn("2024-06-01", 1, 2, 110, 100)},
	}}

	p := NewUpdatePipeline(store, scores, rating.DefaultConfig(), quietBase())
	_, err := p.Run(context.Background(), UpdateConfig{Date: mustDate(t, "2024-06-01")})
	require.NoError(t, err)

	ratings, _, err := store.Load(rating.DefaultConfig())
	require.NoError(t, err)
	before := ratings.Get(1)
	require.Greater(t, before, 1500.0)

	report, err := p.RunRollover("2024-25")
	require.NoError(t, err)
	assert.Equal(t, "2024-25", report.Season)
	assert.Equal(t, 2, report.TeamsRegressed)
	assert.Equal(t, 0.7, report.KeepRatio)

	ratings, _, err = store.Load(rating.DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0.7*before+0.3*1500.0, ratings.Get(1), 1e-9)
}

func TestRestoreBackup(t *testing.T) {
	store := state.NewStore(t.TempDir())

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-01-14": {finalOn("2024-01-14", 1, 2, 110, 100)},
		"2024-01-15": {finalOn("2024-01-15", 1, 2, 90, 120)},
	}}

	p := NewUpdatePipeline(store, scores, rating.DefaultConfig(), quietBase())

	// No backups yet
	restored, err := p.RestoreBackup()
	require.NoError(t, err)
	assert.False(t, restored)

	_, err = p.Run(context.Background(), UpdateConfig{Date: mustDate(t, "2024-01-14")})
	require.NoError(t, err)

	ratings, _, err := store.Load(rating.DefaultConfig())
	require.NoError(t, err)
	afterFirst := ratings.Get(1)

	_, err = p.Run(context.Background(), UpdateConfig{Date: mustDate(t, "2024-01-15")})
	require.NoError(t, err)

	restored, err = p.RestoreBackup()
	require.NoError(t, err)
	require.True(t, restored)

	ratings, _, err = store.Load(rating.DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, afterFirst, ratings.Get(1), 1e-9)
}

func TestRatingSpread(t *testing.T) {
	ratings := rating.NewTracker(rating.DefaultConfig())
	assert.Equal(t, 0.0, ratingSpread(ratings))

	ratings.Set(1, 1580)
	ratings.Set(2, 1470)
	ratings.Set(3, 1510)
	assert.InDelta(t, 110.0, ratingSpread(ratings), 1e-9)
}
