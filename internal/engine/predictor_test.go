package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/courtside/internal/classifier"
	"github.com/yourusername/courtside/internal/datasource"
	"github.com/yourusername/courtside/internal/models"
	"github.com/yourusername/courtside/internal/rating"
	"github.com/yourusername/courtside/internal/state"
)

// fakeOdds serves canned moneyline quotes and can fail on demand.
type fakeOdds struct {
	quotes    map[datasource.Matchup]models.MoneylineQuote
	err       error
	remaining int
	used      int
}

func (f *fakeOdds) FetchMoneylines(context.Context) (map[datasource.Matchup]models.MoneylineQuote, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.quotes, nil
}

func (f *fakeOdds) Name() string    { return "fakeodds" }
func (f *fakeOdds) IsEnabled() bool { return true }

func (f *fakeOdds) Usage() (remaining, used int, ok bool) {
	return f.remaining, f.used, f.remaining > 0 || f.used > 0
}

func scheduledOn(date string, homeID, awayID int) models.Game {
	return models.Game{
		GameID:     fmt.Sprintf("%s-%d-%d", date, homeID, awayID),
		GameDate:   date,
		HomeTeam:   fmt.Sprintf("Team %d", homeID),
		AwayTeam:   fmt.Sprintf("Team %d", awayID),
		Status:     "Scheduled",
		HomeTeamID: homeID,
		AwayTeamID: awayID,
	}
}

// newClassifierServer serves a fixed batch response and counts calls.
func newClassifierServer(t *testing.T, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict/batch", r.URL.Path)
		calls++
		fmt.Fprint(w, body)
	}))
	return server, &calls
}

func newSlateClient(url string) *classifier.CachedClient {
	return classifier.NewCachedClient(classifier.Config{
		URL:             url,
		TimeoutSeconds:  5,
		ModelVersion:    "v3",
		CacheTTLSeconds: 60,
		CacheMaxSize:    64,
	}, quietBase())
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		prob float64
		want string
	}{
		{0.80, TierHeavyFavorite},
		{0.75, TierHeavyFavorite},
		{0.7499, TierModerateFavorite},
		{0.65, TierModerateFavorite},
		{0.60, TierLeanFavorite},
		{0.55, TierLeanFavorite},
		{0.50, TierTossUp},
		{0.45, TierTossUp},
		{0.40, TierLeanUnderdog},
		{0.35, TierLeanUnderdog},
		{0.30, TierStrongUnderdog},
		{0.10, TierStrongUnderdog},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.prob), "prob %.4f", tt.prob)
	}
}

func TestMarketAgreement(t *testing.T) {
	tests := []struct {
		name       string
		probHome   float64
		marketHome float64
		want       string
	}{
		{name: "no line", probHome: 0.62, marketHome: 0.5, want: "no_market"},
		{name: "market inside dead zone", probHome: 0.62, marketHome: 0.495, want: "no_market"},
		{name: "both favor home", probHome: 0.62, marketHome: 0.58, want: "with_market"},
		{name: "both favor away", probHome: 0.40, marketHome: 0.42, want: "with_market"},
		{name: "model against market", probHome: 0.62, marketHome: 0.40, want: "against_market"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, marketAgreement(tt.probHome, tt.marketHome))
		})
	}
}

func TestFilterSlate(t *testing.T) {
	games := []models.Game{
		finalOn("2024-01-15", 1, 2, 110, 100),
		scheduledOn("2024-01-15", 3, 4),
		{GameDate: "2024-01-15", Status: "In Progress", HomeTeamID: 5, AwayTeamID: 6},
	}

	slate := filterSlate(games, false)
	require.Len(t, slate, 1)
	assert.Equal(t, 3, slate[0].HomeTeamID)

	slate = filterSlate(games, true)
	require.Len(t, slate, 2)
}

func TestSlatePredictorPredict(t *testing.T) {
	store := state.NewStore(t.TempDir())

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-01-15": {
			scheduledOn("2024-01-15", 1, 2),
			scheduledOn("2024-01-15", 3, 4),
			finalOn("2024-01-15", 5, 6, 101, 99),
		},
	}}

	server, calls := newClassifierServer(t, `{
		"predictions": [
			{"home_win_probability": 0.72},
			{"home_win_probability": 0.31}
		],
		"model_version": "v3"
	}`)
	defer server.Close()

	homeLine, awayLine := -150.0, 130.0
	odds := &fakeOdds{
		quotes: map[datasource.Matchup]models.MoneylineQuote{
			{HomeID: 1, AwayID: 2}: {
				GameDate:  "2024-01-15",
				HomeTeam:  "Team 1",
				AwayTeam:  "Team 2",
				HomeLine:  &homeLine,
				AwayLine:  &awayLine,
				Bookmaker: "draftkings",
			},
		},
		remaining: 480,
		used:      20,
	}

	p := NewSlatePredictor(store, scores, odds, nil, newSlateClient(server.URL), rating.DefaultConfig(), quietBase())

	report, err := p.Predict(context.Background(), PredictConfig{Date: mustDate(t, "2024-01-15")})
	require.NoError(t, err)

	assert.Equal(t, "2024-01-15", report.GameDate)
	assert.Equal(t, 2, report.GamesFound)
	assert.Zero(t, report.Unmapped)
	assert.Equal(t, "v3", report.ModelVersion)
	assert.Equal(t, 1, *calls)
	require.Len(t, report.Predictions, 2)

	first := report.Predictions[0]
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, "Team 1", first.HomeTeam)
	assert.InDelta(t, 0.72, first.ProbHome, 1e-9)
	assert.InDelta(t, 0.28, first.ProbAway, 1e-9)
	assert.Equal(t, TierModerateFavorite, first.Tier)
	assert.Equal(t, "Team 1", first.PredictedWinner)
	assert.InDelta(t, 1500.0, first.EloHome, 1e-9)
	assert.InDelta(t, 0.6, first.MarketProbHome, 1e-9)
	require.NotNil(t, first.HomeLine)
	assert.Equal(t, -150.0, *first.HomeLine)
	assert.Equal(t, "draftkings", first.Bookmaker)
	assert.GreaterOrEqual(t, first.ConfidenceScore, 0)
	assert.LessOrEqual(t, first.ConfidenceScore, 100)
	assert.NotEmpty(t, first.Qualifier)
	assert.False(t, first.PredictedAt.IsZero())

	second := report.Predictions[1]
	assert.Equal(t, TierStrongUnderdog, second.Tier)
	assert.Equal(t, "Team 4", second.PredictedWinner)
	assert.Nil(t, second.HomeLine)
	assert.Equal(t, 0.5, second.MarketProbHome)
}

func TestSlatePredictorNoGames(t *testing.T) {
	store := state.NewStore(t.TempDir())

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-01-15": {finalOn("2024-01-15", 1, 2, 110, 100)},
	}}

	server, calls := newClassifierServer(t, `{}`)
	defer server.Close()

	p := NewSlatePredictor(store, scores, nil, nil, newSlateClient(server.URL), rating.DefaultConfig(), quietBase())

	report, err := p.Predict(context.Background(), PredictConfig{Date: mustDate(t, "2024-01-15")})
	require.NoError(t, err)

	assert.Zero(t, report.GamesFound)
	assert.Empty(t, report.Predictions)
	assert.Zero(t, *calls)
}

func TestSlatePredictorUnmappedTeams(t *testing.T) {
	store := state.NewStore(t.TempDir())

	unmapped := scheduledOn("2024-01-15", 0, 2)
	unmapped.HomeTeam = "Unknown Club"

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-01-15": {scheduledOn("2024-01-15", 1, 2), unmapped},
	}}

	server, _ := newClassifierServer(t, `{
		"predictions": [{"home_win_probability": 0.55}],
		"model_version": "v3"
	}`)
	defer server.Close()

	p := NewSlatePredictor(store, scores, nil, nil, newSlateClient(server.URL), rating.DefaultConfig(), quietBase())

	report, err := p.Predict(context.Background(), PredictConfig{Date: mustDate(t, "2024-01-15")})
	require.NoError(t, err)

	assert.Equal(t, 2, report.GamesFound)
	assert.Equal(t, 1, report.Unmapped)
	require.Len(t, report.Predictions, 1)
	assert.Equal(t, "Team 1", report.Predictions[0].HomeTeam)
}

func TestSlatePredictorOddsFailureDegrades(t *testing.T) {
	store := state.NewStore(t.TempDir())

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-01-15": {scheduledOn("2024-01-15", 1, 2)},
	}}

	server, _ := newClassifierServer(t, `{
		"predictions": [{"home_win_probability": 0.61}],
		"model_version": "v3"
	}`)
	defer server.Close()

	odds := &fakeOdds{err: errors.New("quota exhausted")}

	p := NewSlatePredictor(store, scores, odds, nil, newSlateClient(server.URL), rating.DefaultConfig(), quietBase())

	report, err := p.Predict(context.Background(), PredictConfig{Date: mustDate(t, "2024-01-15")})
	require.NoError(t, err)

	require.Len(t, report.Predictions, 1)
	pred := report.Predictions[0]
	assert.Nil(t, pred.HomeLine)
	assert.Equal(t, 0.5, pred.MarketProbHome)
}

func TestSlatePredictorClassifierError(t *testing.T) {
	store := state.NewStore(t.TempDir())

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-01-15": {scheduledOn("2024-01-15", 1, 2)},
	}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewSlatePredictor(store, scores, nil, nil, newSlateClient(server.URL), rating.DefaultConfig(), quietBase())

	_, err := p.Predict(context.Background(), PredictConfig{Date: mustDate(t, "2024-01-15")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score slate")
}

func TestSlatePredictorCacheServesRepeatSlate(t *testing.T) {
	store := state.NewStore(t.TempDir())

	scores := &fakeScoreboard{games: map[string][]models.Game{
		"2024-01-15": {
			scheduledOn("2024-01-15", 1, 2),
			scheduledOn("2024-01-15", 3, 4),
		},
	}}

	server, calls := newClassifierServer(t, `{
		"predictions": [
			{"home_win_probability": 0.72},
			{"home_win_probability": 0.31}
		],
		"model_version": "v3"
	}`)
	defer server.Close()

	p := NewSlatePredictor(store, scores, nil, nil, newSlateClient(server.URL), rating.DefaultConfig(), quietBase())

	first, err := p.Predict(context.Background(), PredictConfig{Date: mustDate(t, "2024-01-15")})
	require.NoError(t, err)
	assert.Zero(t, first.CacheHits)
	assert.Equal(t, 1, *calls)

	second, err := p.Predict(context.Background(), PredictConfig{Date: mustDate(t, "2024-01-15")})
	require.NoError(t, err)
	assert.Equal(t, 2, second.CacheHits)
	assert.Equal(t, 1, *calls)
	require.Len(t, second.Predictions, 2)
	assert.InDelta(t, 0.72, second.Predictions[0].ProbHome, 1e-9)
}
