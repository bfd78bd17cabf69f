package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

const errScanPrediction = "failed to scan prediction: %w"

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction archive repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Insert archives a single emitted prediction
func (r *PostgresPredictionRepository) Insert(ctx context.Context, p *models.Prediction) error {
	query := `
		INSERT INTO predictions (id, game_date, home_team, away_team, prob_home, prob_away,
			predicted_winner, tier, confidence_score, qualifier, confidence_factors,
			market_prob_home, market_prob_away, home_line, away_line,
			home_decimal_odds, away_decimal_odds, bookmaker, elo_home, elo_away,
			home_injury_note, away_injury_note, predicted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		p.ID, p.GameDate, p.HomeTeam, p.AwayTeam, p.ProbHome, p.ProbAway,
		p.PredictedWinner, p.Tier, p.ConfidenceScore, p.Qualifier, p.ConfidenceFactors,
		p.MarketProbHome, p.MarketProbAway, p.HomeLine, p.AwayLine,
		p.HomeDecimalOdds, p.AwayDecimalOdds, p.Bookmaker, p.EloHome, p.EloAway,
		p.HomeInjuryNote, p.AwayInjuryNote, p.PredictedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive prediction: %w", err)
	}

	return nil
}

// InsertBatch archives a full slate of predictions using high-performance
// batch insert
func (r *PostgresPredictionRepository) InsertBatch(ctx context.Context, predictions []*models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	columns := []string{
		"id", "game_date", "home_team", "away_team", "prob_home", "prob_away",
		"predicted_winner", "tier", "confidence_score", "qualifier", "confidence_factors",
		"market_prob_home", "market_prob_away", "home_line", "away_line",
		"home_decimal_odds", "away_decimal_odds", "bookmaker", "elo_home", "elo_away",
		"home_injury_note", "away_injury_note", "predicted_at",
	}

	copyFromSource := make([][]interface{}, len(predictions))
	for i, p := range predictions {
		copyFromSource[i] = []interface{}{
			p.ID, p.GameDate, p.HomeTeam, p.AwayTeam, p.ProbHome, p.ProbAway,
			p.PredictedWinner, p.Tier, p.ConfidenceScore, p.Qualifier, p.ConfidenceFactors,
			p.MarketProbHome, p.MarketProbAway, p.HomeLine, p.AwayLine,
			p.HomeDecimalOdds, p.AwayDecimalOdds, p.Bookmaker, p.EloHome, p.EloAway,
			p.HomeInjuryNote, p.AwayInjuryNote, p.PredictedAt,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"predictions"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch archive predictions: %w", err)
	}

	if count != int64(len(predictions)) {
		return fmt.Errorf("archived %d rows, expected %d", count, len(predictions))
	}

	return nil
}

// GetByID retrieves a single archived prediction
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error) {
	query := `
		SELECT id, game_date, home_team, away_team, prob_home, prob_away,
			predicted_winner, tier, confidence_score, qualifier, confidence_factors,
			market_prob_home, market_prob_away, home_line, away_line,
			home_decimal_odds, away_decimal_odds, bookmaker, elo_home, elo_away,
			home_injury_note, away_injury_note, predicted_at
		FROM predictions
		WHERE id = $1
	`

	p := &models.Prediction{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&p.ID, &p.GameDate, &p.HomeTeam, &p.AwayTeam, &p.ProbHome, &p.ProbAway,
		&p.PredictedWinner, &p.Tier, &p.ConfidenceScore, &p.Qualifier, &p.ConfidenceFactors,
		&p.MarketProbHome, &p.MarketProbAway, &p.HomeLine, &p.AwayLine,
		&p.HomeDecimalOdds, &p.AwayDecimalOdds, &p.Bookmaker, &p.EloHome, &p.EloAway,
		&p.HomeInjuryNote, &p.AwayInjuryNote, &p.PredictedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf(errScanPrediction, err)
	}

	return p, nil
}

// GetByDate retrieves all archived predictions for a slate date
func (r *PostgresPredictionRepository) GetByDate(ctx context.Context, gameDate string) ([]*models.Prediction, error) {
	query := `
		SELECT id, game_date, home_team, away_team, prob_home, prob_away,
			predicted_winner, tier, confidence_score, qualifier, confidence_factors,
			market_prob_home, market_prob_away, home_line, away_line,
			home_decimal_odds, away_decimal_odds, bookmaker, elo_home, elo_away,
			home_injury_note, away_injury_note, predicted_at
		FROM predictions
		WHERE game_date = $1
		ORDER BY predicted_at ASC, home_team ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by date: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p := &models.Prediction{}
		err := rows.Scan(
			&p.ID, &p.GameDate, &p.HomeTeam, &p.AwayTeam, &p.ProbHome, &p.ProbAway,
			&p.PredictedWinner, &p.Tier, &p.ConfidenceScore, &p.Qualifier, &p.ConfidenceFactors,
			&p.MarketProbHome, &p.MarketProbAway, &p.HomeLine, &p.AwayLine,
			&p.HomeDecimalOdds, &p.AwayDecimalOdds, &p.Bookmaker, &p.EloHome, &p.EloAway,
			&p.HomeInjuryNote, &p.AwayInjuryNote, &p.PredictedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanPrediction, err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// GetRecent retrieves the most recently emitted predictions
func (r *PostgresPredictionRepository) GetRecent(ctx context.Context, limit int) ([]*models.Prediction, error) {
	query := `
		SELECT id, game_date, home_team, away_team, prob_home, prob_away,
			predicted_winner, tier, confidence_score, qualifier, confidence_factors,
			market_prob_home, market_prob_away, home_line, away_line,
			home_decimal_odds, away_decimal_odds, bookmaker, elo_home, elo_away,
			home_injury_note, away_injury_note, predicted_at
		FROM predictions
		ORDER BY predicted_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		p := &models.Prediction{}
		err := rows.Scan(
			&p.ID, &p.GameDate, &p.HomeTeam, &p.AwayTeam, &p.ProbHome, &p.ProbAway,
			&p.PredictedWinner, &p.Tier, &p.ConfidenceScore, &p.Qualifier, &p.ConfidenceFactors,
			&p.MarketProbHome, &p.MarketProbAway, &p.HomeLine, &p.AwayLine,
			&p.HomeDecimalOdds, &p.AwayDecimalOdds, &p.Bookmaker, &p.EloHome, &p.EloAway,
			&p.HomeInjuryNote, &p.AwayInjuryNote, &p.PredictedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanPrediction, err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// TierCounts returns how many archived predictions landed in each
// confidence tier between two slate dates inclusive.
func (r *PostgresPredictionRepository) TierCounts(ctx context.Context, startDate, endDate string) (map[string]int64, error) {
	query := `
		SELECT tier, COUNT(*)
		FROM predictions
		WHERE game_date >= $1 AND game_date <= $2
		GROUP BY tier
	`

	rows, err := r.db.GetPool().Query(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query tier counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var tier string
		var count int64
		if err := rows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("failed to scan tier count: %w", err)
		}
		counts[tier] = count
	}

	return counts, rows.Err()
}

// Count returns the total number of archived predictions
func (r *PostgresPredictionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM predictions").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}

	return count, nil
}
