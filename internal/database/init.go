package database

import (
	"context"
	"fmt"

	"github.com/yourusername/courtside/internal/config"
)

// archiveSchema holds one DDL statement per entry because the extended
// query protocol rejects multi-statement strings.
var archiveSchema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id UUID PRIMARY KEY,
		game_id TEXT NOT NULL DEFAULT '',
		game_date TEXT NOT NULL,
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		home_score INTEGER NOT NULL,
		away_score INTEGER NOT NULL,
		home_team_id INTEGER NOT NULL,
		away_team_id INTEGER NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_games_game_date ON games (game_date)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_games_matchup ON games (game_date, home_team_id, away_team_id)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		id UUID PRIMARY KEY,
		game_date TEXT NOT NULL,
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		prob_home DOUBLE PRECISION NOT NULL,
		prob_away DOUBLE PRECISION NOT NULL,
		predicted_winner TEXT NOT NULL,
		tier TEXT NOT NULL,
		confidence_score INTEGER NOT NULL,
		qualifier TEXT NOT NULL,
		confidence_factors JSONB,
		market_prob_home DOUBLE PRECISION NOT NULL,
		market_prob_away DOUBLE PRECISION NOT NULL,
		home_line DOUBLE PRECISION,
		away_line DOUBLE PRECISION,
		home_decimal_odds NUMERIC(10,3),
		away_decimal_odds NUMERIC(10,3),
		bookmaker TEXT NOT NULL DEFAULT '',
		elo_home DOUBLE PRECISION NOT NULL,
		elo_away DOUBLE PRECISION NOT NULL,
		home_injury_note TEXT NOT NULL DEFAULT '',
		away_injury_note TEXT NOT NULL DEFAULT '',
		predicted_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_game_date ON predictions (game_date)`,
	`CREATE INDEX IF NOT EXISTS idx_predictions_tier ON predictions (tier)`,
}

// Initialize creates the archive connection pool and ensures the schema
// is in place. Safe to run on every startup.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the archive tables and indexes when missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, ddl := range archiveSchema {
		if _, err := db.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("ensure archive schema: %w", err)
		}
	}
	return nil
}
