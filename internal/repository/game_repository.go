package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/courtside/internal/database"
	"github.com/yourusername/courtside/internal/models"
)

const errScanGame = "failed to scan game: %w"

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game archive repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// Insert archives a single processed game. Re-inserting the same date and
// matchup is a no-op, so force reruns stay idempotent.
func (r *PostgresGameRepository) Insert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, game_id, game_date, home_team, away_team, home_score, away_score, home_team_id, away_team_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_date, home_team_id, away_team_id) DO NOTHING
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		uuid.New(), game.GameID, game.GameDate, game.HomeTeam, game.AwayTeam,
		game.HomeScore, game.AwayScore, game.HomeTeamID, game.AwayTeamID, game.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to archive game: %w", err)
	}

	return nil
}

// InsertBatch archives multiple games using high-performance batch insert.
// COPY cannot skip conflicting rows, so callers clear a date before
// re-archiving it.
func (r *PostgresGameRepository) InsertBatch(ctx context.Context, games []*models.Game) error {
	if len(games) == 0 {
		return nil
	}

	columns := []string{"id", "game_id", "game_date", "home_team", "away_team", "home_score", "away_score", "home_team_id", "away_team_id", "status"}

	copyFromSource := make([][]interface{}, len(games))
	for i, g := range games {
		copyFromSource[i] = []interface{}{
			uuid.New(), g.GameID, g.GameDate, g.HomeTeam, g.AwayTeam,
			g.HomeScore, g.AwayScore, g.HomeTeamID, g.AwayTeamID, g.Status,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"games"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch archive games: %w", err)
	}

	if count != int64(len(games)) {
		return fmt.Errorf("archived %d rows, expected %d", count, len(games))
	}

	return nil
}

// GetByDate retrieves archived games for a single date
func (r *PostgresGameRepository) GetByDate(ctx context.Context, gameDate string) ([]*models.Game, error) {
	query := `
		SELECT game_id, game_date, home_team, away_team, home_score, away_score, home_team_id, away_team_id, status
		FROM games
		WHERE game_date = $1
		ORDER BY home_team_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query games by date: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game := &models.Game{}
		err := rows.Scan(
			&game.GameID, &game.GameDate, &game.HomeTeam, &game.AwayTeam,
			&game.HomeScore, &game.AwayScore, &game.HomeTeamID, &game.AwayTeamID, &game.Status,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// DeleteByDate removes archived games for one date and reports how many
// rows went away. Called before re-archiving a force-reprocessed date.
func (r *PostgresGameRepository) DeleteByDate(ctx context.Context, gameDate string) (int64, error) {
	commandTag, err := r.db.GetPool().Exec(ctx, "DELETE FROM games WHERE game_date = $1", gameDate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete games by date: %w", err)
	}

	return commandTag.RowsAffected(), nil
}

// Count returns the total number of archived games
func (r *PostgresGameRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM games").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}

	return count, nil
}
