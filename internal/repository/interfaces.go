package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/courtside/internal/models"
)

// GameRepository defines the interface for archived game results
type GameRepository interface {
	Insert(ctx context.Context, game *models.Game) error
	InsertBatch(ctx context.Context, games []*models.Game) error
	GetByDate(ctx context.Context, gameDate string) ([]*models.Game, error)
	DeleteByDate(ctx context.Context, gameDate string) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// PredictionRepository defines the interface for archived predictions
type PredictionRepository interface {
	Insert(ctx context.Context, prediction *models.Prediction) error
	InsertBatch(ctx context.Context, predictions []*models.Prediction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Prediction, error)
	GetByDate(ctx context.Context, gameDate string) ([]*models.Prediction, error)
	GetRecent(ctx context.Context, limit int) ([]*models.Prediction, error)
	TierCounts(ctx context.Context, startDate, endDate string) (map[string]int64, error)
	Count(ctx context.Context) (int64, error)
}
