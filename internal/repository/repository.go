package repository

import (
	"fmt"

	"github.com/yourusername/courtside/internal/database"
)

// Repositories holds all archive repository implementations
type Repositories struct {
	Games       GameRepository
	Predictions PredictionRepository
}

// NewRepositories creates and returns all archive repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Games:       NewPostgresGameRepository(db),
		Predictions: NewPostgresPredictionRepository(db),
	}, nil
}
