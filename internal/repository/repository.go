package repository

import (
	"fmt"

	"github.com/yourusername/stocklab/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Bars    BarRepository
	Results ResultRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Bars:    NewPostgresBarRepository(db),
		Results: NewPostgresResultRepository(db),
	}, nil
}
