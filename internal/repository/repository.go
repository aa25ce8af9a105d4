package repository

import (
	"fmt"

	"github.com/yourusername/race-dynamics/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Race        RaceRepository
	Entry       EntryRepository
	Performance PerformanceRepository
	Course      CourseRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Race:        NewPostgresRaceRepository(db),
		Entry:       NewPostgresEntryRepository(db),
		Performance: NewPostgresPerformanceRepository(db),
		Course:      NewPostgresCourseRepository(db),
	}, nil
}
