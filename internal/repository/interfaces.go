package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/race-dynamics/internal/models"
)

// RaceRepository defines the interface for race data access
type RaceRepository interface {
	Create(ctx context.Context, race *models.Race) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error)
	GetByKey(ctx context.Context, key models.RaceKey) (*models.Race, error)
	GetByDate(ctx context.Context, date time.Time) ([]*models.Race, error)
	GetUpcoming(ctx context.Context, from, to time.Time) ([]*models.Race, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// EntryRepository defines the interface for race entry data access
type EntryRepository interface {
	Create(ctx context.Context, entry *models.Entry) error
	GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.Entry, error)
	SetScratched(ctx context.Context, id uuid.UUID, scratched bool) error
}

// PerformanceRepository defines the interface for historical record access
type PerformanceRepository interface {
	InsertBatch(ctx context.Context, records []*models.PastPerformance) error
	GetByRunner(ctx context.Context, q models.PerformanceQuery) ([]*models.PastPerformance, error)
}

// CourseRepository defines the interface for course characteristics access
type CourseRepository interface {
	Upsert(ctx context.Context, course *models.CourseProfile) error
	Get(ctx context.Context, key models.CourseKey) (*models.CourseProfile, error)
}
