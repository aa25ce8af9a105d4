package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/race-dynamics/internal/database"
	"github.com/yourusername/race-dynamics/internal/models"
)

// PostgresCourseRepository implements CourseRepository for PostgreSQL
type PostgresCourseRepository struct {
	db *database.DB
}

// NewPostgresCourseRepository creates a new course repository
func NewPostgresCourseRepository(db *database.DB) CourseRepository {
	return &PostgresCourseRepository{db: db}
}

// Upsert stores course characteristics, replacing any existing row
func (r *PostgresCourseRepository) Upsert(ctx context.Context, course *models.CourseProfile) error {
	query := `
		INSERT INTO course_profiles (venue, surface, distance, straight_length, gradient_position,
		                             inside_advantage, outside_advantage, standard_front_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (venue, surface, distance) DO UPDATE SET
			straight_length = EXCLUDED.straight_length,
			gradient_position = EXCLUDED.gradient_position,
			inside_advantage = EXCLUDED.inside_advantage,
			outside_advantage = EXCLUDED.outside_advantage,
			standard_front_time = EXCLUDED.standard_front_time
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		strings.ToUpper(course.Venue), strings.ToLower(course.Surface), course.Distance,
		course.StraightLength, course.GradientPosition, course.InsideAdvantage,
		course.OutsideAdvantage, course.StandardFrontTime,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert course profile: %w", err)
	}

	return nil
}

// Get retrieves course characteristics by key
func (r *PostgresCourseRepository) Get(ctx context.Context, key models.CourseKey) (*models.CourseProfile, error) {
	query := `
		SELECT venue, surface, distance, straight_length, gradient_position,
		       inside_advantage, outside_advantage, standard_front_time
		FROM course_profiles
		WHERE venue = $1 AND surface = $2 AND distance = $3
	`

	c := &models.CourseProfile{}
	err := r.db.GetPool().QueryRow(ctx, query,
		strings.ToUpper(key.Venue), strings.ToLower(key.Surface), key.Distance,
	).Scan(
		&c.Venue, &c.Surface, &c.Distance, &c.StraightLength, &c.GradientPosition,
		&c.InsideAdvantage, &c.OutsideAdvantage, &c.StandardFrontTime,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course profile: %w", err)
	}

	return c, nil
}
