package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/race-dynamics/internal/database"
	"github.com/yourusername/race-dynamics/internal/models"
)

const (
	errScanRace = "failed to scan race: %w"
	raceColumns = `id, race_date, venue, race_number, race_name, distance, surface, grade, status, created_at, updated_at`
)

// PostgresRaceRepository implements RaceRepository for PostgreSQL
type PostgresRaceRepository struct {
	db *database.DB
}

// NewPostgresRaceRepository creates a new race repository
func NewPostgresRaceRepository(db *database.DB) RaceRepository {
	return &PostgresRaceRepository{db: db}
}

// Create inserts a new race
func (r *PostgresRaceRepository) Create(ctx context.Context, race *models.Race) error {
	query := `
		INSERT INTO races (id, race_date, venue, race_number, race_name, distance, surface, grade, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		race.ID, race.RaceDate, strings.ToUpper(race.Venue), race.RaceNumber, race.RaceName,
		race.Distance, race.Surface, race.Grade, race.Status,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to create race: %w", err)
	}

	return nil
}

// GetByID retrieves a race by ID
func (r *PostgresRaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByKey retrieves a race by date, venue and race number
func (r *PostgresRaceRepository) GetByKey(ctx context.Context, key models.RaceKey) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE race_date = $1 AND venue = $2 AND race_number = $3`
	return r.getOne(ctx, query, key.Date, strings.ToUpper(key.Venue), key.RaceNumber)
}

// GetByDate retrieves every race run on a day
func (r *PostgresRaceRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE race_date = $1 ORDER BY venue, race_number`
	return r.getMany(ctx, query, date)
}

// GetUpcoming retrieves scheduled races between two dates inclusive
func (r *PostgresRaceRepository) GetUpcoming(ctx context.Context, from, to time.Time) ([]*models.Race, error) {
	query := `
		SELECT ` + raceColumns + `
		FROM races
		WHERE status = 'scheduled' AND race_date >= $1 AND race_date <= $2
		ORDER BY race_date, venue, race_number
	`
	return r.getMany(ctx, query, from, to)
}

// UpdateStatus updates the lifecycle status of a race
func (r *PostgresRaceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE races SET status = $2, updated_at = NOW() WHERE id = $1`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update race: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *PostgresRaceRepository) getOne(ctx context.Context, query string, args ...interface{}) (*models.Race, error) {
	race, err := scanRace(r.db.GetPool().QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", err)
	}
	return race, nil
}

func (r *PostgresRaceRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]*models.Race, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query races: %w", err)
	}
	defer rows.Close()

	var races []*models.Race
	for rows.Next() {
		race, err := scanRace(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanRace, err)
		}
		races = append(races, race)
	}

	return races, rows.Err()
}

func scanRace(row pgx.Row) (*models.Race, error) {
	race := &models.Race{}
	err := row.Scan(
		&race.ID, &race.RaceDate, &race.Venue, &race.RaceNumber, &race.RaceName,
		&race.Distance, &race.Surface, &race.Grade, &race.Status, &race.CreatedAt, &race.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return race, nil
}
