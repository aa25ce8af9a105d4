package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/race-dynamics/internal/database"
	"github.com/yourusername/race-dynamics/internal/models"
)

// PostgresEntryRepository implements EntryRepository for PostgreSQL
type PostgresEntryRepository struct {
	db *database.DB
}

// NewPostgresEntryRepository creates a new entry repository
func NewPostgresEntryRepository(db *database.DB) EntryRepository {
	return &PostgresEntryRepository{db: db}
}

// Create inserts a new entry
func (r *PostgresEntryRepository) Create(ctx context.Context, entry *models.Entry) error {
	query := `
		INSERT INTO entries (id, race_id, runner_id, runner_number, post_number, name, weight, running_style, scratched)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		entry.ID, entry.RaceID, entry.RunnerID, entry.RunnerNumber, entry.PostNumber,
		entry.Name, entry.Weight, entry.RunningStyle, entry.Scratched,
	)
	if isUniqueViolation(err) {
		return models.ErrDuplicateKey
	}
	if err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}

	return nil
}

// GetByRaceID retrieves all entries for a race ordered by runner number
func (r *PostgresEntryRepository) GetByRaceID(ctx context.Context, raceID uuid.UUID) ([]*models.Entry, error) {
	query := `
		SELECT id, race_id, runner_id, runner_number, post_number, name, weight,
		       running_style, scratched, created_at, updated_at
		FROM entries
		WHERE race_id = $1
		ORDER BY runner_number ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, raceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries by race: %w", err)
	}
	defer rows.Close()

	var entries []*models.Entry
	for rows.Next() {
		e := &models.Entry{}
		err := rows.Scan(
			&e.ID, &e.RaceID, &e.RunnerID, &e.RunnerNumber, &e.PostNumber, &e.Name, &e.Weight,
			&e.RunningStyle, &e.Scratched, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// SetScratched marks an entry as withdrawn or reinstated
func (r *PostgresEntryRepository) SetScratched(ctx context.Context, id uuid.UUID, scratched bool) error {
	query := `UPDATE entries SET scratched = $2, updated_at = NOW() WHERE id = $1`

	commandTag, err := r.db.GetPool().Exec(ctx, query, id, scratched)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
