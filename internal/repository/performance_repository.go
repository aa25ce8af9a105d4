package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/race-dynamics/internal/database"
	"github.com/yourusername/race-dynamics/internal/models"
)

var performanceColumns = []string{
	"id", "runner_id", "race_date", "venue", "distance", "surface", "class_label",
	"finish_position", "front_section_time", "late_ability_index", "early_corner_position",
	"potential_index", "rebound_index", "time_deficit",
}

// PostgresPerformanceRepository implements PerformanceRepository for PostgreSQL
type PostgresPerformanceRepository struct {
	db *database.DB
}

// NewPostgresPerformanceRepository creates a new performance repository
func NewPostgresPerformanceRepository(db *database.DB) PerformanceRepository {
	return &PostgresPerformanceRepository{db: db}
}

// InsertBatch inserts historical records using COPY
func (r *PostgresPerformanceRepository) InsertBatch(ctx context.Context, records []*models.PastPerformance) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(records))
	for i, p := range records {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		rows[i] = []interface{}{
			p.ID, p.RunnerID, p.RaceDate, strings.ToUpper(p.Venue), p.Distance, p.Surface, p.ClassLabel,
			p.FinishPosition, p.FrontSectionTime, p.LateAbilityIndex, p.EarlyCornerPosition,
			p.PotentialIndex, p.ReboundIndex, p.TimeDeficit,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"past_performances"}, performanceColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("failed to batch insert past performances: %w", err)
	}

	if count != int64(len(records)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(records))
	}

	return nil
}

// GetByRunner retrieves a runner's records newest first
func (r *PostgresPerformanceRepository) GetByRunner(ctx context.Context, q models.PerformanceQuery) ([]*models.PastPerformance, error) {
	query, args := buildPerformanceQuery(q)

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query past performances: %w", err)
	}
	defer rows.Close()

	var records []*models.PastPerformance
	for rows.Next() {
		p := &models.PastPerformance{}
		err := rows.Scan(
			&p.ID, &p.RunnerID, &p.RaceDate, &p.Venue, &p.Distance, &p.Surface, &p.ClassLabel,
			&p.FinishPosition, &p.FrontSectionTime, &p.LateAbilityIndex, &p.EarlyCornerPosition,
			&p.PotentialIndex, &p.ReboundIndex, &p.TimeDeficit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan past performance: %w", err)
		}
		records = append(records, p)
	}

	return records, rows.Err()
}

// buildPerformanceQuery renders the runner history query. Records on or
// after Before are excluded so a race never sees its own result.
func buildPerformanceQuery(q models.PerformanceQuery) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(performanceColumns, ", "))
	b.WriteString(" FROM past_performances WHERE runner_id = $1")
	args := []interface{}{q.RunnerID}

	if !q.Before.IsZero() {
		args = append(args, q.Before)
		fmt.Fprintf(&b, " AND race_date < $%d", len(args))
	}
	if q.MinDistance > 0 {
		args = append(args, q.MinDistance)
		fmt.Fprintf(&b, " AND distance >= $%d", len(args))
	}
	if q.MaxDistance > 0 {
		args = append(args, q.MaxDistance)
		fmt.Fprintf(&b, " AND distance <= $%d", len(args))
	}

	b.WriteString(" ORDER BY race_date DESC")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	return b.String(), args
}
