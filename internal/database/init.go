package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-dynamics/internal/config"
)

// schema holds the tables read by the prediction service. Statements are
// idempotent so Initialize can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS races (
		id           UUID PRIMARY KEY,
		race_date    DATE NOT NULL,
		venue        TEXT NOT NULL,
		race_number  INTEGER NOT NULL,
		race_name    TEXT NOT NULL DEFAULT '',
		distance     INTEGER NOT NULL,
		surface      TEXT NOT NULL,
		grade        TEXT NOT NULL DEFAULT '',
		status       TEXT NOT NULL DEFAULT 'scheduled',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (race_date, venue, race_number)
	)`,
	`CREATE TABLE IF NOT EXISTS entries (
		id             UUID PRIMARY KEY,
		race_id        UUID NOT NULL REFERENCES races(id) ON DELETE CASCADE,
		runner_id      UUID NOT NULL,
		runner_number  INTEGER NOT NULL,
		post_number    INTEGER NOT NULL,
		name           TEXT NOT NULL,
		weight         DOUBLE PRECISION,
		running_style  TEXT NOT NULL,
		scratched      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (race_id, runner_number)
	)`,
	`CREATE TABLE IF NOT EXISTS past_performances (
		id                     UUID PRIMARY KEY,
		runner_id              UUID NOT NULL,
		race_date              DATE NOT NULL,
		venue                  TEXT NOT NULL,
		distance               INTEGER NOT NULL,
		surface                TEXT NOT NULL,
		class_label            TEXT NOT NULL DEFAULT '',
		finish_position        INTEGER,
		front_section_time     DOUBLE PRECISION,
		late_ability_index     DOUBLE PRECISION,
		early_corner_position  DOUBLE PRECISION,
		potential_index        DOUBLE PRECISION,
		rebound_index          DOUBLE PRECISION,
		time_deficit           DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS idx_past_performances_runner_date
		ON past_performances (runner_id, race_date DESC)`,
	`CREATE TABLE IF NOT EXISTS course_profiles (
		venue                TEXT NOT NULL,
		surface              TEXT NOT NULL,
		distance             INTEGER NOT NULL,
		straight_length      DOUBLE PRECISION,
		gradient_position    TEXT,
		inside_advantage     DOUBLE PRECISION,
		outside_advantage    DOUBLE PRECISION,
		standard_front_time  DOUBLE PRECISION,
		PRIMARY KEY (venue, surface, distance)
	)`,
}

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
	}).Info("Database initialized")

	return db, nil
}

// EnsureSchema creates any missing tables and indexes
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
