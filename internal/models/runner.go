package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry represents a runner declared for a race
type Entry struct {
	ID           uuid.UUID `db:"id" json:"id" validate:"required"`
	RaceID       uuid.UUID `db:"race_id" json:"race_id" validate:"required"`
	RunnerID     uuid.UUID `db:"runner_id" json:"runner_id" validate:"required"`
	RunnerNumber int       `db:"runner_number" json:"runner_number" validate:"required,gt=0,lte=28"`
	PostNumber   int       `db:"post_number" json:"post_number" validate:"required,gt=0,lte=28"`
	Name         string    `db:"name" json:"name" validate:"required"`
	Weight       *float64  `db:"weight" json:"weight"`
	RunningStyle string    `db:"running_style" json:"running_style" validate:"required"`
	Scratched    bool      `db:"scratched" json:"scratched"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// GetWeight returns the carried weight or 0 if unknown
func (e *Entry) GetWeight() float64 {
	if e.Weight == nil {
		return 0
	}
	return *e.Weight
}
