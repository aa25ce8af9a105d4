package models

import (
	"time"

	"github.com/google/uuid"
)

// PastPerformance is one historical run of a runner
type PastPerformance struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	RunnerID            uuid.UUID `db:"runner_id" json:"runner_id"`
	RaceDate            time.Time `db:"race_date" json:"race_date"`
	Venue               string    `db:"venue" json:"venue"`
	Distance            int       `db:"distance" json:"distance"`
	Surface             string    `db:"surface" json:"surface"`
	ClassLabel          string    `db:"class_label" json:"class_label"`
	FinishPosition      *int      `db:"finish_position" json:"finish_position"` // nil when the runner did not finish
	FrontSectionTime    *float64  `db:"front_section_time" json:"front_section_time"`
	LateAbilityIndex    *float64  `db:"late_ability_index" json:"late_ability_index"`
	EarlyCornerPosition *float64  `db:"early_corner_position" json:"early_corner_position"`
	PotentialIndex      *float64  `db:"potential_index" json:"potential_index"`
	ReboundIndex        *float64  `db:"rebound_index" json:"rebound_index"`
	TimeDeficit         *float64  `db:"time_deficit" json:"time_deficit"` // seconds behind the winner
}

// Finished reports whether the run produced a valid finishing position
func (p *PastPerformance) Finished() bool {
	return p.FinishPosition != nil && *p.FinishPosition > 0
}

// PerformanceQuery narrows a historical record lookup
type PerformanceQuery struct {
	RunnerID    uuid.UUID
	Before      time.Time
	MinDistance int // zero disables the band
	MaxDistance int
	Limit       int
}
