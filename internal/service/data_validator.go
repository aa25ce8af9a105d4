package service

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/race-dynamics/internal/dynamics"
	"github.com/yourusername/race-dynamics/internal/models"
)

// DataValidator checks race cards and historical records before they reach the engine
type DataValidator struct {
	logger *logrus.Logger
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &DataValidator{logger: logger}
}

// ValidateRace validates race data for required fields and constraints
func (v *DataValidator) ValidateRace(race *models.Race) []string {
	var errors []string

	if strings.TrimSpace(race.Venue) == "" {
		errors = append(errors, "venue is required")
	}

	if race.RaceDate.IsZero() {
		errors = append(errors, "race_date is required")
	}

	if race.RaceNumber <= 0 {
		errors = append(errors, fmt.Sprintf("race_number must be positive, got %d", race.RaceNumber))
	}

	if race.Distance < 0 {
		errors = append(errors, fmt.Sprintf("distance cannot be negative, got %d", race.Distance))
	}

	return errors
}

// ValidateEntries validates the declared field of a race. Scratched entries are ignored.
func (v *DataValidator) ValidateEntries(entries []*models.Entry) []string {
	var errors []string

	active := 0
	for _, e := range entries {
		if !e.Scratched {
			active++
		}
	}
	if active == 0 {
		return []string{"race has no declared runners"}
	}

	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if e.Scratched {
			continue
		}

		if strings.TrimSpace(e.Name) == "" {
			errors = append(errors, fmt.Sprintf("runner %d: name is required", e.RunnerNumber))
		}

		if e.RunnerNumber <= 0 {
			errors = append(errors, fmt.Sprintf("runner %q: runner_number must be positive, got %d", e.Name, e.RunnerNumber))
		} else if seen[e.RunnerNumber] {
			errors = append(errors, fmt.Sprintf("runner_number %d is declared twice", e.RunnerNumber))
		}
		seen[e.RunnerNumber] = true

		if e.PostNumber <= 0 {
			errors = append(errors, fmt.Sprintf("runner %d: post_number must be positive, got %d", e.RunnerNumber, e.PostNumber))
		}

		if e.Weight != nil && *e.Weight <= 0 {
			errors = append(errors, fmt.Sprintf("runner %d: weight must be positive", e.RunnerNumber))
		}

		if _, err := dynamics.ParseRunningStyle(e.RunningStyle); err != nil {
			errors = append(errors, fmt.Sprintf("runner %d: unknown running_style %q", e.RunnerNumber, e.RunningStyle))
		}
	}

	return errors
}

// ValidatePerformance checks one historical record. Invalid records are
// skipped by the caller rather than failing the prediction.
func (v *DataValidator) ValidatePerformance(p *models.PastPerformance) []string {
	var errors []string

	if p.RaceDate.IsZero() {
		errors = append(errors, "race_date is required")
	}

	if p.Distance <= 0 {
		errors = append(errors, fmt.Sprintf("distance must be positive, got %d", p.Distance))
	}

	figures := []struct {
		name  string
		value *float64
	}{
		{"front_section_time", p.FrontSectionTime},
		{"late_ability_index", p.LateAbilityIndex},
		{"early_corner_position", p.EarlyCornerPosition},
		{"potential_index", p.PotentialIndex},
		{"rebound_index", p.ReboundIndex},
		{"time_deficit", p.TimeDeficit},
	}
	for _, f := range figures {
		if f.value != nil && (math.IsNaN(*f.value) || math.IsInf(*f.value, 0)) {
			errors = append(errors, fmt.Sprintf("%s must be a finite number", f.name))
		}
	}

	if p.FrontSectionTime != nil && *p.FrontSectionTime <= 0 {
		errors = append(errors, "front_section_time must be positive")
	}

	if p.EarlyCornerPosition != nil && *p.EarlyCornerPosition < 1 {
		errors = append(errors, "early_corner_position must be at least 1")
	}

	if p.TimeDeficit != nil && *p.TimeDeficit < 0 {
		errors = append(errors, "time_deficit cannot be negative")
	}

	return errors
}

// FilterPerformances drops invalid records and logs what was dropped
func (v *DataValidator) FilterPerformances(runnerNumber int, records []*models.PastPerformance) []*models.PastPerformance {
	kept := make([]*models.PastPerformance, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if issues := v.ValidatePerformance(r); len(issues) > 0 {
			v.logger.WithFields(logrus.Fields{
				"runner_number": runnerNumber,
				"record_id":     r.ID,
				"issues":        issues,
			}).Debug("Skipping invalid historical record")
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
