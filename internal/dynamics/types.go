// Package dynamics predicts how a race will unfold: tempo, early and late
// running positions, late surges and a 2-D layout of the field.
package dynamics

import (
	"fmt"
	"strings"

	"github.com/yourusername/race-dynamics/internal/models"
)

// RunningStyle is the habitual position a runner takes in a race
type RunningStyle string

// Running styles
const (
	StyleEscape  RunningStyle = "escape"
	StyleLead    RunningStyle = "lead"
	StyleStalker RunningStyle = "stalker"
	StyleCloser  RunningStyle = "closer"
)

var styleAliases = map[string]RunningStyle{
	"escape":  StyleEscape,
	"nige":    StyleEscape,
	"lead":    StyleLead,
	"senko":   StyleLead,
	"stalker": StyleStalker,
	"stalk":   StyleStalker,
	"sashi":   StyleStalker,
	"closer":  StyleCloser,
	"oikomi":  StyleCloser,
}

// ParseRunningStyle maps a style label to a RunningStyle
func ParseRunningStyle(s string) (RunningStyle, error) {
	style, ok := styleAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unknown running style %q", ErrInvalidInput, s)
	}
	return style, nil
}

// Valid reports whether s is one of the canonical styles
func (s RunningStyle) Valid() bool {
	switch s {
	case StyleEscape, StyleLead, StyleStalker, StyleCloser:
		return true
	}
	return false
}

// IsFrontRunner reports whether the style races on or near the lead
func (s RunningStyle) IsFrontRunner() bool {
	return s == StyleEscape || s == StyleLead
}

// IsClosing reports whether the style comes from off the pace
func (s RunningStyle) IsClosing() bool {
	return s == StyleStalker || s == StyleCloser
}

// Pace is the expected overall tempo of a race
type Pace string

// Paces
const (
	PaceSlow   Pace = "slow"
	PaceMiddle Pace = "middle"
	PaceHigh   Pace = "high"
)

// Confidence describes how much history backs a runner's figures
type Confidence string

// Confidence tiers
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SurgeIntensity flags late-race momentum for presentation emphasis
type SurgeIntensity string

// Surge intensities
const (
	SurgeStrong SurgeIntensity = "strong"
	SurgeMedium SurgeIntensity = "medium"
	SurgeWeak   SurgeIntensity = "weak"
	SurgeNone   SurgeIntensity = "none"
)

// PoorFinish summarises recent large time deficits
type PoorFinish struct {
	Flagged      bool    `json:"flagged"`
	WorstDeficit float64 `json:"worst_deficit"`
	Occurrences  int     `json:"occurrences"`
}

// RunnerHistory is the aggregated past form of one runner. Nil averages
// mean "no data" and are replaced by field averages downstream.
type RunnerHistory struct {
	SampleCount            int        `json:"sample_count"`
	AvgFrontSectionTime    *float64   `json:"avg_front_section_time"`
	AvgLateAbility         *float64   `json:"avg_late_ability"`
	AvgEarlyCornerPosition *float64   `json:"avg_early_corner_position"`
	AvgPotentialIndex      *float64   `json:"avg_potential_index"`
	AvgReboundIndex        *float64   `json:"avg_rebound_index"`
	Confidence             Confidence `json:"confidence"`
	PoorFinish             PoorFinish `json:"poor_finish"`
}

// RunnerProfile is one entrant as seen by the engine
type RunnerProfile struct {
	Number     int           `json:"runner_number" validate:"required,gt=0"`
	Name       string        `json:"runner_name" validate:"required"`
	PostNumber int           `json:"post_number" validate:"required,gt=0"`
	Weight     *float64      `json:"weight,omitempty" validate:"omitempty,gt=0"`
	Style      RunningStyle  `json:"running_style" validate:"required"`
	History    RunnerHistory `json:"history"`
}

// RaceInput is everything the engine needs for one prediction
type RaceInput struct {
	RaceKey  string                `json:"race_key" validate:"required"`
	Distance int                   `json:"distance" validate:"gte=0"`
	Runners  []RunnerProfile       `json:"runners" validate:"required,min=1,dive"`
	Course   *models.CourseProfile `json:"course,omitempty"`
}

// PositionPrediction is the projected picture for one runner
type PositionPrediction struct {
	RunnerNumber   int            `json:"runnerNumber"`
	RunnerName     string         `json:"runnerName"`
	PostNumber     int            `json:"postNumber"`
	RunningStyle   RunningStyle   `json:"runningStyle"`
	DeviationScore float64        `json:"deviationScore"`
	EarlyPosition  float64        `json:"earlyPosition"`
	LatePosition   float64        `json:"latePosition"`
	SurgeIntensity SurgeIntensity `json:"surgeIntensity"`
	Confidence     Confidence     `json:"confidence"`
}

// LayoutEntry is one runner's render coordinate at a checkpoint
type LayoutEntry struct {
	RunnerNumber int     `json:"runnerNumber"`
	Position     float64 `json:"position"`
	X            float64 `json:"x"`
	Lane         int     `json:"lane"`
	Group        int     `json:"group"`
	Isolated     bool    `json:"isolated"`
}

// RaceLayout holds the layouts for both checkpoints
type RaceLayout struct {
	Early []LayoutEntry `json:"early"`
	Late  []LayoutEntry `json:"late"`
}

// PacePrediction is the full engine result for one race
type PacePrediction struct {
	RaceKey             string                `json:"raceKey"`
	ExpectedPace        Pace                  `json:"expectedPace"`
	FrontRunners        int                   `json:"frontRunners"`
	AvgFrontSectionTime *float64              `json:"avgFrontSectionTime"`
	FrontRunnerAvgTime  *float64              `json:"frontRunnerAvgTime"`
	Predictions         []PositionPrediction  `json:"predictions"`
	CourseInfo          *models.CourseProfile `json:"courseInfo"`
	Layout              RaceLayout            `json:"layout"`
}
