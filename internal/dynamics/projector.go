package dynamics

import (
	"fmt"
	"math"

	"github.com/yourusername/race-dynamics/internal/models"
)

// ProjectionInput is one runner's situation at the early checkpoint
type ProjectionInput struct {
	StartPosition float64
	Style         RunningStyle
	Deviation     float64
	Pace          Pace
	Course        *models.CourseProfile
	PostNumber    int
	FieldSize     int
	PoorFinish    PoorFinish
	// StyleNeutral disables every style-dependent rule, used for runners
	// without qualifying history.
	StyleNeutral bool
}

// FactorDelta records one rule that moved the adjustment
type FactorDelta struct {
	Factor string  `json:"factor"`
	Rule   string  `json:"rule"`
	Delta  float64 `json:"delta"`
}

// Projection is the projector's result; positive adjustment is worse
type Projection struct {
	Adjustment   float64       `json:"adjustment"`
	LatePosition float64       `json:"late_position"`
	Favorable    int           `json:"favorable"`
	Unfavorable  int           `json:"unfavorable"`
	Overridden   bool          `json:"overridden"`
	Trace        []FactorDelta `json:"trace"`
}

// Projector derives a near-finish position from the early position
type Projector struct {
	tuning Tuning
	course CourseConfig
}

// NewProjector creates a projector from engine config
func NewProjector(cfg Config) *Projector {
	return &Projector{tuning: cfg.Tuning, course: cfg.Course}
}

// Project computes the signed adjustment and the projected late position
func (p *Projector) Project(in ProjectionInput) (Projection, error) {
	if err := validateProjectionInput(in); err != nil {
		return Projection{}, err
	}

	c := &projectionContext{in: in, tuning: &p.tuning, course: p.course}
	for _, f := range projectionPipeline {
		if c.apply(f) {
			break
		}
	}

	return Projection{
		Adjustment:   c.adjustment,
		LatePosition: clamp(in.StartPosition+c.adjustment, 1, float64(in.FieldSize)),
		Favorable:    c.favorable,
		Unfavorable:  c.unfavorable,
		Overridden:   c.overridden,
		Trace:        c.trace,
	}, nil
}

func validateProjectionInput(in ProjectionInput) error {
	if in.FieldSize <= 0 {
		return fmt.Errorf("%w: field size must be positive, got %d", ErrInvalidInput, in.FieldSize)
	}
	if math.IsNaN(in.StartPosition) || in.StartPosition < 1 || in.StartPosition > float64(in.FieldSize) {
		return fmt.Errorf("%w: start position %v outside [1, %d]", ErrInvalidInput, in.StartPosition, in.FieldSize)
	}
	if math.IsNaN(in.Deviation) || math.IsInf(in.Deviation, 0) {
		return fmt.Errorf("%w: deviation score is not a number", ErrInvalidInput)
	}
	if in.PostNumber <= 0 {
		return fmt.Errorf("%w: post number must be positive, got %d", ErrInvalidInput, in.PostNumber)
	}
	if !in.StyleNeutral {
		if !in.Style.Valid() {
			return fmt.Errorf("%w: unknown running style %q", ErrInvalidInput, in.Style)
		}
	}
	switch in.Pace {
	case PaceSlow, PaceMiddle, PaceHigh:
	default:
		return fmt.Errorf("%w: unknown pace %q", ErrInvalidInput, in.Pace)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
