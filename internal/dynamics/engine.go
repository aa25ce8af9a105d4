package dynamics

import (
	"fmt"
	"io"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

// Engine runs the full prediction pipeline for one race. An Engine is not
// safe for concurrent use when its jitter source is stateful; build one per
// request in that case.
type Engine struct {
	cfg        Config
	normalizer *Normalizer
	pace       *PaceClassifier
	projector  *Projector
	layout     *LayoutEngine
	logger     *logrus.Logger
}

// NewEngine creates an engine. A nil logger discards trace output.
func NewEngine(cfg Config, jitter JitterSource, logger *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Engine{
		cfg:        cfg,
		normalizer: NewNormalizer(cfg),
		pace:       NewPaceClassifier(cfg),
		projector:  NewProjector(cfg),
		layout:     NewLayoutEngine(cfg, jitter),
		logger:     logger,
	}, nil
}

// Predict produces the pace, per-runner positions and layouts for a race
func (e *Engine) Predict(race RaceInput) (*PacePrediction, error) {
	if err := validateRace(race); err != nil {
		return nil, err
	}

	runners := race.Runners
	n := len(runners)

	lateAbility := make([]*float64, n)
	for i, r := range runners {
		lateAbility[i] = r.History.AvgLateAbility
	}
	deviations := e.normalizer.Normalize(lateAbility)

	summary := e.pace.Classify(runners, race.Course)
	early := e.earlyPositions(runners)

	predictions := make([]PositionPrediction, n)
	earlyPoints := make([]LayoutPoint, n)
	latePoints := make([]LayoutPoint, n)

	for i, r := range runners {
		proj, err := e.projector.Project(ProjectionInput{
			StartPosition: early[i],
			Style:         r.Style,
			Deviation:     deviations[i],
			Pace:          summary.Pace,
			Course:        race.Course,
			PostNumber:    r.PostNumber,
			FieldSize:     n,
			PoorFinish:    r.History.PoorFinish,
			StyleNeutral:  r.History.SampleCount == 0,
		})
		if err != nil {
			return nil, fmt.Errorf("runner %d: %w", r.Number, err)
		}

		e.logger.WithFields(logrus.Fields{
			"race_key":    race.RaceKey,
			"runner":      r.Number,
			"deviation":   deviations[i],
			"early":       early[i],
			"late":        proj.LatePosition,
			"adjustment":  proj.Adjustment,
			"favorable":   proj.Favorable,
			"unfavorable": proj.Unfavorable,
			"overridden":  proj.Overridden,
			"trace":       proj.Trace,
		}).Debug("Projected runner position")

		predictions[i] = PositionPrediction{
			RunnerNumber:   r.Number,
			RunnerName:     r.Name,
			PostNumber:     r.PostNumber,
			RunningStyle:   r.Style,
			DeviationScore: round1(deviations[i]),
			EarlyPosition:  round1(early[i]),
			LatePosition:   round1(proj.LatePosition),
			SurgeIntensity: ClassifySurge(deviations[i], early[i], proj.LatePosition),
			Confidence:     r.History.Confidence,
		}
		earlyPoints[i] = LayoutPoint{RunnerNumber: r.Number, Position: early[i]}
		latePoints[i] = LayoutPoint{RunnerNumber: r.Number, Position: proj.LatePosition}
	}

	result := &PacePrediction{
		RaceKey:             race.RaceKey,
		ExpectedPace:        summary.Pace,
		FrontRunners:        summary.FrontRunners,
		AvgFrontSectionTime: roundPtr(summary.FieldAvgFrontTime),
		FrontRunnerAvgTime:  roundPtr(summary.FrontRunnerAvg),
		Predictions:         predictions,
		CourseInfo:          race.Course,
		Layout: RaceLayout{
			Early: roundLayout(e.layout.Layout(earlyPoints)),
			Late:  roundLayout(e.layout.Layout(latePoints)),
		},
	}

	e.logger.WithFields(logrus.Fields{
		"race_key":      race.RaceKey,
		"pace":          summary.Pace,
		"front_runners": summary.FrontRunners,
		"runners":       n,
	}).Debug("Race prediction complete")

	return result, nil
}

// earlyPositions uses each runner's average early-corner position clamped to
// the field, falling back to the field mean of the known values.
func (e *Engine) earlyPositions(runners []RunnerProfile) []float64 {
	n := float64(len(runners))

	var known []float64
	for _, r := range runners {
		if v := r.History.AvgEarlyCornerPosition; v != nil {
			known = append(known, clamp(*v, 1, n))
		}
	}
	fallback := (n + 1) / 2
	if avg := average(known); avg != nil {
		fallback = *avg
	}

	positions := make([]float64, len(runners))
	for i, r := range runners {
		if v := r.History.AvgEarlyCornerPosition; v != nil {
			positions[i] = clamp(*v, 1, n)
		} else {
			positions[i] = fallback
		}
	}
	return positions
}

func validateRace(race RaceInput) error {
	if err := validate.Struct(race); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	seen := make(map[int]bool, len(race.Runners))
	for _, r := range race.Runners {
		if !r.Style.Valid() {
			return fmt.Errorf("%w: runner %d has unknown running style %q", ErrInvalidInput, r.Number, r.Style)
		}
		if err := checkFinite(r.Number, r.History); err != nil {
			return err
		}
		if seen[r.Number] {
			return fmt.Errorf("%w: duplicate runner number %d", ErrInvalidInput, r.Number)
		}
		seen[r.Number] = true
	}
	return nil
}

// checkFinite rejects NaN or infinite history figures
func checkFinite(number int, h RunnerHistory) error {
	figures := []struct {
		name  string
		value *float64
	}{
		{"front section time", h.AvgFrontSectionTime},
		{"late ability", h.AvgLateAbility},
		{"early corner position", h.AvgEarlyCornerPosition},
		{"potential index", h.AvgPotentialIndex},
		{"rebound index", h.AvgReboundIndex},
	}
	for _, f := range figures {
		if f.value != nil && !isFinite(*f.value) {
			return fmt.Errorf("%w: runner %d has non-numeric %s", ErrInvalidInput, number, f.name)
		}
	}
	if !isFinite(h.PoorFinish.WorstDeficit) {
		return fmt.Errorf("%w: runner %d has non-numeric worst deficit", ErrInvalidInput, number)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round1(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round1(*v)
	return &r
}

func roundLayout(entries []LayoutEntry) []LayoutEntry {
	for i := range entries {
		entries[i].Position = round1(entries[i].Position)
		entries[i].X = round1(entries[i].X)
	}
	return entries
}
