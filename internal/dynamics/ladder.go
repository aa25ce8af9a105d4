package dynamics

import (
	"fmt"
	"math"
)

// floor is the catch-all lower bound of a ladder
var floor = math.Inf(-1)

// Rung is one step of a ladder: values >= Min receive Delta
type Rung struct {
	Min   float64
	Delta float64
}

// Ladder is an ordered threshold table, highest Min first
type Ladder []Rung

// At returns the delta of the first rung whose Min is <= v, or 0
func (l Ladder) At(v float64) float64 {
	for _, r := range l {
		if v >= r.Min {
			return r.Delta
		}
	}
	return 0
}

func (l Ladder) validate(name string) error {
	if len(l) == 0 {
		return fmt.Errorf("ladder %s is empty", name)
	}
	for i := 1; i < len(l); i++ {
		if l[i].Min >= l[i-1].Min {
			return fmt.Errorf("ladder %s must be ordered by descending threshold", name)
		}
	}
	return nil
}

// Tuning holds the magnitudes and ladders of the position projector
type Tuning struct {
	SevereDeficit    float64
	SevereMultiplier float64
	HeavyDeficit     float64
	HeavyMultiplier  float64
	ModeratePenalty  float64

	Baseline                 Ladder
	BaselineFavorableMin     float64
	BaselineUnfavorableBelow float64

	FrontHalfShare   float64
	FrontHalfPenalty Ladder
	NearFrontShare   float64
	RearShare        float64

	HighPaceFitBonus       float64
	HighPaceAbility        Ladder
	HighPaceFade           Ladder
	SlowPaceFront          Ladder
	SlowPaceStalkerPenalty float64
	SlowPaceCloserPenalty  float64
	MiddlePaceStalker      Ladder

	LongStraightClosing   Ladder
	LongStraightFront     Ladder
	ShortStraightFront    Ladder
	ShortStraightClosing  Ladder
	WidePostClosing       Ladder
	InsidePostFront       Ladder
	GradientFrontBonus    float64
	GradientCloserPenalty float64

	FavorableCorrection   Ladder
	UnfavorableCorrection Ladder
	Nullification         Ladder
	Terminal              Ladder
}

// DefaultTuning returns the stock ladders
func DefaultTuning() Tuning {
	return Tuning{
		SevereDeficit:    4.0,
		SevereMultiplier: 2.0,
		HeavyDeficit:     3.0,
		HeavyMultiplier:  1.8,
		ModeratePenalty:  6.0,

		Baseline: Ladder{
			{70, -8.0}, {65, -6.0}, {60, -4.0}, {55, -2.0}, {50, 0},
			{45, 2.0}, {40, 4.0}, {35, 6.0}, {30, 8.5}, {floor, 12.0},
		},
		BaselineFavorableMin:     60,
		BaselineUnfavorableBelow: 40,

		FrontHalfShare:   0.4,
		FrontHalfPenalty: Ladder{{50, 0}, {45, 1.0}, {40, 2.0}, {floor, 3.0}},
		NearFrontShare:   0.3,
		RearShare:        0.5,

		HighPaceFitBonus:       -1.5,
		HighPaceAbility:        Ladder{{65, -2.5}, {55, -1.5}, {floor, 0}},
		HighPaceFade:           Ladder{{65, 1.0}, {55, 2.0}, {floor, 3.0}},
		SlowPaceFront:          Ladder{{60, -2.5}, {50, -1.5}, {floor, 0}},
		SlowPaceStalkerPenalty: 1.0,
		SlowPaceCloserPenalty:  2.5,
		MiddlePaceStalker:      Ladder{{55, -1.0}, {floor, 0}},

		LongStraightClosing:   Ladder{{60, -2.0}, {50, -1.5}, {floor, 0}},
		LongStraightFront:     Ladder{{50, 0}, {floor, 1.5}},
		ShortStraightFront:    Ladder{{50, -1.5}, {floor, 0}},
		ShortStraightClosing:  Ladder{{50, 0}, {floor, 1.5}},
		WidePostClosing:       Ladder{{50, -1.0}, {floor, 0}},
		InsidePostFront:       Ladder{{50, -1.0}, {floor, 0}},
		GradientFrontBonus:    -1.0,
		GradientCloserPenalty: 1.5,

		FavorableCorrection:   Ladder{{4, -4.0}, {3, -2.5}, {2, -1.5}, {floor, 0}},
		UnfavorableCorrection: Ladder{{5, 10.0}, {4, 6.5}, {3, 4.0}, {2, 2.0}, {floor, 0}},
		Nullification:         Ladder{{45, 0}, {35, 1.5}, {floor, 2.0}},
		Terminal:              Ladder{{70, -2.5}, {65, -1.5}, {60, -1.0}, {55, -0.5}, {floor, 0}},
	}
}

// Validate checks the tuning tables are well formed
func (t Tuning) Validate() error {
	if t.SevereDeficit <= t.HeavyDeficit || t.HeavyMultiplier <= 0 || t.SevereMultiplier < t.HeavyMultiplier {
		return fmt.Errorf("override thresholds must escalate from heavy to severe")
	}
	ladders := map[string]Ladder{
		"baseline":               t.Baseline,
		"front_half_penalty":     t.FrontHalfPenalty,
		"high_pace_ability":      t.HighPaceAbility,
		"high_pace_fade":         t.HighPaceFade,
		"slow_pace_front":        t.SlowPaceFront,
		"middle_pace_stalker":    t.MiddlePaceStalker,
		"long_straight_closing":  t.LongStraightClosing,
		"long_straight_front":    t.LongStraightFront,
		"short_straight_front":   t.ShortStraightFront,
		"short_straight_closing": t.ShortStraightClosing,
		"wide_post_closing":      t.WidePostClosing,
		"inside_post_front":      t.InsidePostFront,
		"favorable_correction":   t.FavorableCorrection,
		"unfavorable_correction": t.UnfavorableCorrection,
		"nullification":          t.Nullification,
		"terminal":               t.Terminal,
	}
	for name, l := range ladders {
		if err := l.validate(name); err != nil {
			return err
		}
	}
	for _, r := range t.Nullification {
		if r.Delta < 0 {
			return fmt.Errorf("nullification multipliers cannot be negative")
		}
	}
	if t.FrontHalfShare <= 0 || t.FrontHalfShare > 1 || t.NearFrontShare <= 0 || t.RearShare <= 0 || t.RearShare >= 1 {
		return fmt.Errorf("positional shares must lie in (0, 1)")
	}
	return nil
}
