package dynamics

import (
	"math"

	"github.com/yourusername/race-dynamics/internal/models"
)

// effect is how a rule's delta feeds the favorable/unfavorable tallies
type effect int

const (
	effectNone effect = iota
	effectFavorable
	effectUnfavorable
	effectBonusOnly // counts toward the favorable sum but not the tally
)

// rule is one (condition, delta) entry of a factor table
type rule struct {
	name  string
	when  func(c *projectionContext) bool
	delta func(c *projectionContext) float64
	tally func(c *projectionContext, delta float64) effect
	halt  bool // replace the adjustment and stop evaluating
}

// factor is a named, ordered rule table
type factor struct {
	name  string
	rules []rule
}

// projectionPipeline is the evaluation order of the projector. Nullification
// reads the tallies accumulated by every factor before it, so the order of
// this list must not change.
var projectionPipeline = []factor{
	overrideFactor,
	baselineFactor,
	frontHalfFactor,
	paceFactor,
	straightFactor,
	postFactor,
	gradientFactor,
	correctionFactor,
	nullificationFactor,
	terminalFactor,
}

var overrideFactor = factor{
	name: "poor_finish_override",
	rules: []rule{
		{
			name:  "severe_deficit",
			when:  func(c *projectionContext) bool { return c.poorFinishAtLeast(c.tuning.SevereDeficit) },
			delta: func(c *projectionContext) float64 { return c.tuning.SevereMultiplier * c.n() },
			halt:  true,
		},
		{
			name:  "heavy_deficit",
			when:  func(c *projectionContext) bool { return c.poorFinishAtLeast(c.tuning.HeavyDeficit) },
			delta: func(c *projectionContext) float64 { return c.tuning.HeavyMultiplier * c.n() },
			halt:  true,
		},
		{
			name:  "moderate_deficit",
			when:  func(c *projectionContext) bool { return c.in.PoorFinish.Flagged },
			delta: func(c *projectionContext) float64 { return c.tuning.ModeratePenalty },
			tally: untracked,
		},
	},
}

var baselineFactor = factor{
	name: "deviation_baseline",
	rules: []rule{
		{
			name:  "ladder",
			delta: byDeviation(func(t *Tuning) Ladder { return t.Baseline }),
			tally: func(c *projectionContext, _ float64) effect {
				switch {
				case c.in.Deviation >= c.tuning.BaselineFavorableMin:
					return effectFavorable
				case c.in.Deviation < c.tuning.BaselineUnfavorableBelow:
					return effectUnfavorable
				}
				return effectNone
			},
		},
	},
}

var frontHalfFactor = factor{
	name: "front_half_low_deviation",
	rules: []rule{
		{
			name:  "penalty",
			when:  func(c *projectionContext) bool { return c.inFrontHalf() },
			delta: byDeviation(func(t *Tuning) Ladder { return t.FrontHalfPenalty }),
		},
	},
}

var paceFactor = factor{
	name: "pace_interaction",
	rules: []rule{
		{
			name: "high_closing_fit",
			when: func(c *projectionContext) bool {
				return c.in.Pace == PaceHigh && c.closing() && c.behindMidfield()
			},
			delta: func(c *projectionContext) float64 { return c.tuning.HighPaceFitBonus },
		},
		{
			name: "high_closing_ability",
			when: func(c *projectionContext) bool {
				return c.in.Pace == PaceHigh && c.closing() && c.behindMidfield()
			},
			delta: byDeviation(func(t *Tuning) Ladder { return t.HighPaceAbility }),
			tally: bonusOnly,
		},
		{
			name: "high_front_fade",
			when: func(c *projectionContext) bool {
				return c.in.Pace == PaceHigh && c.front() && c.nearFront()
			},
			delta: byDeviation(func(t *Tuning) Ladder { return t.HighPaceFade }),
		},
		{
			name:  "slow_front_hold",
			when:  func(c *projectionContext) bool { return c.in.Pace == PaceSlow && c.front() },
			delta: byDeviation(func(t *Tuning) Ladder { return t.SlowPaceFront }),
		},
		{
			name:  "slow_stalker_blocked",
			when:  func(c *projectionContext) bool { return c.in.Pace == PaceSlow && c.is(StyleStalker) },
			delta: func(c *projectionContext) float64 { return c.tuning.SlowPaceStalkerPenalty },
		},
		{
			name:  "slow_closer_blocked",
			when:  func(c *projectionContext) bool { return c.in.Pace == PaceSlow && c.is(StyleCloser) },
			delta: func(c *projectionContext) float64 { return c.tuning.SlowPaceCloserPenalty },
		},
		{
			name:  "middle_stalker",
			when:  func(c *projectionContext) bool { return c.in.Pace == PaceMiddle && c.is(StyleStalker) },
			delta: byDeviation(func(t *Tuning) Ladder { return t.MiddlePaceStalker }),
		},
	},
}

var straightFactor = factor{
	name: "straight_length",
	rules: []rule{
		{
			name:  "long_closing",
			when:  func(c *projectionContext) bool { return c.longStraight() && c.closing() },
			delta: byDeviation(func(t *Tuning) Ladder { return t.LongStraightClosing }),
		},
		{
			name:  "long_front_exposed",
			when:  func(c *projectionContext) bool { return c.longStraight() && c.front() && c.nearFront() },
			delta: byDeviation(func(t *Tuning) Ladder { return t.LongStraightFront }),
		},
		{
			name:  "short_front",
			when:  func(c *projectionContext) bool { return c.shortStraight() && c.front() },
			delta: byDeviation(func(t *Tuning) Ladder { return t.ShortStraightFront }),
		},
		{
			name:  "short_closing",
			when:  func(c *projectionContext) bool { return c.shortStraight() && c.closing() },
			delta: byDeviation(func(t *Tuning) Ladder { return t.ShortStraightClosing }),
		},
	},
}

var postFactor = factor{
	name: "post_position",
	rules: []rule{
		{
			name: "outside_disadvantage_wide_closing",
			when: func(c *projectionContext) bool {
				return c.postDisadvantaged(c.courseField(func(p *models.CourseProfile) *float64 { return p.OutsideAdvantage })) &&
					c.closing() && c.drawnWide()
			},
			delta: byDeviation(func(t *Tuning) Ladder { return t.WidePostClosing }),
		},
		{
			name: "inside_disadvantage_inside_front",
			when: func(c *projectionContext) bool {
				return c.postDisadvantaged(c.courseField(func(p *models.CourseProfile) *float64 { return p.InsideAdvantage })) &&
					c.front() && c.drawnInside()
			},
			delta: byDeviation(func(t *Tuning) Ladder { return t.InsidePostFront }),
		},
	},
}

var gradientFactor = factor{
	name: "finish_gradient",
	rules: []rule{
		{
			name:  "front",
			when:  func(c *projectionContext) bool { return c.finishGradient() && c.front() },
			delta: func(c *projectionContext) float64 { return c.tuning.GradientFrontBonus },
		},
		{
			name:  "deep_closer",
			when:  func(c *projectionContext) bool { return c.finishGradient() && c.is(StyleCloser) },
			delta: func(c *projectionContext) float64 { return c.tuning.GradientCloserPenalty },
		},
	},
}

var correctionFactor = factor{
	name: "aggregate_correction",
	rules: []rule{
		{
			name:  "favorable",
			delta: func(c *projectionContext) float64 { return c.tuning.FavorableCorrection.At(float64(c.favorable)) },
			tally: bonusOnly,
		},
		{
			name:  "unfavorable",
			delta: func(c *projectionContext) float64 { return c.tuning.UnfavorableCorrection.At(float64(c.unfavorable)) },
			tally: untracked,
		},
	},
}

var nullificationFactor = factor{
	name: "low_deviation_nullification",
	rules: []rule{
		{
			name: "reverse_favorable",
			when: func(c *projectionContext) bool { return c.favorableSum < 0 },
			delta: func(c *projectionContext) float64 {
				return -c.favorableSum * c.tuning.Nullification.At(c.in.Deviation)
			},
			tally: untracked,
		},
	},
}

var terminalFactor = factor{
	name: "high_deviation_terminal",
	rules: []rule{
		{
			name:  "ladder",
			delta: byDeviation(func(t *Tuning) Ladder { return t.Terminal }),
			tally: untracked,
		},
	},
}

func byDeviation(pick func(t *Tuning) Ladder) func(c *projectionContext) float64 {
	return func(c *projectionContext) float64 {
		return pick(c.tuning).At(c.in.Deviation)
	}
}

func bySign(_ *projectionContext, delta float64) effect {
	switch {
	case delta < 0:
		return effectFavorable
	case delta > 0:
		return effectUnfavorable
	}
	return effectNone
}

func bonusOnly(_ *projectionContext, delta float64) effect {
	if delta < 0 {
		return effectBonusOnly
	}
	return effectNone
}

func untracked(_ *projectionContext, _ float64) effect {
	return effectNone
}

// projectionContext carries one runner's input and running tallies
type projectionContext struct {
	in     ProjectionInput
	tuning *Tuning
	course CourseConfig

	adjustment   float64
	favorable    int
	unfavorable  int
	favorableSum float64
	overridden   bool
	trace        []FactorDelta
}

// apply evaluates one factor and reports whether evaluation must stop
func (c *projectionContext) apply(f factor) bool {
	for _, r := range f.rules {
		if r.when != nil && !r.when(c) {
			continue
		}
		d := r.delta(c)
		if r.halt {
			c.adjustment = d
			c.overridden = true
			c.trace = append(c.trace, FactorDelta{Factor: f.name, Rule: r.name, Delta: d})
			return true
		}
		if d == 0 {
			continue
		}
		c.adjustment += d
		c.trace = append(c.trace, FactorDelta{Factor: f.name, Rule: r.name, Delta: d})

		tally := r.tally
		if tally == nil {
			tally = bySign
		}
		switch tally(c, d) {
		case effectFavorable:
			c.favorable++
			c.favorableSum += d
		case effectUnfavorable:
			c.unfavorable++
		case effectBonusOnly:
			c.favorableSum += d
		}
	}
	return false
}

func (c *projectionContext) n() float64 {
	return float64(c.in.FieldSize)
}

func (c *projectionContext) poorFinishAtLeast(deficit float64) bool {
	return c.in.PoorFinish.Flagged && c.in.PoorFinish.WorstDeficit >= deficit
}

func (c *projectionContext) front() bool {
	return !c.in.StyleNeutral && c.in.Style.IsFrontRunner()
}

func (c *projectionContext) closing() bool {
	return !c.in.StyleNeutral && c.in.Style.IsClosing()
}

func (c *projectionContext) is(style RunningStyle) bool {
	return !c.in.StyleNeutral && c.in.Style == style
}

func (c *projectionContext) inFrontHalf() bool {
	return c.in.StartPosition <= c.tuning.FrontHalfShare*c.n()
}

func (c *projectionContext) nearFront() bool {
	return c.in.StartPosition <= math.Max(1, c.tuning.NearFrontShare*c.n())
}

func (c *projectionContext) behindMidfield() bool {
	return c.in.StartPosition > c.tuning.RearShare*c.n()
}

func (c *projectionContext) drawnWide() bool {
	return float64(c.in.PostNumber) > c.n()*2/3
}

func (c *projectionContext) drawnInside() bool {
	return float64(c.in.PostNumber) <= c.n()/3
}

// courseField reads an optional course figure; nil means unknown
func (c *projectionContext) courseField(pick func(p *models.CourseProfile) *float64) *float64 {
	if c.in.Course == nil {
		return nil
	}
	return pick(c.in.Course)
}

func (c *projectionContext) longStraight() bool {
	s := c.courseField(func(p *models.CourseProfile) *float64 { return p.StraightLength })
	return s != nil && *s >= c.course.LongStraight
}

func (c *projectionContext) shortStraight() bool {
	s := c.courseField(func(p *models.CourseProfile) *float64 { return p.StraightLength })
	return s != nil && *s <= c.course.ShortStraight
}

func (c *projectionContext) postDisadvantaged(advantage *float64) bool {
	return advantage != nil && *advantage <= -c.course.PostDisadvantageMargin
}

func (c *projectionContext) finishGradient() bool {
	has, known := c.in.Course.HasFinishGradient()
	return known && has
}
