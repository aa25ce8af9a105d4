package dynamics

import (
	"fmt"

	"github.com/yourusername/race-dynamics/internal/config"
)

// Config holds every heuristic threshold of the engine
type Config struct {
	DistanceBand            int
	MaxSamples              int
	HighConfidenceSamples   int
	MediumConfidenceSamples int
	PoorFinish              PoorFinishConfig
	DeviationMin            float64
	DeviationMax            float64
	Pace                    PaceConfig
	Course                  CourseConfig
	Layout                  LayoutConfig
	Tuning                  Tuning
}

// PoorFinishConfig configures chronic poor-finisher detection
type PoorFinishConfig struct {
	RecentWindow     int
	DeficitThreshold float64
	MinOccurrences   int
}

// PaceConfig configures the pace classifier
type PaceConfig struct {
	SlowMaxFrontRunners int
	SlowMargin          float64
	FastMargin          float64
}

// CourseConfig configures how course geometry is read
type CourseConfig struct {
	LongStraight           float64
	ShortStraight          float64
	PostDisadvantageMargin float64
}

// LayoutConfig configures the spatial layout engine
type LayoutConfig struct {
	GroupThreshold  float64
	GroupGap        float64
	MemberGap       float64
	JitterAmplitude float64
	IsolationGap    float64
	MinX            float64
	MaxX            float64
	CenterX         float64
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		DistanceBand:            200,
		MaxSamples:              10,
		HighConfidenceSamples:   5,
		MediumConfidenceSamples: 2,
		PoorFinish: PoorFinishConfig{
			RecentWindow:     5,
			DeficitThreshold: 2.0,
			MinOccurrences:   3,
		},
		DeviationMin: 20,
		DeviationMax: 90,
		Pace: PaceConfig{
			SlowMaxFrontRunners: 1,
			SlowMargin:          0.3,
			FastMargin:          -0.2,
		},
		Course: CourseConfig{
			LongStraight:           450,
			ShortStraight:          320,
			PostDisadvantageMargin: 1.0,
		},
		Layout: LayoutConfig{
			GroupThreshold:  1.0,
			GroupGap:        8.0,
			MemberGap:       3.0,
			JitterAmplitude: 0.8,
			IsolationGap:    3.0,
			MinX:            2,
			MaxX:            98,
			CenterX:         50,
		},
		Tuning: DefaultTuning(),
	}
}

// FromConfig converts app config to engine config, starting from defaults
func FromConfig(cfg *config.EngineConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("engine config is required")
	}

	c := DefaultConfig()
	if cfg.DistanceBand > 0 {
		c.DistanceBand = cfg.DistanceBand
	}
	if cfg.MaxSamples > 0 {
		c.MaxSamples = cfg.MaxSamples
	}
	if cfg.HighConfidenceSamples > 0 {
		c.HighConfidenceSamples = cfg.HighConfidenceSamples
	}
	if cfg.MediumConfidenceSamples > 0 {
		c.MediumConfidenceSamples = cfg.MediumConfidenceSamples
	}
	if cfg.PoorFinishWindow > 0 {
		c.PoorFinish.RecentWindow = cfg.PoorFinishWindow
	}
	if cfg.PoorFinishDeficit > 0 {
		c.PoorFinish.DeficitThreshold = cfg.PoorFinishDeficit
	}
	if cfg.PoorFinishMinRuns > 0 {
		c.PoorFinish.MinOccurrences = cfg.PoorFinishMinRuns
	}
	if cfg.LongStraight > 0 {
		c.Course.LongStraight = cfg.LongStraight
	}
	if cfg.ShortStraight > 0 {
		c.Course.ShortStraight = cfg.ShortStraight
	}
	if cfg.PostDisadvantageMargin > 0 {
		c.Course.PostDisadvantageMargin = cfg.PostDisadvantageMargin
	}
	if cfg.GroupThreshold > 0 {
		c.Layout.GroupThreshold = cfg.GroupThreshold
	}
	if cfg.IsolationGap > 0 {
		c.Layout.IsolationGap = cfg.IsolationGap
	}
	if cfg.JitterAmplitude > 0 {
		c.Layout.JitterAmplitude = cfg.JitterAmplitude
	}

	return c, c.Validate()
}

// Validate validates engine config parameters
func (c Config) Validate() error {
	if c.DistanceBand <= 0 {
		return fmt.Errorf("distance band must be positive")
	}
	if c.MaxSamples <= 0 {
		return fmt.Errorf("max samples must be positive")
	}
	if c.MediumConfidenceSamples <= 0 || c.HighConfidenceSamples < c.MediumConfidenceSamples {
		return fmt.Errorf("confidence thresholds must satisfy 0 < medium <= high")
	}
	if c.PoorFinish.RecentWindow <= 0 || c.PoorFinish.MinOccurrences <= 0 {
		return fmt.Errorf("poor finish window and occurrences must be positive")
	}
	if c.PoorFinish.MinOccurrences > c.PoorFinish.RecentWindow {
		return fmt.Errorf("poor finish occurrences cannot exceed the recent window")
	}
	if c.DeviationMin >= 50 || c.DeviationMax <= 50 {
		return fmt.Errorf("deviation clamp range must contain 50")
	}
	if c.Course.ShortStraight >= c.Course.LongStraight {
		return fmt.Errorf("short straight must be shorter than long straight")
	}
	if c.Layout.GroupThreshold <= 0 || c.Layout.IsolationGap <= c.Layout.GroupThreshold {
		return fmt.Errorf("isolation gap must exceed a positive group threshold")
	}
	if c.Layout.JitterAmplitude < 0 || c.Layout.JitterAmplitude*2 >= c.Layout.MemberGap {
		return fmt.Errorf("jitter amplitude must be below half the member gap")
	}
	if c.Layout.MinX >= c.Layout.MaxX || c.Layout.CenterX < c.Layout.MinX || c.Layout.CenterX > c.Layout.MaxX {
		return fmt.Errorf("layout bounds must satisfy min <= center <= max")
	}
	return c.Tuning.Validate()
}
