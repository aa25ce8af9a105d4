package dynamics

import "github.com/yourusername/race-dynamics/internal/models"

// PaceSummary is the race-level tempo classification
type PaceSummary struct {
	Pace              Pace     `json:"pace"`
	FrontRunners      int      `json:"front_runners"`
	FrontRunnerAvg    *float64 `json:"front_runner_avg"`
	FieldAvgFrontTime *float64 `json:"field_avg_front_time"`
	// Delta is the front runners' average minus the norm; positive is slower
	Delta *float64 `json:"delta"`
}

// PaceClassifier classifies the expected tempo of a race
type PaceClassifier struct {
	cfg PaceConfig
}

// NewPaceClassifier creates a classifier from engine config
func NewPaceClassifier(cfg Config) *PaceClassifier {
	return &PaceClassifier{cfg: cfg.Pace}
}

// Classify counts front-running styles and compares their early pace with
// the course standard, or the field average when the course has none.
// Runners without history are style-neutral and are not counted.
func (p *PaceClassifier) Classify(runners []RunnerProfile, course *models.CourseProfile) PaceSummary {
	var frontTimes, fieldTimes []float64
	summary := PaceSummary{Pace: PaceMiddle}

	for _, r := range runners {
		t := r.History.AvgFrontSectionTime
		if t != nil {
			fieldTimes = append(fieldTimes, *t)
		}
		if r.Style.IsFrontRunner() && r.History.SampleCount > 0 {
			summary.FrontRunners++
			if t != nil {
				frontTimes = append(frontTimes, *t)
			}
		}
	}
	summary.FieldAvgFrontTime = average(fieldTimes)
	summary.FrontRunnerAvg = average(frontTimes)

	norm := summary.FieldAvgFrontTime
	if course != nil && course.StandardFrontTime != nil {
		norm = course.StandardFrontTime
	}
	if summary.FrontRunnerAvg != nil && norm != nil {
		d := *summary.FrontRunnerAvg - *norm
		summary.Delta = &d
	}

	fieldSize := len(runners)
	if fieldSize <= 1 {
		return summary
	}

	switch {
	case summary.FrontRunners <= p.cfg.SlowMaxFrontRunners || p.markedlySlow(summary.Delta):
		summary.Pace = PaceSlow
	case summary.FrontRunners*3 >= fieldSize && p.fast(summary.Delta):
		summary.Pace = PaceHigh
	}
	return summary
}

func (p *PaceClassifier) markedlySlow(delta *float64) bool {
	return delta != nil && *delta >= p.cfg.SlowMargin
}

func (p *PaceClassifier) fast(delta *float64) bool {
	return delta != nil && *delta <= p.cfg.FastMargin
}

func average(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	return &avg
}
