package dynamics

import (
	"sort"

	"github.com/yourusername/race-dynamics/internal/models"
)

// Aggregator summarises a runner's past performances
type Aggregator struct {
	cfg Config
}

// NewAggregator creates an aggregator from engine config
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate averages the runner's relevant finished runs. A target distance
// of zero accepts every distance. No relevant runs yields nil averages and
// low confidence.
func (a *Aggregator) Aggregate(records []*models.PastPerformance, targetDistance int) RunnerHistory {
	finished := make([]*models.PastPerformance, 0, len(records))
	for _, r := range records {
		if r != nil && r.Finished() {
			finished = append(finished, r)
		}
	}
	sort.SliceStable(finished, func(i, j int) bool {
		return finished[i].RaceDate.After(finished[j].RaceDate)
	})

	relevant := make([]*models.PastPerformance, 0, a.cfg.MaxSamples)
	for _, r := range finished {
		if len(relevant) == a.cfg.MaxSamples {
			break
		}
		if a.withinBand(r.Distance, targetDistance) {
			relevant = append(relevant, r)
		}
	}

	return RunnerHistory{
		SampleCount:            len(relevant),
		AvgFrontSectionTime:    meanOf(relevant, func(p *models.PastPerformance) *float64 { return p.FrontSectionTime }),
		AvgLateAbility:         meanOf(relevant, func(p *models.PastPerformance) *float64 { return p.LateAbilityIndex }),
		AvgEarlyCornerPosition: meanOf(relevant, func(p *models.PastPerformance) *float64 { return p.EarlyCornerPosition }),
		AvgPotentialIndex:      meanOf(relevant, func(p *models.PastPerformance) *float64 { return p.PotentialIndex }),
		AvgReboundIndex:        meanOf(relevant, func(p *models.PastPerformance) *float64 { return p.ReboundIndex }),
		Confidence:             a.confidence(len(relevant)),
		PoorFinish:             a.poorFinish(finished),
	}
}

func (a *Aggregator) withinBand(distance, target int) bool {
	if target <= 0 {
		return true
	}
	diff := distance - target
	if diff < 0 {
		diff = -diff
	}
	return diff <= a.cfg.DistanceBand
}

func (a *Aggregator) confidence(samples int) Confidence {
	switch {
	case samples >= a.cfg.HighConfidenceSamples:
		return ConfidenceHigh
	case samples >= a.cfg.MediumConfidenceSamples:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// poorFinish inspects the most recent finished runs at any distance
func (a *Aggregator) poorFinish(newestFirst []*models.PastPerformance) PoorFinish {
	window := newestFirst
	if len(window) > a.cfg.PoorFinish.RecentWindow {
		window = window[:a.cfg.PoorFinish.RecentWindow]
	}

	var pf PoorFinish
	for _, r := range window {
		if r.TimeDeficit == nil {
			continue
		}
		deficit := *r.TimeDeficit
		if deficit > pf.WorstDeficit {
			pf.WorstDeficit = deficit
		}
		if deficit >= a.cfg.PoorFinish.DeficitThreshold {
			pf.Occurrences++
		}
	}
	pf.Flagged = pf.Occurrences >= a.cfg.PoorFinish.MinOccurrences
	return pf
}

func meanOf(records []*models.PastPerformance, pick func(p *models.PastPerformance) *float64) *float64 {
	var sum float64
	var count int
	for _, r := range records {
		if v := pick(r); v != nil {
			sum += *v
			count++
		}
	}
	if count == 0 {
		return nil
	}
	mean := sum / float64(count)
	return &mean
}
