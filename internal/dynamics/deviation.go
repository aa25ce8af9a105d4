package dynamics

import "math"

// NeutralDeviation is the field-average deviation score
const NeutralDeviation = 50.0

const deviationEpsilon = 1e-9

// Normalizer converts raw ability figures to field-relative deviation scores
type Normalizer struct {
	min float64
	max float64
}

// NewNormalizer creates a normalizer from engine config
func NewNormalizer(cfg Config) *Normalizer {
	return &Normalizer{min: cfg.DeviationMin, max: cfg.DeviationMax}
}

// Normalize returns 50 + 10*(raw-mean)/stddev per runner, computed over the
// given field only. Runners without a figure get 50. Clamping to the allowed
// range is mass preserving, so the field mean stays at 50.
func (n *Normalizer) Normalize(raw []*float64) []float64 {
	scores := make([]float64, len(raw))
	for i := range scores {
		scores[i] = NeutralDeviation
	}

	known := make([]int, 0, len(raw))
	for i, v := range raw {
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			known = append(known, i)
		}
	}
	if len(known) < 2 {
		return scores
	}

	var sum float64
	for _, i := range known {
		sum += *raw[i]
	}
	mean := sum / float64(len(known))

	var sq float64
	for _, i := range known {
		d := *raw[i] - mean
		sq += d * d
	}
	sigma := math.Sqrt(sq / float64(len(known)))
	if sigma < deviationEpsilon {
		return scores
	}

	for _, i := range known {
		scores[i] = NeutralDeviation + 10*(*raw[i]-mean)/sigma
	}
	n.clampPreservingMean(scores, known)
	return scores
}

// clampPreservingMean clamps the known scores and spreads the mass removed
// by clamping over the scores that still have room, until the known scores
// average 50 again.
func (n *Normalizer) clampPreservingMean(scores []float64, known []int) {
	target := NeutralDeviation * float64(len(known))

	for iter := 0; iter <= len(known); iter++ {
		var sum float64
		for _, i := range known {
			scores[i] = clamp(scores[i], n.min, n.max)
			sum += scores[i]
		}
		residual := target - sum
		if math.Abs(residual) < deviationEpsilon {
			return
		}

		free := make([]int, 0, len(known))
		for _, i := range known {
			if (residual > 0 && scores[i] < n.max) || (residual < 0 && scores[i] > n.min) {
				free = append(free, i)
			}
		}
		if len(free) == 0 {
			return
		}
		share := residual / float64(len(free))
		for _, i := range free {
			scores[i] += share
		}
	}

	for _, i := range known {
		scores[i] = clamp(scores[i], n.min, n.max)
	}
}
