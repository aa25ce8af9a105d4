package dynamics

import "math"

// surgeRow holds the positional gain needed per intensity at a deviation tier
type surgeRow struct {
	minDeviation float64
	strong       float64
	medium       float64
	weak         float64
}

// surgeTable is ordered by descending deviation. Higher deviation needs less
// gain for the same intensity; strong always needs more than 3 positions.
var surgeTable = []surgeRow{
	{minDeviation: 70, strong: 4.0, medium: 3.5, weak: 3.0},
	{minDeviation: 65, strong: 5.0, medium: 4.0, weak: 3.0},
	{minDeviation: 60, strong: 6.0, medium: 4.5, weak: 3.5},
	{minDeviation: 55, strong: 7.0, medium: 5.5, weak: 4.0},
	{minDeviation: 50, strong: math.Inf(1), medium: 6.0, weak: 4.5},
}

// ClassifySurge grades the move from one checkpoint position to the next.
// Gain is from - to, so moving up the field is positive.
func ClassifySurge(deviation, from, to float64) SurgeIntensity {
	gain := from - to
	for _, row := range surgeTable {
		if deviation < row.minDeviation {
			continue
		}
		switch {
		case gain >= row.strong:
			return SurgeStrong
		case gain >= row.medium:
			return SurgeMedium
		case gain >= row.weak:
			return SurgeWeak
		}
		return SurgeNone
	}
	return SurgeNone
}
