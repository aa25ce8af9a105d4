package dynamics

import "sort"

const (
	laneCount  = 3
	centerLane = 1
)

// LayoutPoint is a runner's position at one checkpoint
type LayoutPoint struct {
	RunnerNumber int
	Position     float64
}

// LayoutEngine turns checkpoint positions into grouped render coordinates
type LayoutEngine struct {
	cfg    LayoutConfig
	jitter JitterSource
}

// NewLayoutEngine creates a layout engine. A nil jitter source means no jitter.
func NewLayoutEngine(cfg Config, jitter JitterSource) *LayoutEngine {
	if jitter == nil {
		jitter = FixedJitter(0)
	}
	return &LayoutEngine{cfg: cfg.Layout, jitter: jitter}
}

// Layout returns one entry per point in field order (front first). Runners
// within the group threshold of each other share a cluster; clusters are
// separated by a larger gap than members. X stays within [MinX, MaxX].
func (l *LayoutEngine) Layout(points []LayoutPoint) []LayoutEntry {
	if len(points) == 0 {
		return []LayoutEntry{}
	}

	sorted := append([]LayoutPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].RunnerNumber < sorted[j].RunnerNumber
	})

	if len(sorted) == 1 {
		return []LayoutEntry{{
			RunnerNumber: sorted[0].RunnerNumber,
			Position:     sorted[0].Position,
			X:            l.cfg.CenterX,
			Lane:         centerLane,
		}}
	}

	groups := l.group(sorted)
	xs := l.fit(l.rawCoordinates(groups))

	entries := make([]LayoutEntry, 0, len(sorted))
	rotation := 0
	idx := 0
	for gi, g := range groups {
		isolated := l.isolated(groups, gi)
		for mi, p := range g {
			lane := laneFor(len(g), mi, rotation)
			if isolated {
				lane = centerLane
			}
			entries = append(entries, LayoutEntry{
				RunnerNumber: p.RunnerNumber,
				Position:     p.Position,
				X:            xs[idx],
				Lane:         lane,
				Group:        gi,
				Isolated:     isolated,
			})
			idx++
		}
		if len(g) > laneCount {
			rotation++
		}
	}
	return entries
}

func (l *LayoutEngine) group(sorted []LayoutPoint) [][]LayoutPoint {
	var groups [][]LayoutPoint
	for i, p := range sorted {
		if i == 0 || p.Position-sorted[i-1].Position > l.cfg.GroupThreshold {
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], p)
	}
	return groups
}

// rawCoordinates lays groups out from zero; jitter only moves members
// after the first of their group.
func (l *LayoutEngine) rawCoordinates(groups [][]LayoutPoint) []float64 {
	var raw []float64
	cursor := 0.0
	for gi, g := range groups {
		if gi > 0 {
			cursor += l.cfg.GroupGap
		}
		for mi := range g {
			if mi > 0 {
				cursor += l.cfg.MemberGap + l.jitter.Next()*l.cfg.JitterAmplitude
			}
			raw = append(raw, cursor)
		}
	}
	return raw
}

// fit centres the layout, scaling it down when it is wider than the canvas
func (l *LayoutEngine) fit(raw []float64) []float64 {
	span := raw[len(raw)-1]
	width := l.cfg.MaxX - l.cfg.MinX

	xs := make([]float64, len(raw))
	if span > width {
		for i, r := range raw {
			xs[i] = clamp(l.cfg.MinX+r/span*width, l.cfg.MinX, l.cfg.MaxX)
		}
		return xs
	}

	offset := l.cfg.CenterX - span/2
	if offset < l.cfg.MinX {
		offset = l.cfg.MinX
	}
	if offset+span > l.cfg.MaxX {
		offset = l.cfg.MaxX - span
	}
	for i, r := range raw {
		xs[i] = clamp(r+offset, l.cfg.MinX, l.cfg.MaxX)
	}
	return xs
}

// isolated reports a lone runner with a large gap to every neighbouring group
func (l *LayoutEngine) isolated(groups [][]LayoutPoint, gi int) bool {
	g := groups[gi]
	if len(groups) < 2 || len(g) != 1 {
		return false
	}
	pos := g[0].Position
	if gi > 0 {
		prev := groups[gi-1]
		if pos-prev[len(prev)-1].Position < l.cfg.IsolationGap {
			return false
		}
	}
	if gi < len(groups)-1 {
		if groups[gi+1][0].Position-pos < l.cfg.IsolationGap {
			return false
		}
	}
	return true
}

func laneFor(size, member, rotation int) int {
	switch size {
	case 1:
		return centerLane
	case 2:
		if member == 0 {
			return 0
		}
		return 2
	case 3:
		return member
	}
	return (member + rotation) % laneCount
}
