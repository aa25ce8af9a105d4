package dynamics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLayout(t *testing.T, jitter JitterSource) *LayoutEngine {
	t.Helper()
	return NewLayoutEngine(DefaultConfig(), jitter)
}

func points(positions ...float64) []LayoutPoint {
	out := make([]LayoutPoint, len(positions))
	for i, p := range positions {
		out[i] = LayoutPoint{RunnerNumber: i + 1, Position: p}
	}
	return out
}

// TestLayoutEmptyAndSingle tests degenerate fields
func TestLayoutEmptyAndSingle(t *testing.T) {
	l := newTestLayout(t, nil)

	assert.Empty(t, l.Layout(nil))

	entries := l.Layout(points(4))
	require.Len(t, entries, 1)
	assert.Equal(t, 50.0, entries[0].X)
	assert.Equal(t, 1, entries[0].Lane)
	assert.False(t, entries[0].Isolated)
}

// TestLayoutGroupsAndIsolation tests clustering, lanes and isolated runners
func TestLayoutGroupsAndIsolation(t *testing.T) {
	l := newTestLayout(t, FixedJitter(0))

	entries := l.Layout(points(1, 1.5, 2, 8, 15))
	require.Len(t, entries, 5)

	wantX := []float64{39, 42, 45, 53, 61}
	wantGroup := []int{0, 0, 0, 1, 2}
	wantLane := []int{0, 1, 2, 1, 1}
	wantIsolated := []bool{false, false, false, true, true}

	for i, e := range entries {
		assert.Equal(t, i+1, e.RunnerNumber)
		assert.InDelta(t, wantX[i], e.X, 1e-9)
		assert.Equal(t, wantGroup[i], e.Group)
		assert.Equal(t, wantLane[i], e.Lane)
		assert.Equal(t, wantIsolated[i], e.Isolated)
	}
}

// TestLayoutLaneRotation tests lane assignment for large groups
func TestLayoutLaneRotation(t *testing.T) {
	l := newTestLayout(t, FixedJitter(0))

	entries := l.Layout(points(1, 1.2, 1.4, 1.6, 1.8, 10, 10.2, 10.4, 10.6, 10.8))
	require.Len(t, entries, 10)

	lanes := make([]int, len(entries))
	for i, e := range entries {
		lanes[i] = e.Lane
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 1, 2, 0, 1, 2}, lanes)
}

// TestLayoutTwoRunnerGroup tests that a pair takes the outer lanes
func TestLayoutTwoRunnerGroup(t *testing.T) {
	l := newTestLayout(t, FixedJitter(0))

	entries := l.Layout(points(3, 3.5))
	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].Lane)
	assert.Equal(t, 2, entries[1].Lane)
	assert.InDelta(t, 48.5, entries[0].X, 1e-9)
	assert.InDelta(t, 51.5, entries[1].X, 1e-9)
}

// TestLayoutScalesWideFields tests that a spread field fits the canvas
func TestLayoutScalesWideFields(t *testing.T) {
	l := newTestLayout(t, FixedJitter(0))

	positions := make([]float64, 30)
	for i := range positions {
		positions[i] = float64(1 + 2*i)
	}
	entries := l.Layout(points(positions...))
	require.Len(t, entries, 30)

	assert.InDelta(t, 2.0, entries[0].X, 1e-9)
	assert.InDelta(t, 98.0, entries[29].X, 1e-9)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].X, entries[i-1].X)
		assert.False(t, entries[i].Isolated)
	}
}

// TestLayoutDistinctCoordinates tests that jitter never stacks runners
func TestLayoutDistinctCoordinates(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		l := newTestLayout(t, NewSeededJitter(seed))

		positions := []float64{1, 1.4, 2.1, 2.3, 2.9, 3.5, 4.0, 4.6, 6.2, 6.5, 9, 9.1, 9.2, 12, 14.5, 15, 16, 18}
		entries := l.Layout(points(positions...))
		require.Len(t, entries, len(positions))

		seen := make(map[float64]bool)
		for i, e := range entries {
			assert.GreaterOrEqual(t, e.X, 2.0)
			assert.LessOrEqual(t, e.X, 98.0)
			assert.False(t, seen[e.X], "seed %d duplicate x %v", seed, e.X)
			seen[e.X] = true
			if i > 0 {
				assert.Greater(t, e.X, entries[i-1].X)
			}
		}
	}
}

// TestLayoutOrdersTies tests that equal positions are ordered by runner number
func TestLayoutOrdersTies(t *testing.T) {
	l := newTestLayout(t, FixedJitter(0))

	entries := l.Layout([]LayoutPoint{
		{RunnerNumber: 7, Position: 2},
		{RunnerNumber: 3, Position: 2},
		{RunnerNumber: 5, Position: 1},
	})
	require.Len(t, entries, 3)
	assert.Equal(t, 5, entries[0].RunnerNumber)
	assert.Equal(t, 3, entries[1].RunnerNumber)
	assert.Equal(t, 7, entries[2].RunnerNumber)
}
