package dynamics

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-dynamics/internal/models"
)

func testRunner(number int, style RunningStyle, late, front, early float64, samples int) RunnerProfile {
	r := RunnerProfile{
		Number:     number,
		Name:       fmt.Sprintf("Runner %d", number),
		PostNumber: number,
		Style:      style,
		History: RunnerHistory{
			SampleCount: samples,
			Confidence:  ConfidenceHigh,
		},
	}
	if samples > 0 {
		r.History.AvgLateAbility = ptr(late)
		r.History.AvgFrontSectionTime = ptr(front)
		r.History.AvgEarlyCornerPosition = ptr(early)
	} else {
		r.History.Confidence = ConfidenceLow
	}
	return r
}

func testRace() RaceInput {
	return RaceInput{
		RaceKey:  "2024:0526:TOKYO:11",
		Distance: 2400,
		Runners: []RunnerProfile{
			testRunner(1, StyleEscape, 34.8, 35.6, 1.2, 6),
			testRunner(2, StyleLead, 35.2, 35.9, 2.8, 6),
			testRunner(3, StyleStalker, 34.1, 36.4, 5.5, 4),
			testRunner(4, StyleStalker, 35.9, 36.3, 6.1, 8),
			testRunner(5, StyleCloser, 33.6, 36.9, 9.4, 7),
			testRunner(6, StyleCloser, 36.4, 37.1, 10.2, 5),
			testRunner(7, StyleLead, 35.5, 35.8, 3.3, 3),
			testRunner(8, StyleStalker, 0, 0, 0, 0),
		},
		Course: &models.CourseProfile{
			Venue:             "TOKYO",
			Surface:           "turf",
			Distance:          2400,
			StraightLength:    ptr(525.9),
			GradientPosition:  ptr(models.GradientFinish),
			StandardFrontTime: ptr(36.0),
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig(), FixedJitter(0), nil)
	require.NoError(t, err)
	return e
}

// TestPredictDeterministic tests byte-identical output for identical input
func TestPredictDeterministic(t *testing.T) {
	first, err := newTestEngine(t).Predict(testRace())
	require.NoError(t, err)
	second, err := newTestEngine(t).Predict(testRace())
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

// TestPredictResult tests the shape and bounds of a full prediction
func TestPredictResult(t *testing.T) {
	race := testRace()
	result, err := newTestEngine(t).Predict(race)
	require.NoError(t, err)

	assert.Equal(t, race.RaceKey, result.RaceKey)
	assert.Equal(t, 3, result.FrontRunners)
	assert.Equal(t, race.Course, result.CourseInfo)
	require.Len(t, result.Predictions, len(race.Runners))
	assert.Len(t, result.Layout.Early, len(race.Runners))
	assert.Len(t, result.Layout.Late, len(race.Runners))

	n := float64(len(race.Runners))
	var devSum float64
	for i, p := range result.Predictions {
		assert.Equal(t, race.Runners[i].Number, p.RunnerNumber)
		assert.GreaterOrEqual(t, p.EarlyPosition, 1.0)
		assert.LessOrEqual(t, p.EarlyPosition, n)
		assert.GreaterOrEqual(t, p.LatePosition, 1.0)
		assert.LessOrEqual(t, p.LatePosition, n)
		devSum += p.DeviationScore
	}
	assert.InDelta(t, 50.0, devSum/n, 0.1)

	unknown := result.Predictions[7]
	assert.Equal(t, 50.0, unknown.DeviationScore)
	assert.Equal(t, ConfidenceLow, unknown.Confidence)

	for _, entry := range append(result.Layout.Early, result.Layout.Late...) {
		assert.GreaterOrEqual(t, entry.X, 2.0)
		assert.LessOrEqual(t, entry.X, 98.0)
	}
}

// TestPredictRoundsToOneDecimal tests output rounding
func TestPredictRoundsToOneDecimal(t *testing.T) {
	result, err := newTestEngine(t).Predict(testRace())
	require.NoError(t, err)

	for _, p := range result.Predictions {
		for _, v := range []float64{p.DeviationScore, p.EarlyPosition, p.LatePosition} {
			assert.Equal(t, round1(v), v)
		}
	}
	if result.AvgFrontSectionTime != nil {
		assert.Equal(t, round1(*result.AvgFrontSectionTime), *result.AvgFrontSectionTime)
	}
}

// TestPredictFieldAverageFrontTime tests that the reported early pace is the field average
func TestPredictFieldAverageFrontTime(t *testing.T) {
	e := newTestEngine(t)

	race := RaceInput{
		RaceKey: "2024:0526:TOKYO:02",
		Runners: []RunnerProfile{
			testRunner(1, StyleStalker, 35, 36, 3, 4),
			testRunner(2, StyleCloser, 35, 37, 5, 4),
			testRunner(3, StyleCloser, 35, 38, 7, 4),
		},
	}

	result, err := e.Predict(race)
	require.NoError(t, err)
	assert.Equal(t, 0, result.FrontRunners)
	require.NotNil(t, result.AvgFrontSectionTime)
	assert.Equal(t, 37.0, *result.AvgFrontSectionTime)
	assert.Nil(t, result.FrontRunnerAvgTime)

	race.Runners[0].Style = StyleEscape
	result, err = e.Predict(race)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FrontRunners)
	require.NotNil(t, result.AvgFrontSectionTime)
	assert.Equal(t, 37.0, *result.AvgFrontSectionTime)
	require.NotNil(t, result.FrontRunnerAvgTime)
	assert.Equal(t, 36.0, *result.FrontRunnerAvgTime)
}

// TestPredictMissingEarlyPosition tests the field-average fallback
func TestPredictMissingEarlyPosition(t *testing.T) {
	race := RaceInput{
		RaceKey: "2024:0526:TOKYO:01",
		Runners: []RunnerProfile{
			testRunner(1, StyleEscape, 35, 35, 1, 3),
			testRunner(2, StyleCloser, 36, 36, 5, 3),
			testRunner(3, StyleStalker, 0, 0, 0, 0),
			testRunner(4, StyleStalker, 0, 0, 0, 0),
			testRunner(5, StyleStalker, 0, 0, 0, 0),
		},
	}
	result, err := newTestEngine(t).Predict(race)
	require.NoError(t, err)

	assert.Equal(t, 3.0, result.Predictions[2].EarlyPosition)
	assert.Equal(t, 1.0, result.Predictions[0].EarlyPosition)
}

// TestPredictSingleRunner tests a one-runner field
func TestPredictSingleRunner(t *testing.T) {
	race := RaceInput{
		RaceKey: "2024:0526:TOKYO:02",
		Runners: []RunnerProfile{testRunner(1, StyleCloser, 35, 35, 4, 6)},
	}
	result, err := newTestEngine(t).Predict(race)
	require.NoError(t, err)

	assert.Equal(t, PaceMiddle, result.ExpectedPace)
	require.Len(t, result.Predictions, 1)
	assert.Equal(t, 1.0, result.Predictions[0].EarlyPosition)
	assert.Equal(t, 1.0, result.Predictions[0].LatePosition)
	assert.Equal(t, 50.0, result.Layout.Early[0].X)
	assert.Equal(t, 50.0, result.Layout.Late[0].X)
}

// TestPredictInvalidInput tests that bad input fails before any computation
func TestPredictInvalidInput(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name   string
		mutate func(r *RaceInput)
	}{
		{"no runners", func(r *RaceInput) { r.Runners = nil }},
		{"missing key", func(r *RaceInput) { r.RaceKey = "" }},
		{"unknown style", func(r *RaceInput) { r.Runners[2].Style = "frontish" }},
		{"duplicate number", func(r *RaceInput) { r.Runners[3].Number = 1 }},
		{"zero post", func(r *RaceInput) { r.Runners[0].PostNumber = 0 }},
		{"negative weight", func(r *RaceInput) { r.Runners[0].Weight = ptr(-55.0) }},
		{"NaN front time", func(r *RaceInput) { r.Runners[0].History.AvgFrontSectionTime = ptr(math.NaN()) }},
		{"infinite front time", func(r *RaceInput) { r.Runners[1].History.AvgFrontSectionTime = ptr(math.Inf(1)) }},
		{"NaN late ability", func(r *RaceInput) { r.Runners[2].History.AvgLateAbility = ptr(math.NaN()) }},
		{"NaN early position", func(r *RaceInput) { r.Runners[3].History.AvgEarlyCornerPosition = ptr(math.NaN()) }},
		{"infinite worst deficit", func(r *RaceInput) { r.Runners[4].History.PoorFinish.WorstDeficit = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			race := testRace()
			tt.mutate(&race)
			result, err := e.Predict(race)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

// TestNewEngineRejectsBadConfig tests config validation at construction
func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout.JitterAmplitude = 2.0

	_, err := NewEngine(cfg, nil, nil)
	assert.Error(t, err)
}
