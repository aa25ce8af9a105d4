package dynamics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-dynamics/internal/config"
)

// TestDefaultConfigValid tests the stock configuration
func TestDefaultConfigValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

// TestFromConfig tests overriding defaults from application config
func TestFromConfig(t *testing.T) {
	cfg, err := FromConfig(&config.EngineConfig{
		DistanceBand:      400,
		MaxSamples:        6,
		PoorFinishDeficit: 2.5,
		LongStraight:      500,
		GroupThreshold:    1.5,
	})
	require.NoError(t, err)

	assert.Equal(t, 400, cfg.DistanceBand)
	assert.Equal(t, 6, cfg.MaxSamples)
	assert.Equal(t, 2.5, cfg.PoorFinish.DeficitThreshold)
	assert.Equal(t, 500.0, cfg.Course.LongStraight)
	assert.Equal(t, 1.5, cfg.Layout.GroupThreshold)
	assert.Equal(t, 5, cfg.PoorFinish.RecentWindow)
	assert.Equal(t, 320.0, cfg.Course.ShortStraight)

	_, err = FromConfig(nil)
	assert.Error(t, err)
}

// TestConfigValidate tests rejected parameter combinations
func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero band", func(c *Config) { c.DistanceBand = 0 }},
		{"inverted confidence", func(c *Config) { c.MediumConfidenceSamples = 6 }},
		{"occurrences exceed window", func(c *Config) { c.PoorFinish.MinOccurrences = 6 }},
		{"deviation range excludes mean", func(c *Config) { c.DeviationMin = 55 }},
		{"straights overlap", func(c *Config) { c.Course.ShortStraight = 460 }},
		{"isolation below threshold", func(c *Config) { c.Layout.IsolationGap = 0.5 }},
		{"jitter too wide", func(c *Config) { c.Layout.JitterAmplitude = 1.5 }},
		{"center outside canvas", func(c *Config) { c.Layout.CenterX = 99 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// TestParseRunningStyle tests label parsing
func TestParseRunningStyle(t *testing.T) {
	style, err := ParseRunningStyle(" Sashi ")
	require.NoError(t, err)
	assert.Equal(t, StyleStalker, style)

	style, err = ParseRunningStyle("escape")
	require.NoError(t, err)
	assert.Equal(t, StyleEscape, style)

	_, err = ParseRunningStyle("sprinter")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
