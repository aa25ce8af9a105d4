package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/race-dynamics/internal/dynamics"
)

// TestSnapshotCommand tests the offline prediction command end to end
func TestSnapshotCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"snapshot",
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--input", filepath.Join("..", "..", "internal", "service", "testdata", "snapshot.json"),
	})

	require.NoError(t, rootCmd.Execute())

	var prediction dynamics.PacePrediction
	require.NoError(t, json.Unmarshal(out.Bytes(), &prediction))
	assert.Equal(t, "2024:0526:TOKYO:11", prediction.RaceKey)
	assert.Len(t, prediction.Predictions, 4)
}

// TestVersionCommand tests that version runs without configuration
func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "race-dynamics dev")
}
