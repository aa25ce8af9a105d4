package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/race-dynamics/internal/dynamics"
	"github.com/yourusername/race-dynamics/internal/service"
)

var (
	snapshotInput  string
	snapshotOutput string
	snapshotPretty bool
)

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotInput, "input", "i", "-", "Snapshot JSON file, - for stdin")
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "-", "Prediction output file, - for stdout")
	snapshotCmd.Flags().BoolVar(&snapshotPretty, "pretty", false, "Indent the JSON output")
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Predict a race from a self-contained JSON snapshot, without a database",
	RunE: func(cmd *cobra.Command, args []string) error {
		engineCfg, err := dynamics.FromConfig(&cfg.Engine)
		if err != nil {
			return fmt.Errorf("invalid engine configuration: %w", err)
		}

		var in io.Reader = cmd.InOrStdin()
		if snapshotInput != "-" {
			f, err := os.Open(snapshotInput)
			if err != nil {
				return fmt.Errorf("failed to open snapshot: %w", err)
			}
			defer f.Close()
			in = f
		}

		snap, err := service.LoadSnapshot(in)
		if err != nil {
			return err
		}

		predictor, err := service.NewSnapshotPredictor(engineCfg, cfg.Engine.JitterSeed, appLog)
		if err != nil {
			return err
		}
		prediction, err := predictor.Predict(snap)
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if snapshotOutput != "-" {
			f, err := os.Create(snapshotOutput)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer f.Close()
			out = f
		}

		return writeJSON(out, prediction, snapshotPretty)
	},
}
