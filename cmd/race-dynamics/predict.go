package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/yourusername/race-dynamics/internal/models"
	"github.com/yourusername/race-dynamics/internal/service"
)

var (
	predictDate   string
	predictVenue  string
	predictRace   int
	predictForce  bool
	predictPretty bool
)

func init() {
	predictCmd.Flags().StringVar(&predictDate, "date", "", "Race date (YYYY-MM-DD)")
	predictCmd.Flags().StringVar(&predictVenue, "venue", "", "Venue name")
	predictCmd.Flags().IntVar(&predictRace, "race", 0, "Race number")
	predictCmd.Flags().BoolVar(&predictForce, "force", false, "Recalculate even when a cached prediction exists")
	predictCmd.Flags().BoolVar(&predictPretty, "pretty", false, "Indent the JSON output")
	_ = predictCmd.MarkFlagRequired("date")
	_ = predictCmd.MarkFlagRequired("venue")
	_ = predictCmd.MarkFlagRequired("race")
}

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict a stored race",
	Example: `  race-dynamics predict --date 2024-05-26 --venue tokyo --race 11
  race-dynamics predict --date 2024-05-26 --venue tokyo --race 11 --force --pretty`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := models.ParseRaceKey(predictDate, predictVenue, predictRace)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		deps, err := setupDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		prediction, err := deps.service.Predict(ctx, key, service.PredictOptions{
			ForceRecalculate: predictForce,
			RequestedBy:      requester(),
		})
		if err != nil {
			return fmt.Errorf("prediction for %s failed: %w", key, err)
		}

		return writeJSON(cmd.OutOrStdout(), prediction, predictPretty)
	},
}

// requester names the operator for audit logs
func requester() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "cli"
}
