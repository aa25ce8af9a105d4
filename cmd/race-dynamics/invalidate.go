package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/race-dynamics/internal/models"
)

var (
	invalidateDate  string
	invalidateVenue string
	invalidateRace  int
)

func init() {
	invalidateCmd.Flags().StringVar(&invalidateDate, "date", "", "Race date (YYYY-MM-DD)")
	invalidateCmd.Flags().StringVar(&invalidateVenue, "venue", "", "Venue name; omit with --race to drop the whole day")
	invalidateCmd.Flags().IntVar(&invalidateRace, "race", 0, "Race number")
	_ = invalidateCmd.MarkFlagRequired("date")
}

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop cached predictions for a race or a whole race day",
	Example: `  race-dynamics invalidate --date 2024-05-26 --venue tokyo --race 11
  race-dynamics invalidate --date 2024-05-26`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		deps, err := setupDependencies(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		var removed int
		if invalidateVenue == "" && invalidateRace == 0 {
			date, err := time.Parse("2006-01-02", invalidateDate)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", invalidateDate, err)
			}
			removed, err = deps.service.InvalidateDate(ctx, date, requester())
			if err != nil {
				return err
			}
		} else {
			key, err := models.ParseRaceKey(invalidateDate, invalidateVenue, invalidateRace)
			if err != nil {
				return err
			}
			removed, err = deps.service.Invalidate(ctx, key, requester())
			if err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cached prediction(s)\n", removed)
		return nil
	},
}
