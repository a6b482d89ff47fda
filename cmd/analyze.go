package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ridedash/internal/fitfile"
	"ridedash/internal/service"
	"ridedash/internal/store"
	"ridedash/internal/tui"
)

// analyzeCmd runs the engine on a FIT file without Strava.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file.fit>",
	Short: "Analyze a FIT activity file from a bike computer",
	Long: `Decode a FIT activity file and print the same analysis shown for
synced rides. With --save the ride, its streams and metrics are stored
so it appears in the dashboard and can be exported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.OutOrStdout(), false)
		if err != nil {
			return err
		}

		ride, err := fitfile.ReadFile(args[0])
		if err != nil {
			return err
		}
		var db *store.DB
		if flags.save {
			if db, err = openDB(); err != nil {
				return err
			}
			defer db.Close()
		}

		q := service.NewQueryService(db, cfg.Athlete.AnalysisConfig())
		detail := q.AnalyzeStreams(ride.Summary, ride.Streams)
		if err := writeRideReport(cmd.OutOrStdout(), tui.NewUnits(cfg.Display), detail); err != nil {
			return err
		}

		if db == nil {
			return nil
		}
		stored := ride.StoredRide()
		if err := saveImported(db, stored, ride, detail, q.Engine().Fingerprint()); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "\nSaved as ride %d\n", stored.ID)
		return err
	},
}

// saveImported stores an imported ride with its streams and metrics
func saveImported(db *store.DB, stored *store.Ride, ride *fitfile.Ride, detail *service.RideDetail, fingerprint string) error {
	if err := db.UpsertRide(stored); err != nil {
		return fmt.Errorf("saving ride: %w", err)
	}
	if err := db.SaveStreams(stored.ID, ride.Streams); err != nil {
		return fmt.Errorf("saving streams: %w", err)
	}
	if err := db.SaveMetrics(stored.ID, detail.Metrics, fingerprint); err != nil {
		return fmt.Errorf("saving metrics: %w", err)
	}
	return nil
}
