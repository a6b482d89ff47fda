package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"ridedash/internal/analysis"
	"ridedash/internal/config"
	"ridedash/internal/service"
	"ridedash/internal/store"
	"ridedash/internal/tui"
)

// zoneBarWidth is the width of a 100% zone bar
const zoneBarWidth = 40

// ridesCmd lists stored rides.
var ridesCmd = &cobra.Command{
	Use:   "rides",
	Short: "List stored rides with their metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		q, cfg, closeDB, err := offlineQuery(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		rides, err := q.ListRides(flags.limit, flags.offset)
		if err != nil {
			return err
		}
		total, err := q.TotalRides()
		if err != nil {
			return err
		}
		return writeRideTable(cmd.OutOrStdout(), tui.NewUnits(cfg.Display), rides, total)
	},
}

// rideCmd prints the analysis of one stored ride.
var rideCmd = &cobra.Command{
	Use:   "ride <id>",
	Short: "Show metrics, zones and a power chart for one ride",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ride id %q", args[0])
		}

		q, cfg, closeDB, err := offlineQuery(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		detail, err := q.RideDetail(id)
		if err != nil {
			return err
		}
		return writeRideReport(cmd.OutOrStdout(), tui.NewUnits(cfg.Display), detail)
	},
}

// offlineQuery opens the database for commands that never touch Strava
func offlineQuery(cmd *cobra.Command) (*service.QueryService, *config.Config, func(), error) {
	cfg, err := loadConfig(cmd.OutOrStdout(), false)
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := openDB()
	if err != nil {
		return nil, nil, nil, err
	}
	q := service.NewQueryService(db, cfg.Athlete.AnalysisConfig())
	return q, cfg, func() { _ = db.Close() }, nil
}

func writeRideTable(w io.Writer, units tui.Units, rides []store.RideWithMetrics, total int) error {
	if len(rides) == 0 {
		_, err := fmt.Fprintln(w, "No rides stored. Run 'ridedash sync' or 'ridedash analyze --save <file.fit>'.")
		return err
	}

	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"ID", "Date", "Name", "Distance", "Time", "NP", "IF", "TSS", "EF"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(rides))
	for _, r := range rides {
		np, ifactor, tss, ef := "-", "-", "-", "-"
		if r.Metrics != nil {
			d := r.Metrics.Rounded()
			if d.NormalizedPower > 0 {
				np = strconv.Itoa(d.NormalizedPower)
				ifactor = fmt.Sprintf("%.2f", d.IntensityFactor)
				tss = strconv.Itoa(d.TrainingStressScore)
			}
			if d.EfficiencyFactor > 0 {
				ef = fmt.Sprintf("%.2f", d.EfficiencyFactor)
			}
		}
		data = append(data, []string{
			strconv.FormatInt(r.ID, 10),
			r.StartDateLocal.Format("2006-01-02"),
			r.Name,
			units.FormatDistance(r.Distance),
			service.FormatDuration(r.MovingTime),
			np, ifactor, tss, ef,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d of %d rides\n", len(rides), total)
	return err
}

func writeRideReport(w io.Writer, units tui.Units, d *service.RideDetail) error {
	m := d.Display
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", d.Summary.Name)
	if !d.Summary.StartDate.IsZero() {
		fmt.Fprintf(&b, "%s\n", d.Summary.StartDate.Format("Mon Jan 2, 2006 15:04"))
	}
	fmt.Fprintf(&b, "%s  %s  %s climbing\n\n",
		units.FormatDistance(d.Summary.Distance),
		service.FormatDuration(d.Summary.MovingTime),
		units.FormatElevation(d.Summary.TotalElevationGain),
	)

	fmt.Fprintf(&b, "NP %d W  IF %.2f  VI %.2f  TSS %d\n",
		m.NormalizedPower, m.IntensityFactor, m.VariabilityIndex, m.TrainingStressScore)
	fmt.Fprintf(&b, "EF %.2f  HR drift %.1f%%\n", m.EfficiencyFactor, m.HRDriftPct)

	writeZones(&b, fmt.Sprintf("Power zones (FTP %.0f W)", d.FTP), d.Metrics.PowerZones)
	writeZones(&b, fmt.Sprintf("Heart rate zones (max %.0f bpm)", d.MaxHR), d.Metrics.HRZones)

	if len(d.PowerCurve) > 0 {
		b.WriteString("\nPeak power\n")
		for _, p := range d.PowerCurve {
			fmt.Fprintf(&b, "  %-4s %4.0f W\n", p.Label(), p.Watts)
		}
	}

	if d.HasPower() && len(d.PowerData) >= 2 {
		b.WriteString("\nPower (W, per minute)\n")
		b.WriteString(asciigraph.Plot(d.PowerData, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Precision(0)))
		b.WriteString("\n")
	}
	if !d.HasStreams {
		b.WriteString("\nNo stream data stored for this ride.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeZones(b *strings.Builder, title string, dist analysis.Distribution) {
	fmt.Fprintf(b, "\n%s\n", title)
	if dist.Empty() {
		b.WriteString("  no data\n")
		return
	}
	for _, z := range dist {
		bar := strings.Repeat("#", int(z.Percent/100*zoneBarWidth))
		fmt.Fprintf(b, "  %-3s %5.1f%% %s\n", z.Zone, z.Percent, bar)
	}
}
