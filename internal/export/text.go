package export

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"ridedash/internal/service"
)

// TextHeader is the column header of the stream section
const TextHeader = "time(s),power(W),heartrate(bpm),speed(mph),cadence(rpm),distance(mi)"

// WriteText writes the plain-text ride summary followed by the stream rows.
// Absent samples are written as empty cells.
func WriteText(w io.Writer, r Ride) error {
	bw := bufio.NewWriter(w)
	s := r.Summary
	m := r.Metrics.Rounded()

	fmt.Fprintf(bw, "Ride Summary: %s\n", s.Name)
	fmt.Fprintf(bw, "Date: %s\n", r.StartDate.Format("Jan 2, 2006 3:04 PM"))
	fmt.Fprintf(bw, "Distance: %.2f mi\n", s.Distance/service.MetersPerMile)
	fmt.Fprintf(bw, "Elevation Gain: %.0f ft\n", s.TotalElevationGain*service.FeetPerMeter)
	fmt.Fprintf(bw, "Duration: %.0f min\n", float64(s.MovingTime)/service.SecondsPerMinute)
	fmt.Fprintf(bw, "Avg Power: %.0f W\n", r.Metrics.AverageWatts)
	fmt.Fprintf(bw, "NP: %d W\n", m.NormalizedPower)
	fmt.Fprintf(bw, "IF: %.2f\n", m.IntensityFactor)
	fmt.Fprintf(bw, "VI: %.2f\n", m.VariabilityIndex)
	fmt.Fprintf(bw, "TSS: %d\n", m.TrainingStressScore)
	fmt.Fprintf(bw, "Avg HR: %.0f bpm\n", r.Metrics.AverageHeartrate)
	fmt.Fprintf(bw, "EF (P/HR): %.2f\n", m.EfficiencyFactor)
	fmt.Fprintf(bw, "HR Drift: %.1f%%\n", m.HRDriftPct)
	fmt.Fprintf(bw, "\n--- Stream Data ---\n")
	fmt.Fprintln(bw, TextHeader)

	for _, p := range r.Timeline {
		fmt.Fprintf(bw, "%s,%s,%s,%s,%s,%s\n",
			strconv.FormatFloat(p.T, 'f', -1, 64),
			cell(p.Watts, 1, 0),
			cell(p.Heartrate, 1, 0),
			cell(p.Speed, service.MPSToMPH, 2),
			cell(p.Cadence, 1, 0),
			cell(p.Distance, 1/service.MetersPerMile, 3),
		)
	}
	return bw.Flush()
}

// cell formats a scaled reading, or "" when absent
func cell(v *float64, scale float64, decimals int) string {
	if v == nil {
		return ""
	}
	if decimals == 0 {
		return strconv.FormatFloat(*v*scale, 'f', -1, 64)
	}
	return strconv.FormatFloat(*v*scale, 'f', decimals, 64)
}
