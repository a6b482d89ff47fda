package analysis

import "time"

// Performance management time constants in days
const (
	CTLDays  = 42
	ATLDays  = 7
	RampDays = 7
)

// DailyLoad is the summed TSS of one day's rides
type DailyLoad struct {
	Date time.Time
	TSS  float64
}

// FitnessMetrics is the training load at the end of one day
type FitnessMetrics struct {
	Date     time.Time `json:"date"`
	CTL      float64   `json:"ctl"`       // fitness, 42-day EMA of TSS
	ATL      float64   `json:"atl"`       // fatigue, 7-day EMA of TSS
	TSB      float64   `json:"tsb"`       // form, CTL - ATL
	RampRate float64   `json:"ramp_rate"` // CTL gained over the last week
}

// CalculateFitnessTrend runs the CTL/ATL averages from the first to the last
// loaded day. Days without rides count as zero stress and loads on the same
// day add up. Non-finite loads are ignored. The input is not modified.
func CalculateFitnessTrend(dailyLoads []DailyLoad) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	byDay := make(map[time.Time]float64, len(dailyLoads))
	first, last := day(dailyLoads[0].Date), day(dailyLoads[0].Date)
	for _, dl := range dailyLoads {
		d := day(dl.Date)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
		if isFinite(dl.TSS) {
			byDay[d] += dl.TSS
		}
	}

	ctlWeight := 2.0 / (CTLDays + 1.0)
	atlWeight := 2.0 / (ATLDays + 1.0)

	var trend []FitnessMetrics
	var ctl, atl float64
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		tss := byDay[d]
		ctl += ctlWeight * (tss - ctl)
		atl += atlWeight * (tss - atl)

		m := FitnessMetrics{Date: d, CTL: ctl, ATL: atl, TSB: ctl - atl}
		if n := len(trend); n >= RampDays {
			m.RampRate = ctl - trend[n-RampDays].CTL
		} else {
			m.RampRate = ctl
		}
		trend = append(trend, m)
	}
	return trend
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormDescription describes a TSB value the way a coach would read it
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh, fitness may be slipping"
	case tsb > 5:
		return "Fresh, good day for a race or FTP test"
	case tsb > -10:
		return "Neutral, ready for quality training"
	case tsb > -30:
		return "Productive fatigue, building fitness"
	default:
		return "Overreaching, schedule recovery"
	}
}
