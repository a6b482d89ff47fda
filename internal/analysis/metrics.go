package analysis

import "time"

const secondsPerHour = 3600.0

// ActivitySummary is the upstream summary of a ride. It is read, never modified.
type ActivitySummary struct {
	Name                 string
	StartDate            time.Time
	Distance             float64 // meters
	TotalElevationGain   float64 // meters
	MovingTime           int     // seconds
	AverageWatts         float64 // 0 when unknown
	AverageHeartrate     float64 // 0 when unknown
	WeightedAverageWatts float64 // upstream NP estimate, 0 when unknown
}

// Metrics holds the scalar training metrics of a ride
type Metrics struct {
	NormalizedPower     float64 `json:"normalized_power"`
	IntensityFactor     float64 `json:"intensity_factor"`
	VariabilityIndex    float64 `json:"variability_index"`
	TrainingStressScore float64 `json:"training_stress_score"`
	EfficiencyFactor    float64 `json:"efficiency_factor"`
	HRDriftPct          float64 `json:"hr_drift_pct"`

	// Averages VI and EF were derived from: the summary value when present,
	// else the channel mean
	AverageWatts     float64 `json:"average_watts"`
	AverageHeartrate float64 `json:"average_heartrate"`
}

// ComputeMetrics derives NP, IF, VI, TSS, EF and HR drift from a timeline.
// An empty timeline means no data and yields all zeros.
func ComputeMetrics(tl Timeline, summary ActivitySummary, ftp float64) Metrics {
	if len(tl) == 0 {
		return Metrics{}
	}

	watts := tl.Watts()
	hr := tl.Heartrate()

	np := NormalizedPower(watts)
	avgWatts := positiveOr(summary.AverageWatts, mean(watts))
	avgHR := positiveOr(summary.AverageHeartrate, mean(hr))
	intensity := IntensityFactor(np, ftp)

	return Metrics{
		NormalizedPower:     np,
		IntensityFactor:     intensity,
		VariabilityIndex:    safeDiv(np, avgWatts),
		TrainingStressScore: TrainingStressScore(float64(summary.MovingTime), intensity),
		EfficiencyFactor:    safeDiv(avgWatts, avgHR),
		HRDriftPct:          HRDrift(hr, watts),
		AverageWatts:        avgWatts,
		AverageHeartrate:    avgHR,
	}
}

// IntensityFactor is NP relative to FTP
func IntensityFactor(np, ftp float64) float64 {
	if np <= 0 || ftp <= 0 {
		return 0
	}
	return safeDiv(np, ftp)
}

// TrainingStressScore is hours * IF^2 * 100; one hour at FTP scores 100
func TrainingStressScore(movingSeconds, intensity float64) float64 {
	hours := safeDiv(movingSeconds, secondsPerHour)
	if hours <= 0 {
		return 0
	}
	tss := hours * intensity * intensity * 100
	if !isFinite(tss) {
		return 0
	}
	return tss
}

// HRDrift measures cardiovascular decoupling within one effort.
//
// Both channels are split at the midpoint index and the HR:power ratio of each
// half is compared. Positive drift means more heart rate per watt late in the
// ride. Returns 0 when either channel has no readings or a half has no ratio.
func HRDrift(hr, watts []*float64) float64 {
	n := len(hr)
	if len(watts) < n {
		n = len(watts)
	}
	if n == 0 || len(Present(hr[:n])) == 0 || len(Present(watts[:n])) == 0 {
		return 0
	}

	mid := n / 2
	first := safeDiv(mean(hr[:mid]), mean(watts[:mid]))
	second := safeDiv(mean(hr[mid:n]), mean(watts[mid:n]))
	if first == 0 || second == 0 {
		return 0
	}
	return safeDiv(second-first, first) * 100
}
