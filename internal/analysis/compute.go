package analysis

import (
	"fmt"
	"strings"
)

// Athlete defaults used when nothing is configured
const (
	DefaultFTP         = 222.0 // watts
	DefaultReferenceHR = 200.0 // bpm
)

// Config carries the athlete-specific inputs of an analysis. It is passed per
// call so rides for different athletes can be analyzed side by side.
type Config struct {
	FTP             float64   // watts
	ReferenceHR     float64   // max or reference heart rate, bpm
	PowerThresholds []float64 // ratios of FTP
	HRThresholds    []float64 // ratios of ReferenceHR
	Precision       int       // decimals in zone percentages; 0 means DefaultPrecision, WholePercent rounds to integers
}

// DefaultConfig returns the stock athlete configuration
func DefaultConfig() Config {
	return Config{
		FTP:             DefaultFTP,
		ReferenceHR:     DefaultReferenceHR,
		PowerThresholds: append([]float64(nil), DefaultPowerThresholds...),
		HRThresholds:    append([]float64(nil), DefaultHRThresholds...),
		Precision:       DefaultPrecision,
	}
}

// PowerZones returns the classifier for power samples. Empty thresholds
// mean the defaults. The classifier owns a copy of its thresholds.
func (c Config) PowerZones() ZoneClassifier {
	return ZoneClassifier{Thresholds: thresholdsOr(c.PowerThresholds, DefaultPowerThresholds), Precision: c.zonePrecision()}
}

// HRZones returns the classifier for heart rate samples
func (c Config) HRZones() ZoneClassifier {
	return ZoneClassifier{Thresholds: thresholdsOr(c.HRThresholds, DefaultHRThresholds), Precision: c.zonePrecision()}
}

func thresholdsOr(t, fallback []float64) []float64 {
	if len(t) == 0 {
		t = fallback
	}
	return append([]float64(nil), t...)
}

// zonePrecision resolves Precision: zero is DefaultPrecision and
// WholePercent rounds to whole numbers
func (c Config) zonePrecision() int {
	switch {
	case c.Precision == 0:
		return DefaultPrecision
	case c.Precision < 0:
		return 0
	}
	return c.Precision
}

// Fingerprint identifies the inputs that change computed metrics.
// Stored metrics with a different fingerprint are stale.
func (c Config) Fingerprint() string {
	return fmt.Sprintf("ftp=%g;hr=%g;pz=%s;hz=%s;p=%d",
		c.FTP, c.ReferenceHR, joinRatios(c.PowerZones().Thresholds), joinRatios(c.HRZones().Thresholds), c.zonePrecision())
}

func joinRatios(r []float64) string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, ",")
}

// RideMetrics is the complete analysis result for one ride.
// Consumers treat it as read-only and never recompute metrics from raw streams.
type RideMetrics struct {
	Metrics
	PowerZones Distribution `json:"power_zone_distribution"`
	HRZones    Distribution `json:"hr_zone_distribution"`
}

// Analyze normalizes the raw streams and computes every ride metric
func Analyze(streams RawStreamSet, summary ActivitySummary, cfg Config) RideMetrics {
	return AnalyzeTimeline(Normalize(streams), summary, cfg)
}

// AnalyzeTimeline computes every ride metric from an already normalized timeline.
// Scalar metrics and zone distributions only read the timeline.
func AnalyzeTimeline(tl Timeline, summary ActivitySummary, cfg Config) RideMetrics {
	return RideMetrics{
		Metrics:    ComputeMetrics(tl, summary, cfg.FTP),
		PowerZones: cfg.PowerZones().Classify(Present(tl.Watts()), cfg.FTP),
		HRZones:    cfg.HRZones().Classify(Present(tl.Heartrate()), cfg.ReferenceHR),
	}
}

// DisplayMetrics are ride metrics rounded the way they are shown to a rider
type DisplayMetrics struct {
	NormalizedPower     int     `json:"normalized_power"`
	IntensityFactor     float64 `json:"intensity_factor"`
	VariabilityIndex    float64 `json:"variability_index"`
	TrainingStressScore int     `json:"training_stress_score"`
	EfficiencyFactor    float64 `json:"efficiency_factor"`
	HRDriftPct          float64 `json:"hr_drift_pct"`
}

// Rounded returns the display form of the scalar metrics
func (m Metrics) Rounded() DisplayMetrics {
	return DisplayMetrics{
		NormalizedPower:     int(roundTo(m.NormalizedPower, 0)),
		IntensityFactor:     roundTo(m.IntensityFactor, 2),
		VariabilityIndex:    roundTo(m.VariabilityIndex, 2),
		TrainingStressScore: int(roundTo(m.TrainingStressScore, 0)),
		EfficiencyFactor:    roundTo(m.EfficiencyFactor, 2),
		HRDriftPct:          roundTo(m.HRDriftPct, 1),
	}
}

// DriftAssessment returns a human-readable reading of HR drift
func DriftAssessment(drift float64) string {
	switch {
	case drift < 0:
		return "Heart rate fell relative to power"
	case drift < 3:
		return "Excellent aerobic durability"
	case drift < 5:
		return "Good aerobic durability"
	case drift < 8:
		return "Some fatigue late in the ride"
	default:
		return "Significant cardiovascular drift"
	}
}

// IntensityAssessment describes a ride by its intensity factor
func IntensityAssessment(intensity float64) string {
	switch {
	case intensity == 0:
		return "No power data"
	case intensity < 0.75:
		return "Recovery / endurance"
	case intensity < 0.85:
		return "Tempo"
	case intensity < 0.95:
		return "Sweet spot"
	case intensity < 1.05:
		return "Threshold"
	default:
		return "Above threshold"
	}
}
