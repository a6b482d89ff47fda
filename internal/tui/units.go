package tui

import (
	"fmt"

	"ridedash/internal/config"
	"ridedash/internal/service"
)

const metersPerKm = 1000.0

// Units formats distances, speeds and climbing in the rider's preferred system
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// IsMetric reports whether kilometers are preferred over miles
func (u Units) IsMetric() bool {
	return u.cfg.DistanceUnit == "km"
}

// FormatDistance formats meters as "12.3 mi" or "19.8 km"
func (u Units) FormatDistance(meters float64) string {
	return fmt.Sprintf("%.1f %s", u.Distance(meters), u.DistanceLabel())
}

// Distance converts meters to the preferred unit
func (u Units) Distance(meters float64) float64 {
	if u.IsMetric() {
		return meters / metersPerKm
	}
	return meters / service.MetersPerMile
}

// DistanceLabel returns "mi" or "km"
func (u Units) DistanceLabel() string {
	if u.IsMetric() {
		return "km"
	}
	return "mi"
}

// Speed converts m/s to mph or km/h
func (u Units) Speed(mps float64) float64 {
	if u.IsMetric() {
		return mps * service.MPSToKPH
	}
	return mps * service.MPSToMPH
}

// SpeedLabel returns "mph" or "km/h"
func (u Units) SpeedLabel() string {
	if u.IsMetric() {
		return "km/h"
	}
	return "mph"
}

// ConvertSpeedData converts a chart series from m/s
func (u Units) ConvertSpeedData(mps []float64) []float64 {
	out := make([]float64, len(mps))
	for i, v := range mps {
		out[i] = u.Speed(v)
	}
	return out
}

// FormatAverageSpeed formats the mean speed over a moving time
func (u Units) FormatAverageSpeed(meters float64, seconds int) string {
	if meters <= 0 || seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f %s", u.Speed(meters/float64(seconds)), u.SpeedLabel())
}

// Elevation converts meters to feet unless metric is preferred
func (u Units) Elevation(meters float64) float64 {
	if u.IsMetric() {
		return meters
	}
	return meters * service.FeetPerMeter
}

// ElevationLabel returns "ft" or "m"
func (u Units) ElevationLabel() string {
	if u.IsMetric() {
		return "m"
	}
	return "ft"
}

// FormatElevation formats a climb such as "1204 ft"
func (u Units) FormatElevation(meters float64) string {
	return fmt.Sprintf("%.0f %s", u.Elevation(meters), u.ElevationLabel())
}
