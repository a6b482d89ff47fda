package analysis

import (
	"math"
	"strconv"
)

// Standard peak power durations in seconds
const (
	Duration5s  = 5
	Duration1m  = 60
	Duration5m  = 300
	Duration20m = 1200

	// FTPFactor converts the best 20 minute power into an FTP estimate
	FTPFactor = 0.95
)

// PeakDurations are the durations tracked in a ride's power curve
var PeakDurations = []int{Duration5s, Duration1m, Duration5m, Duration20m}

// PeakPower is the best mean power sustained over a duration
type PeakPower struct {
	DurationSeconds int     `json:"duration_s"`
	Watts           float64 `json:"watts"`
	StartIndex      int     `json:"start_index"`
}

// Label returns a short display name such as "5s" or "20m"
func (p PeakPower) Label() string {
	if p.DurationSeconds < 60 {
		return strconv.Itoa(p.DurationSeconds) + "s"
	}
	return strconv.Itoa(p.DurationSeconds/60) + "m"
}

// BestRollingPower finds the highest mean power over any window of the given
// number of samples. Absent readings count as zero watts, the way a power
// meter reports coasting. Returns false if the ride is shorter than the window
// or has no power.
func BestRollingPower(watts []*float64, window int) (PeakPower, bool) {
	if window <= 0 || len(watts) < window || len(Present(watts)) == 0 {
		return PeakPower{}, false
	}

	var sum float64
	for i := 0; i < window; i++ {
		sum += valueOrZero(watts[i])
	}
	best := sum
	bestStart := 0

	for right := window; right < len(watts); right++ {
		sum += valueOrZero(watts[right]) - valueOrZero(watts[right-window])
		if sum > best {
			best = sum
			bestStart = right - window + 1
		}
	}

	return PeakPower{
		DurationSeconds: window,
		Watts:           best / float64(window),
		StartIndex:      bestStart,
	}, true
}

// PowerCurve returns the peak power for each standard duration the ride covers
func PowerCurve(watts []*float64) []PeakPower {
	var curve []PeakPower
	for _, d := range PeakDurations {
		if p, ok := BestRollingPower(watts, d); ok {
			curve = append(curve, p)
		}
	}
	return curve
}

// EstimateFTP estimates functional threshold power from the best 20 minutes.
// Returns 0 for rides shorter than 20 minutes or without power.
func EstimateFTP(watts []*float64) float64 {
	p, ok := BestRollingPower(watts, Duration20m)
	if !ok {
		return 0
	}
	return math.Round(p.Watts * FTPFactor)
}

func valueOrZero(v *float64) float64 {
	if r, ok := reading(v); ok {
		return r
	}
	return 0
}
