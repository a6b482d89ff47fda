package analysis

import "math"

// NPWindow is the rolling window, in samples, used by normalized power
const NPWindow = 30

// NormalizedPower computes Coggan normalized power.
//
// At each index i the rolling mean covers the trailing NPWindow samples ending
// at i, so the first 29 means use a shorter window. Absent readings are left
// out of both the window sum and its count. The rolling means are raised to
// the 4th power, averaged, and the 4th root is returned at full precision.
func NormalizedPower(watts []*float64) float64 {
	var (
		windowSum   float64
		windowCount int
		fourthSum   float64
		means       int
	)

	for i, w := range watts {
		if v, ok := reading(w); ok {
			windowSum += v
			windowCount++
		}
		if i >= NPWindow {
			if v, ok := reading(watts[i-NPWindow]); ok {
				windowSum -= v
				windowCount--
			}
		}
		if windowCount == 0 {
			continue
		}

		rolling := windowSum / float64(windowCount)
		fourthSum += math.Pow(rolling, 4)
		means++
	}

	avg := safeDiv(fourthSum, float64(means))
	if avg <= 0 {
		return 0
	}
	return math.Pow(avg, 0.25)
}

// reading unwraps a sample pointer, rejecting absent and non-finite values
func reading(v *float64) (float64, bool) {
	if v == nil || !isFinite(*v) {
		return 0, false
	}
	return *v, true
}
