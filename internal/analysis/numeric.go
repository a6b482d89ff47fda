package analysis

import "math"

// safeDiv divides num by den, returning 0 instead of Inf or NaN
func safeDiv(num, den float64) float64 {
	if den == 0 || !isFinite(den) || !isFinite(num) {
		return 0
	}
	q := num / den
	if !isFinite(q) {
		return 0
	}
	return q
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// mean averages the present readings of a channel
func mean(channel []*float64) float64 {
	var total float64
	var count int
	for _, v := range channel {
		if v == nil || !isFinite(*v) {
			continue
		}
		total += *v
		count++
	}
	return safeDiv(total, float64(count))
}

// roundTo rounds v to the given number of decimal places
func roundTo(v float64, places int) float64 {
	if !isFinite(v) {
		return 0
	}
	if places < 0 {
		places = 0
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// positiveOr returns v when it is a usable positive number, else fallback
func positiveOr(v, fallback float64) float64 {
	if isFinite(v) && v > 0 {
		return v
	}
	return fallback
}
