package service

import (
	"fmt"
	"time"

	"ridedash/internal/analysis"
)

// running accumulates present readings
type running struct {
	sum   float64
	count int
}

func (r *running) add(v *float64) {
	if v != nil {
		r.sum += *v
		r.count++
	}
}

// mean returns nil when nothing was added
func (r running) mean() *float64 {
	if r.count == 0 {
		return nil
	}
	m := r.sum / float64(r.count)
	return &m
}

// bucket holds the readings of one chart interval
type bucket struct {
	power running
	hr    running
	speed running
}

// bucketTimeline groups samples into fixed intervals of elapsed time.
// Samples before the first timestamp land in the first bucket.
func bucketTimeline(tl analysis.Timeline, seconds int) []bucket {
	if len(tl) == 0 || seconds <= 0 {
		return nil
	}

	start := tl[0].T
	var buckets []bucket
	for _, s := range tl {
		idx := int((s.T - start) / float64(seconds))
		if idx < 0 {
			idx = 0
		}
		for len(buckets) <= idx {
			buckets = append(buckets, bucket{})
		}
		buckets[idx].power.add(s.Watts)
		buckets[idx].hr.add(s.Heartrate)
		buckets[idx].speed.add(s.Speed)
	}
	return buckets
}

// carryForward turns bucket means into a chart series. Empty buckets repeat
// the previous value, leading empty buckets are 0.
func carryForward(buckets []bucket, get func(bucket) *float64) []float64 {
	out := make([]float64, len(buckets))
	any := false
	for i, b := range buckets {
		v := get(b)
		switch {
		case v != nil:
			out[i] = *v
			any = true
		case i > 0:
			out[i] = out[i-1]
		}
	}
	if !any {
		return nil
	}
	return out
}

// maxOf returns the largest present reading, or 0
func maxOf(channel []*float64) float64 {
	var m float64
	for _, v := range channel {
		if v != nil && *v > m {
			m = *v
		}
	}
	return m
}

// metersToMiles converts distance from meters to miles
func metersToMiles(meters float64) float64 {
	return meters / MetersPerMile
}

// getMonday returns the Monday of the week containing t, at midnight
func getMonday(t time.Time) time.Time {
	daysFromMonday := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}

// FormatDuration formats seconds as "H:MM:SS" or "M:SS"
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
