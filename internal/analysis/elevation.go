package analysis

// ElevationPoint is one point of an elevation profile
type ElevationPoint struct {
	Distance float64 `json:"distance_m"` // cumulative meters, or seconds when no distance stream
	Altitude float64 `json:"altitude_m"`
}

// Elevation is the altitude profile of a ride.
// Available is false when the ride carried no altitude readings; the profile
// is never fabricated in that case.
type Elevation struct {
	Available bool             `json:"available"`
	Points    []ElevationPoint `json:"points,omitempty"`
	Gain      float64          `json:"gain_m"`
	Min       float64          `json:"min_m"`
	Max       float64          `json:"max_m"`
}

// ElevationProfile extracts altitude against distance from a timeline.
// Samples without altitude are skipped. When the ride has no distance
// stream the elapsed time is used as the x axis.
func ElevationProfile(tl Timeline) Elevation {
	hasDistance := false
	for _, s := range tl {
		if s.Distance != nil {
			hasDistance = true
			break
		}
	}

	var e Elevation
	var prev *float64
	for _, s := range tl {
		if s.Altitude == nil {
			continue
		}
		x := s.T
		if hasDistance {
			if s.Distance == nil {
				continue
			}
			x = *s.Distance
		}

		alt := *s.Altitude
		if !e.Available {
			e.Available = true
			e.Min, e.Max = alt, alt
		}
		if alt < e.Min {
			e.Min = alt
		}
		if alt > e.Max {
			e.Max = alt
		}
		if prev != nil && alt > *prev {
			e.Gain += alt - *prev
		}
		prev = s.Altitude
		e.Points = append(e.Points, ElevationPoint{Distance: x, Altitude: alt})
	}
	return e
}

// Downsample keeps at most n evenly spaced points, always including the last
func (e Elevation) Downsample(n int) []ElevationPoint {
	if n <= 0 || len(e.Points) <= n {
		return e.Points
	}
	out := make([]ElevationPoint, 0, n)
	step := float64(len(e.Points)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out = append(out, e.Points[int(float64(i)*step+0.5)])
	}
	return out
}
