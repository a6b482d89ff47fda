package analysis

// Stream channel names as returned by the Strava streams endpoint
const (
	ChannelTime      = "time"
	ChannelWatts     = "watts"
	ChannelWattsCalc = "watts_calc" // estimated power when no meter is present
	ChannelHeartrate = "heartrate"
	ChannelVelocity  = "velocity_smooth"
	ChannelCadence   = "cadence"
	ChannelDistance  = "distance"
	ChannelAltitude  = "altitude"
)

// RawStreamSet maps a channel name to its ordered samples.
// A nil entry is a missing reading; a missing key is a missing channel.
type RawStreamSet map[string][]*float64

// Samples builds a channel from plain values
func Samples(values ...float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}
	return out
}

// Len returns the number of samples in the reference (time) channel
func (s RawStreamSet) Len() int {
	return len(s[ChannelTime])
}

// Has reports whether a channel carries at least one reading
func (s RawStreamSet) Has(channel string) bool {
	for _, v := range s[channel] {
		if v != nil {
			return true
		}
	}
	return false
}

// Sample is one index-aligned point of a ride. Nil fields are absent readings.
type Sample struct {
	T         float64  // seconds since start
	Watts     *float64 // W
	Heartrate *float64 // bpm
	Speed     *float64 // m/s
	Cadence   *float64 // rpm
	Distance  *float64 // cumulative meters
	Altitude  *float64 // meters
}

// Timeline is the normalized, index-aligned view of a ride's streams
type Timeline []Sample

// Normalize aligns every channel to the time channel.
//
// The timeline has exactly len(time) samples. Channels shorter than time leave
// their tail absent, longer channels are truncated, and non-finite or
// physically impossible values become absent. Nothing is interpolated:
// downstream windows work on sample index, not wall-clock time.
func Normalize(streams RawStreamSet) Timeline {
	times := streams[ChannelTime]
	if len(times) == 0 {
		return Timeline{}
	}

	watts := streams[ChannelWatts]
	if !streams.Has(ChannelWatts) && streams.Has(ChannelWattsCalc) {
		watts = streams[ChannelWattsCalc]
	}

	tl := make(Timeline, len(times))
	for i := range times {
		s := Sample{T: float64(i)}
		if t := at(times, i, anyFinite); t != nil {
			s.T = *t
		}
		s.Watts = at(watts, i, nonNegative)
		s.Heartrate = at(streams[ChannelHeartrate], i, positive)
		s.Speed = at(streams[ChannelVelocity], i, nonNegative)
		s.Cadence = at(streams[ChannelCadence], i, nonNegative)
		s.Distance = at(streams[ChannelDistance], i, nonNegative)
		s.Altitude = at(streams[ChannelAltitude], i, anyFinite)
		tl[i] = s
	}
	return tl
}

// at copies the i-th reading of a channel if it exists and passes valid.
// The copy keeps the timeline independent of the caller's input.
func at(channel []*float64, i int, valid func(float64) bool) *float64 {
	if i >= len(channel) || channel[i] == nil {
		return nil
	}
	v := *channel[i]
	if !valid(v) {
		return nil
	}
	return &v
}

func anyFinite(v float64) bool   { return isFinite(v) }
func nonNegative(v float64) bool { return isFinite(v) && v >= 0 }
func positive(v float64) bool    { return isFinite(v) && v > 0 }

// Watts returns the power channel, index-aligned
func (tl Timeline) Watts() []*float64 {
	return tl.channel(func(s Sample) *float64 { return s.Watts })
}

// Heartrate returns the heart rate channel, index-aligned
func (tl Timeline) Heartrate() []*float64 {
	return tl.channel(func(s Sample) *float64 { return s.Heartrate })
}

// Speed returns the speed channel, index-aligned
func (tl Timeline) Speed() []*float64 {
	return tl.channel(func(s Sample) *float64 { return s.Speed })
}

// Cadence returns the cadence channel, index-aligned
func (tl Timeline) Cadence() []*float64 {
	return tl.channel(func(s Sample) *float64 { return s.Cadence })
}

func (tl Timeline) channel(get func(Sample) *float64) []*float64 {
	out := make([]*float64, len(tl))
	for i, s := range tl {
		out[i] = get(s)
	}
	return out
}

// Duration returns the elapsed seconds covered by the timeline
func (tl Timeline) Duration() float64 {
	if len(tl) < 2 {
		return 0
	}
	d := tl[len(tl)-1].T - tl[0].T
	if !isFinite(d) || d < 0 {
		return 0
	}
	return d
}

// Present drops absent readings from a channel
func Present(channel []*float64) []float64 {
	out := make([]float64, 0, len(channel))
	for _, v := range channel {
		if v != nil && isFinite(*v) {
			out = append(out, *v)
		}
	}
	return out
}
