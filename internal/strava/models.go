package strava

import (
	"time"

	"ridedash/internal/analysis"
)

// Activity represents a Strava activity from the API
type Activity struct {
	ID                   int64     `json:"id"`
	Athlete              Athlete   `json:"athlete"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	SportType            string    `json:"sport_type"`
	StartDate            time.Time `json:"start_date"`
	StartDateLocal       time.Time `json:"start_date_local"`
	Timezone             string    `json:"timezone"`
	Distance             float64   `json:"distance"`             // meters
	MovingTime           int       `json:"moving_time"`          // seconds
	ElapsedTime          int       `json:"elapsed_time"`         // seconds
	TotalElevationGain   float64   `json:"total_elevation_gain"` // meters
	AverageSpeed         float64   `json:"average_speed"`        // m/s
	MaxSpeed             float64   `json:"max_speed"`            // m/s
	AverageWatts         float64   `json:"average_watts"`
	WeightedAverageWatts float64   `json:"weighted_average_watts"`
	MaxWatts             float64   `json:"max_watts"`
	Kilojoules           float64   `json:"kilojoules"`
	DeviceWatts          bool      `json:"device_watts"`
	AverageHeartrate     float64   `json:"average_heartrate"` // bpm
	MaxHeartrate         float64   `json:"max_heartrate"`     // bpm
	AverageCadence       float64   `json:"average_cadence"`   // rpm
	HasHeartrate         bool      `json:"has_heartrate"`
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Summary converts the activity into the analysis summary
func (a Activity) Summary() analysis.ActivitySummary {
	return analysis.ActivitySummary{
		Name:                 a.Name,
		StartDate:            a.StartDate,
		Distance:             a.Distance,
		TotalElevationGain:   a.TotalElevationGain,
		MovingTime:           a.MovingTime,
		AverageWatts:         a.AverageWatts,
		AverageHeartrate:     a.AverageHeartrate,
		WeightedAverageWatts: a.WeightedAverageWatts,
	}
}

// IsRide reports whether the activity is one of the given ride types.
// Either the legacy type or the newer sport_type may match.
func (a Activity) IsRide(types []string) bool {
	for _, t := range types {
		if a.Type == t || a.SportType == t {
			return true
		}
	}
	return false
}

// StreamKeys are the channels requested for every ride
var StreamKeys = []string{
	analysis.ChannelTime,
	analysis.ChannelWatts,
	analysis.ChannelHeartrate,
	analysis.ChannelVelocity,
	analysis.ChannelCadence,
	analysis.ChannelDistance,
	analysis.ChannelAltitude,
}

// Streams represents activity stream data from the API
// Strava returns streams keyed by type when key_by_type=true
type Streams struct {
	Time           *StreamData `json:"time"`
	Watts          *StreamData `json:"watts"`
	Heartrate      *StreamData `json:"heartrate"`
	VelocitySmooth *StreamData `json:"velocity_smooth"`
	Cadence        *StreamData `json:"cadence"`
	Distance       *StreamData `json:"distance"`
	Altitude       *StreamData `json:"altitude"`
}

// StreamData represents a single stream type.
// JSON nulls decode to nil entries and stay absent.
type StreamData struct {
	Data         []*float64 `json:"data"`
	SeriesType   string     `json:"series_type"`
	OriginalSize int        `json:"original_size"`
	Resolution   string     `json:"resolution"`
}

func (d *StreamData) samples() []*float64 {
	if d == nil {
		return nil
	}
	return d.Data
}

// Len returns the length of the stream, or 0 if nil
func (s *Streams) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Time.samples())
}

// HasHeartrate returns true if heartrate data exists
func (s *Streams) HasHeartrate() bool {
	return s != nil && len(s.Heartrate.samples()) > 0
}

// HasPower returns true if power data exists
func (s *Streams) HasPower() bool {
	return s != nil && len(s.Watts.samples()) > 0
}

// RawStreamSet converts the API payload into engine input.
// Missing channels are left out of the set.
func (s *Streams) RawStreamSet() analysis.RawStreamSet {
	set := analysis.RawStreamSet{}
	if s == nil {
		return set
	}
	for key, d := range map[string]*StreamData{
		analysis.ChannelTime:      s.Time,
		analysis.ChannelWatts:     s.Watts,
		analysis.ChannelHeartrate: s.Heartrate,
		analysis.ChannelVelocity:  s.VelocitySmooth,
		analysis.ChannelCadence:   s.Cadence,
		analysis.ChannelDistance:  s.Distance,
		analysis.ChannelAltitude:  s.Altitude,
	} {
		if d != nil {
			set[key] = d.Data
		}
	}
	return set
}
