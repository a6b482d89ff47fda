// Package fitfile reads ride telemetry from Garmin FIT activity files.
package fitfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"ridedash/internal/analysis"
	"ridedash/internal/store"
)

// ErrNoRecords is returned when an activity file carries no record messages
var ErrNoRecords = errors.New("fit file has no records")

// Ride is a ride decoded from a FIT file
type Ride struct {
	Name      string
	Sport     string
	StartTime time.Time
	Streams   analysis.RawStreamSet
	Summary   analysis.ActivitySummary
}

// ReadFile decodes the FIT activity at path. The file name becomes the ride name.
func ReadFile(path string) (*Ride, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ride, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	ride.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ride.Summary.Name = ride.Name
	return ride, nil
}

// Decode reads a FIT activity into engine input. Time is seconds since the
// first record; FIT invalid values become absent samples.
func Decode(r io.Reader) (*Ride, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding fit file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity fit file expected: %w", err)
	}
	if len(activity.Records) == 0 {
		return nil, ErrNoRecords
	}

	ride := &Ride{Streams: buildStreams(activity.Records)}
	ride.StartTime = activity.Records[0].Timestamp

	if len(activity.Sessions) > 0 {
		s := activity.Sessions[0]
		ride.Sport = fmt.Sprint(s.Sport)
		if !s.StartTime.IsZero() && !fit.IsBaseTime(s.StartTime) {
			ride.StartTime = s.StartTime
		}
		ride.Summary = sessionSummary(s)
	}

	fillFromStreams(&ride.Summary, ride.Streams)
	ride.Summary.StartDate = ride.StartTime
	if ride.Name == "" {
		ride.Name = "FIT ride " + ride.StartTime.UTC().Format("2006-01-02 15:04")
		ride.Summary.Name = ride.Name
	}
	return ride, nil
}

func buildStreams(records []*fit.RecordMsg) analysis.RawStreamSet {
	n := len(records)
	times := make([]*float64, n)
	watts := make([]*float64, n)
	hr := make([]*float64, n)
	cadence := make([]*float64, n)
	speed := make([]*float64, n)
	distance := make([]*float64, n)
	altitude := make([]*float64, n)

	start := records[0].Timestamp
	for i, rec := range records {
		t := rec.Timestamp.Sub(start).Seconds()
		times[i] = &t

		if rec.Power != math.MaxUint16 {
			watts[i] = ptr(float64(rec.Power))
		}
		if rec.HeartRate != math.MaxUint8 {
			hr[i] = ptr(float64(rec.HeartRate))
		}
		if rec.Cadence != math.MaxUint8 {
			cadence[i] = ptr(float64(rec.Cadence))
		}
		speed[i] = scaled(rec.GetEnhancedSpeedScaled(), rec.GetSpeedScaled())
		distance[i] = scaled(rec.GetDistanceScaled())
		altitude[i] = scaled(rec.GetEnhancedAltitudeScaled(), rec.GetAltitudeScaled())
	}

	set := analysis.RawStreamSet{analysis.ChannelTime: times}
	for key, ch := range map[string][]*float64{
		analysis.ChannelWatts:     watts,
		analysis.ChannelHeartrate: hr,
		analysis.ChannelCadence:   cadence,
		analysis.ChannelVelocity:  speed,
		analysis.ChannelDistance:  distance,
		analysis.ChannelAltitude:  altitude,
	} {
		if hasReading(ch) {
			set[key] = ch
		}
	}
	return set
}

func sessionSummary(s *fit.SessionMsg) analysis.ActivitySummary {
	var sum analysis.ActivitySummary
	if v := s.GetTotalTimerTimeScaled(); finite(v) && v > 0 {
		sum.MovingTime = int(math.Round(v))
	}
	if v := s.GetTotalDistanceScaled(); finite(v) && v > 0 {
		sum.Distance = v
	}
	if s.TotalAscent != math.MaxUint16 {
		sum.TotalElevationGain = float64(s.TotalAscent)
	}
	if s.AvgPower != math.MaxUint16 {
		sum.AverageWatts = float64(s.AvgPower)
	}
	if s.NormalizedPower != math.MaxUint16 {
		sum.WeightedAverageWatts = float64(s.NormalizedPower)
	}
	if s.AvgHeartRate != math.MaxUint8 {
		sum.AverageHeartrate = float64(s.AvgHeartRate)
	}
	return sum
}

// fillFromStreams completes summary fields the session did not carry
func fillFromStreams(sum *analysis.ActivitySummary, streams analysis.RawStreamSet) {
	tl := analysis.Normalize(streams)
	if sum.MovingTime == 0 {
		sum.MovingTime = int(math.Round(tl.Duration()))
	}
	if sum.Distance == 0 {
		for i := len(tl) - 1; i >= 0; i-- {
			if tl[i].Distance != nil {
				sum.Distance = *tl[i].Distance
				break
			}
		}
	}
	if sum.TotalElevationGain == 0 {
		sum.TotalElevationGain = analysis.ElevationProfile(tl).Gain
	}
}

// StoredRide converts the ride for storage. FIT rides get negative IDs
// derived from their start time so they never collide with Strava IDs.
func (r *Ride) StoredRide() *store.Ride {
	return &store.Ride{
		ID:                   -r.StartTime.Unix(),
		Name:                 r.Name,
		Type:                 "Ride",
		SportType:            r.Sport,
		StartDate:            r.StartTime.UTC(),
		StartDateLocal:       r.StartTime.UTC(),
		Distance:             r.Summary.Distance,
		MovingTime:           r.Summary.MovingTime,
		ElapsedTime:          int(math.Round(analysis.Normalize(r.Streams).Duration())),
		TotalElevationGain:   r.Summary.TotalElevationGain,
		AverageWatts:         r.Summary.AverageWatts,
		WeightedAverageWatts: r.Summary.WeightedAverageWatts,
		AverageHeartrate:     r.Summary.AverageHeartrate,
		DeviceWatts:          r.Streams.Has(analysis.ChannelWatts),
		HasHeartrate:         r.Streams.Has(analysis.ChannelHeartrate),
		Source:               store.SourceFIT,
	}
}

// scaled returns the first finite value, or nil
func scaled(values ...float64) *float64 {
	for _, v := range values {
		if finite(v) {
			return ptr(v)
		}
	}
	return nil
}

func hasReading(ch []*float64) bool {
	for _, v := range ch {
		if v != nil {
			return true
		}
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ptr(v float64) *float64 { return &v }
