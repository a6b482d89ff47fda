package store

import (
	"time"

	"ridedash/internal/analysis"
)

// Ride sources
const (
	SourceStrava = "strava"
	SourceFIT    = "fit"
)

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id" json:"athlete_id"`
	AccessToken  string    `db:"access_token" json:"-"`
	RefreshToken string    `db:"refresh_token" json:"-"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
}

// Ride is a stored ride summary. Zero averages mean unknown.
type Ride struct {
	ID                   int64     `db:"id" json:"id"`
	AthleteID            int64     `db:"athlete_id" json:"athlete_id"`
	Name                 string    `db:"name" json:"name"`
	Type                 string    `db:"type" json:"type"`
	SportType            string    `db:"sport_type" json:"sport_type"`
	StartDate            time.Time `db:"start_date" json:"start_date"`
	StartDateLocal       time.Time `db:"start_date_local" json:"start_date_local"`
	Distance             float64   `db:"distance" json:"distance"`         // meters
	MovingTime           int       `db:"moving_time" json:"moving_time"`   // seconds
	ElapsedTime          int       `db:"elapsed_time" json:"elapsed_time"` // seconds
	TotalElevationGain   float64   `db:"total_elevation_gain" json:"total_elevation_gain"`
	AverageWatts         float64   `db:"average_watts" json:"average_watts"`
	WeightedAverageWatts float64   `db:"weighted_average_watts" json:"weighted_average_watts"`
	AverageHeartrate     float64   `db:"average_heartrate" json:"average_heartrate"`
	MaxHeartrate         float64   `db:"max_heartrate" json:"max_heartrate"`
	AverageCadence       float64   `db:"average_cadence" json:"average_cadence"`
	DeviceWatts          bool      `db:"device_watts" json:"device_watts"`
	HasHeartrate         bool      `db:"has_heartrate" json:"has_heartrate"`
	Source               string    `db:"source" json:"source"`
}

// Summary converts the stored ride into the analysis summary
func (r Ride) Summary() analysis.ActivitySummary {
	return analysis.ActivitySummary{
		Name:                 r.Name,
		StartDate:            r.StartDate,
		Distance:             r.Distance,
		TotalElevationGain:   r.TotalElevationGain,
		MovingTime:           r.MovingTime,
		AverageWatts:         r.AverageWatts,
		AverageHeartrate:     r.AverageHeartrate,
		WeightedAverageWatts: r.WeightedAverageWatts,
	}
}

// RideMetrics are stored analysis results for a ride
type RideMetrics struct {
	RideID int64 `json:"ride_id"`
	analysis.RideMetrics
	Fingerprint string    `json:"-"`
	ComputedAt  time.Time `json:"computed_at"`
}

// RideWithMetrics joins a ride with its metrics, if computed
type RideWithMetrics struct {
	Ride
	Metrics *RideMetrics
}
