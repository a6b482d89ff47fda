package export

import (
	"encoding/json"
	"io"
	"time"

	"ridedash/internal/analysis"
)

// Document is the JSON form of an analyzed ride
type Document struct {
	ID                 int64                   `json:"id,omitempty"`
	Name               string                  `json:"name"`
	StartDate          time.Time               `json:"start_date_local"`
	Distance           float64                 `json:"distance_m"`
	MovingTime         int                     `json:"moving_time_s"`
	TotalElevationGain float64                 `json:"total_elevation_gain_m"`
	AverageWatts       float64                 `json:"average_watts"`
	AverageHeartrate   float64                 `json:"average_heartrate"`
	Samples            int                     `json:"samples"`
	Metrics            analysis.RideMetrics    `json:"metrics"`
	Display            analysis.DisplayMetrics `json:"display"`
}

// NewDocument builds the JSON document of a ride
func NewDocument(r Ride) Document {
	return Document{
		ID:                 r.ID,
		Name:               r.Summary.Name,
		StartDate:          r.StartDate,
		Distance:           r.Summary.Distance,
		MovingTime:         r.Summary.MovingTime,
		TotalElevationGain: r.Summary.TotalElevationGain,
		AverageWatts:       r.Metrics.AverageWatts,
		AverageHeartrate:   r.Metrics.AverageHeartrate,
		Samples:            len(r.Timeline),
		Metrics:            r.Metrics,
		Display:            r.Metrics.Rounded(),
	}
}

// WriteJSON writes the ride metrics as indented JSON
func WriteJSON(w io.Writer, r Ride) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(r))
}
