package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
)

// TimelineRow is one timeline sample in the parquet export.
// Optional columns are null where the reading was absent.
type TimelineRow struct {
	RideID    int64    `parquet:"ride_id,snappy"`
	Index     int32    `parquet:"index,snappy"`
	TimeS     float64  `parquet:"time_s,snappy"`
	Watts     *float64 `parquet:"watts,optional,snappy"`
	Heartrate *float64 `parquet:"heartrate,optional,snappy"`
	SpeedMPS  *float64 `parquet:"speed_mps,optional,snappy"`
	Cadence   *float64 `parquet:"cadence,optional,snappy"`
	DistanceM *float64 `parquet:"distance_m,optional,snappy"`
	AltitudeM *float64 `parquet:"altitude_m,optional,snappy"`
}

// TimelineRows flattens a ride's timeline into parquet rows
func TimelineRows(r Ride) []TimelineRow {
	rows := make([]TimelineRow, len(r.Timeline))
	for i, s := range r.Timeline {
		rows[i] = TimelineRow{
			RideID:    r.ID,
			Index:     int32(i),
			TimeS:     s.T,
			Watts:     s.Watts,
			Heartrate: s.Heartrate,
			SpeedMPS:  s.Speed,
			Cadence:   s.Cadence,
			DistanceM: s.Distance,
			AltitudeM: s.Altitude,
		}
	}
	return rows
}

// WriteParquet writes the ride timeline as a parquet file
func WriteParquet(w io.Writer, r Ride) error {
	// Schema is derived from the TimelineRow struct tags
	writer := parquet.NewGenericWriter[TimelineRow](w)

	if _, err := writer.Write(TimelineRows(r)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("writing timeline rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}
