package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ridedash/internal/analysis"
)

// SaveStreams stores the raw channels of a ride, replacing earlier ones.
// Absent samples are kept as JSON null.
func (db *DB) SaveStreams(rideID int64, streams analysis.RawStreamSet) error {
	if streams == nil {
		streams = analysis.RawStreamSet{}
	}
	data, err := json.Marshal(streams)
	if err != nil {
		return fmt.Errorf("encoding streams: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO ride_streams (ride_id, channels, samples, fetched_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(ride_id) DO UPDATE SET
			channels = excluded.channels,
			samples = excluded.samples,
			fetched_at = CURRENT_TIMESTAMP
	`, rideID, string(data), streams.Len())
	if err != nil {
		return fmt.Errorf("saving streams for ride %d: %w", rideID, err)
	}
	return nil
}

// GetStreams retrieves the raw channels of a ride
func (db *DB) GetStreams(rideID int64) (analysis.RawStreamSet, error) {
	var data string
	err := db.QueryRow(`SELECT channels FROM ride_streams WHERE ride_id = ?`, rideID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoStreams
	}
	if err != nil {
		return nil, err
	}

	var streams analysis.RawStreamSet
	if err := json.Unmarshal([]byte(data), &streams); err != nil {
		return nil, fmt.Errorf("decoding streams for ride %d: %w", rideID, err)
	}
	return streams, nil
}

// HasStreams reports whether streams are stored for a ride
func (db *DB) HasStreams(rideID int64) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM ride_streams WHERE ride_id = ?`, rideID).Scan(&n)
	return n > 0, err
}
