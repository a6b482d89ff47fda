package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const rideColumns = `
	r.id, r.athlete_id, r.name, r.type, r.sport_type, r.start_date, r.start_date_local,
	r.distance, r.moving_time, r.elapsed_time, r.total_elevation_gain,
	r.average_watts, r.weighted_average_watts, r.average_heartrate, r.max_heartrate,
	r.average_cadence, r.device_watts, r.has_heartrate, r.source`

// UpsertRide inserts or updates a ride summary
func (db *DB) UpsertRide(r *Ride) error {
	source := r.Source
	if source == "" {
		source = SourceStrava
	}
	_, err := db.Exec(`
		INSERT INTO rides (
			id, athlete_id, name, type, sport_type, start_date, start_date_local,
			distance, moving_time, elapsed_time, total_elevation_gain,
			average_watts, weighted_average_watts, average_heartrate, max_heartrate,
			average_cadence, device_watts, has_heartrate, source, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			name = excluded.name,
			type = excluded.type,
			sport_type = excluded.sport_type,
			start_date = excluded.start_date,
			start_date_local = excluded.start_date_local,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			total_elevation_gain = excluded.total_elevation_gain,
			average_watts = excluded.average_watts,
			weighted_average_watts = excluded.weighted_average_watts,
			average_heartrate = excluded.average_heartrate,
			max_heartrate = excluded.max_heartrate,
			average_cadence = excluded.average_cadence,
			device_watts = excluded.device_watts,
			has_heartrate = excluded.has_heartrate,
			source = excluded.source,
			updated_at = CURRENT_TIMESTAMP
	`,
		r.ID, r.AthleteID, r.Name, r.Type, r.SportType,
		r.StartDate.UTC().Format(time.RFC3339), r.StartDateLocal.Format(time.RFC3339),
		r.Distance, r.MovingTime, r.ElapsedTime, r.TotalElevationGain,
		r.AverageWatts, r.WeightedAverageWatts, r.AverageHeartrate, r.MaxHeartrate,
		r.AverageCadence, boolToInt(r.DeviceWatts), boolToInt(r.HasHeartrate), source,
	)
	if err != nil {
		return fmt.Errorf("upserting ride %d: %w", r.ID, err)
	}
	return nil
}

// GetRide retrieves a ride by ID
func (db *DB) GetRide(id int64) (*Ride, error) {
	row := db.QueryRow(`SELECT `+rideColumns+` FROM rides r WHERE r.id = ?`, id)

	r, err := scanRide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRideNotFound
	}
	return r, err
}

// ListRides returns rides ordered by start date descending
func (db *DB) ListRides(limit, offset int) ([]Ride, error) {
	rows, err := db.Query(`
		SELECT `+rideColumns+`
		FROM rides r
		ORDER BY r.start_date DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rides []Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, *r)
	}
	return rides, rows.Err()
}

// CountRides returns the number of stored rides
func (db *DB) CountRides() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM rides`).Scan(&n)
	return n, err
}

// DeleteRide removes a ride with its streams and metrics
func (db *DB) DeleteRide(id int64) error {
	result, err := db.Exec(`DELETE FROM rides WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRideNotFound
	}
	return nil
}

// RidesNeedingStreams returns IDs of Strava rides without stored streams, newest first
func (db *DB) RidesNeedingStreams(limit int) ([]int64, error) {
	return db.queryIDs(`
		SELECT r.id
		FROM rides r
		LEFT JOIN ride_streams s ON s.ride_id = r.id
		WHERE s.ride_id IS NULL AND r.source = ?
		ORDER BY r.start_date DESC
		LIMIT ?
	`, SourceStrava, limit)
}

func (db *DB) queryIDs(query string, args ...any) ([]int64, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRide(s scanner) (*Ride, error) {
	var r Ride
	var startDate, startDateLocal string
	var deviceWatts, hasHeartrate int
	err := s.Scan(
		&r.ID, &r.AthleteID, &r.Name, &r.Type, &r.SportType, &startDate, &startDateLocal,
		&r.Distance, &r.MovingTime, &r.ElapsedTime, &r.TotalElevationGain,
		&r.AverageWatts, &r.WeightedAverageWatts, &r.AverageHeartrate, &r.MaxHeartrate,
		&r.AverageCadence, &deviceWatts, &hasHeartrate, &r.Source,
	)
	if err != nil {
		return nil, err
	}

	if r.StartDate, err = time.Parse(time.RFC3339, startDate); err != nil {
		return nil, fmt.Errorf("parsing start_date of ride %d: %w", r.ID, err)
	}
	if r.StartDateLocal, err = time.Parse(time.RFC3339, startDateLocal); err != nil {
		return nil, fmt.Errorf("parsing start_date_local of ride %d: %w", r.ID, err)
	}
	r.DeviceWatts = deviceWatts == 1
	r.HasHeartrate = hasHeartrate == 1
	return &r, nil
}
