package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ridedash/internal/analysis"
)

// SaveMetrics stores computed metrics for a ride
func (db *DB) SaveMetrics(rideID int64, m analysis.RideMetrics, fingerprint string) error {
	powerZones, err := json.Marshal(m.PowerZones)
	if err != nil {
		return fmt.Errorf("encoding power zones: %w", err)
	}
	hrZones, err := json.Marshal(m.HRZones)
	if err != nil {
		return fmt.Errorf("encoding hr zones: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO ride_metrics (
			ride_id, normalized_power, intensity_factor, variability_index,
			training_stress_score, efficiency_factor, hr_drift_pct,
			average_watts, average_heartrate,
			power_zones, hr_zones, config_fingerprint, computed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(ride_id) DO UPDATE SET
			normalized_power = excluded.normalized_power,
			intensity_factor = excluded.intensity_factor,
			variability_index = excluded.variability_index,
			training_stress_score = excluded.training_stress_score,
			efficiency_factor = excluded.efficiency_factor,
			hr_drift_pct = excluded.hr_drift_pct,
			average_watts = excluded.average_watts,
			average_heartrate = excluded.average_heartrate,
			power_zones = excluded.power_zones,
			hr_zones = excluded.hr_zones,
			config_fingerprint = excluded.config_fingerprint,
			computed_at = CURRENT_TIMESTAMP
	`,
		rideID, m.NormalizedPower, m.IntensityFactor, m.VariabilityIndex,
		m.TrainingStressScore, m.EfficiencyFactor, m.HRDriftPct,
		m.AverageWatts, m.AverageHeartrate,
		string(powerZones), string(hrZones), fingerprint,
	)
	if err != nil {
		return fmt.Errorf("saving metrics for ride %d: %w", rideID, err)
	}
	return nil
}

const metricsColumns = `
	m.ride_id, m.normalized_power, m.intensity_factor, m.variability_index,
	m.training_stress_score, m.efficiency_factor, m.hr_drift_pct,
	m.average_watts, m.average_heartrate,
	m.power_zones, m.hr_zones, m.config_fingerprint, m.computed_at`

// GetMetrics retrieves computed metrics for a ride.
// Returns nil without error when none are stored.
func (db *DB) GetMetrics(rideID int64) (*RideMetrics, error) {
	row := db.QueryRow(`SELECT `+metricsColumns+` FROM ride_metrics m WHERE m.ride_id = ?`, rideID)

	m, err := scanMetrics(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// RidesNeedingMetrics returns IDs of rides with streams whose metrics are
// missing or were computed for a different athlete configuration
func (db *DB) RidesNeedingMetrics(fingerprint string) ([]int64, error) {
	return db.queryIDs(`
		SELECT r.id
		FROM rides r
		JOIN ride_streams s ON s.ride_id = r.id
		LEFT JOIN ride_metrics m ON m.ride_id = r.id
		WHERE m.ride_id IS NULL OR m.config_fingerprint != ?
		ORDER BY r.start_date DESC
	`, fingerprint)
}

// ListRidesWithMetrics returns rides newest first, joined with their metrics
func (db *DB) ListRidesWithMetrics(limit, offset int) ([]RideWithMetrics, error) {
	rides, err := db.ListRides(limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]RideWithMetrics, len(rides))
	for i, r := range rides {
		m, err := db.GetMetrics(r.ID)
		if err != nil {
			return nil, err
		}
		out[i] = RideWithMetrics{Ride: r, Metrics: m}
	}
	return out, nil
}

// DailyLoads sums training stress per local calendar day since the given date
func (db *DB) DailyLoads(since time.Time) ([]analysis.DailyLoad, error) {
	rows, err := db.Query(`
		SELECT substr(r.start_date_local, 1, 10) AS day, SUM(m.training_stress_score)
		FROM rides r
		JOIN ride_metrics m ON m.ride_id = r.id
		WHERE substr(r.start_date_local, 1, 10) >= ?
		GROUP BY day
		ORDER BY day
	`, since.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []analysis.DailyLoad
	for rows.Next() {
		var day string
		var tss float64
		if err := rows.Scan(&day, &tss); err != nil {
			return nil, err
		}
		d, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("parsing ride date %q: %w", day, err)
		}
		loads = append(loads, analysis.DailyLoad{Date: d, TSS: tss})
	}
	return loads, rows.Err()
}

func scanMetrics(s scanner) (*RideMetrics, error) {
	var m RideMetrics
	var powerZones, hrZones, computedAt string
	err := s.Scan(
		&m.RideID, &m.NormalizedPower, &m.IntensityFactor, &m.VariabilityIndex,
		&m.TrainingStressScore, &m.EfficiencyFactor, &m.HRDriftPct,
		&m.AverageWatts, &m.AverageHeartrate,
		&powerZones, &hrZones, &m.Fingerprint, &computedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(powerZones), &m.PowerZones); err != nil {
		return nil, fmt.Errorf("decoding power zones of ride %d: %w", m.RideID, err)
	}
	if err := json.Unmarshal([]byte(hrZones), &m.HRZones); err != nil {
		return nil, fmt.Errorf("decoding hr zones of ride %d: %w", m.RideID, err)
	}
	// CURRENT_TIMESTAMP is "YYYY-MM-DD HH:MM:SS" in UTC
	if t, err := time.Parse(time.DateTime, computedAt); err == nil {
		m.ComputedAt = t
	}
	return &m, nil
}
