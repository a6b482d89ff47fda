package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// upsertAuth keeps the known athlete when tokens arrive without one, as
// they do on refresh
const upsertAuth = `
	INSERT INTO auth (id, athlete_id, access_token, refresh_token, expires_at, updated_at)
	VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
		athlete_id = CASE WHEN excluded.athlete_id = 0 THEN auth.athlete_id ELSE excluded.athlete_id END,
		access_token = excluded.access_token,
		refresh_token = excluded.refresh_token,
		expires_at = excluded.expires_at,
		updated_at = CURRENT_TIMESTAMP`

// GetAuth returns the stored Strava tokens, or ErrNoAuth
func (db *DB) GetAuth() (*Auth, error) {
	var a Auth
	var expiresAt int64
	err := db.QueryRow(`SELECT athlete_id, access_token, refresh_token, expires_at FROM auth WHERE id = 1`).
		Scan(&a.AthleteID, &a.AccessToken, &a.RefreshToken, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, fmt.Errorf("reading auth: %w", err)
	}
	a.ExpiresAt = time.Unix(expiresAt, 0)
	return &a, nil
}

// SaveAuth replaces the stored tokens. A zero athlete ID leaves the stored one.
func (db *DB) SaveAuth(a *Auth) error {
	if _, err := db.Exec(upsertAuth, a.AthleteID, a.AccessToken, a.RefreshToken, a.ExpiresAt.Unix()); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	return nil
}

// UpdateTokens persists a refreshed token pair
func (db *DB) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	return db.SaveAuth(&Auth{AccessToken: accessToken, RefreshToken: refreshToken, ExpiresAt: expiresAt})
}

// ClearAuth forgets the stored tokens
func (db *DB) ClearAuth() error {
	_, err := db.Exec(`DELETE FROM auth WHERE id = 1`)
	return err
}
