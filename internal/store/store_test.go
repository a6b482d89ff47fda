package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridedash/internal/analysis"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRide(id int64, start time.Time) *Ride {
	return &Ride{
		ID:               id,
		AthleteID:        7,
		Name:             "Ride",
		Type:             "Ride",
		SportType:        "Ride",
		StartDate:        start,
		StartDateLocal:   start,
		Distance:         40000,
		MovingTime:       3600,
		AverageWatts:     200,
		AverageHeartrate: 140,
		HasHeartrate:     true,
		DeviceWatts:      true,
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)
}

func TestAuthRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetAuth()
	assert.ErrorIs(t, err, ErrNoAuth)

	expires := time.Unix(1700000000, 0)
	require.NoError(t, db.SaveAuth(&Auth{AthleteID: 1, AccessToken: "a", RefreshToken: "r", ExpiresAt: expires}))

	require.NoError(t, db.UpdateTokens("a2", "r2", expires.Add(time.Hour)))
	auth, err := db.GetAuth()
	require.NoError(t, err)
	assert.Equal(t, int64(1), auth.AthleteID)
	assert.Equal(t, "a2", auth.AccessToken)
	assert.Equal(t, "r2", auth.RefreshToken)
	assert.True(t, auth.ExpiresAt.Equal(expires.Add(time.Hour)))

	require.NoError(t, db.ClearAuth())
	_, err = db.GetAuth()
	assert.ErrorIs(t, err, ErrNoAuth)
}

func TestUpdateTokensWithoutAuthInserts(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.UpdateTokens("a", "r", time.Unix(1700000000, 0)))
	auth, err := db.GetAuth()
	require.NoError(t, err)
	assert.Equal(t, "r", auth.RefreshToken)
}

func TestRideUpsertAndList(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, db.UpsertRide(testRide(1, base)))
	require.NoError(t, db.UpsertRide(testRide(2, base.Add(24*time.Hour))))

	updated := testRide(1, base)
	updated.Name = "Renamed"
	require.NoError(t, db.UpsertRide(updated))

	n, err := db.CountRides()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rides, err := db.ListRides(10, 0)
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.Equal(t, int64(2), rides[0].ID)
	assert.Equal(t, "Renamed", rides[1].Name)
	assert.Equal(t, SourceStrava, rides[1].Source)
	assert.True(t, rides[1].HasHeartrate)
	assert.True(t, rides[1].StartDate.Equal(base))

	page, err := db.ListRides(1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, int64(1), page[0].ID)
}

func TestGetRideNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetRide(99)
	assert.ErrorIs(t, err, ErrRideNotFound)
	assert.ErrorIs(t, db.DeleteRide(99), ErrRideNotFound)
}

func TestStreamsRoundTripKeepsAbsentSamples(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.UpsertRide(testRide(1, time.Now())))

	_, err := db.GetStreams(1)
	assert.ErrorIs(t, err, ErrNoStreams)

	watts := analysis.Samples(100, 0, 300)
	watts[1] = nil
	in := analysis.RawStreamSet{
		analysis.ChannelTime:  analysis.Samples(0, 1, 2),
		analysis.ChannelWatts: watts,
	}
	require.NoError(t, db.SaveStreams(1, in))

	ok, err := db.HasStreams(1)
	require.NoError(t, err)
	assert.True(t, ok)

	out, err := db.GetStreams(1)
	require.NoError(t, err)
	require.Len(t, out[analysis.ChannelWatts], 3)
	assert.Nil(t, out[analysis.ChannelWatts][1])
	assert.Equal(t, 300.0, *out[analysis.ChannelWatts][2])
	assert.NotContains(t, out, analysis.ChannelHeartrate)
}

func TestRidesNeedingStreams(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, db.UpsertRide(testRide(1, base)))
	require.NoError(t, db.UpsertRide(testRide(2, base.Add(time.Hour))))
	fit := testRide(3, base.Add(2*time.Hour))
	fit.Source = SourceFIT
	require.NoError(t, db.UpsertRide(fit))
	require.NoError(t, db.SaveStreams(1, analysis.RawStreamSet{analysis.ChannelTime: analysis.Samples(0)}))

	ids, err := db.RidesNeedingStreams(10)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)
}

func TestMetricsAndFingerprint(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.UpsertRide(testRide(1, time.Now())))

	m, err := db.GetMetrics(1)
	require.NoError(t, err)
	assert.Nil(t, m)

	// No streams yet: nothing to compute
	ids, err := db.RidesNeedingMetrics("fp1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	streams := analysis.RawStreamSet{
		analysis.ChannelTime:  analysis.Samples(0, 1, 2, 3),
		analysis.ChannelWatts: analysis.Samples(200, 200, 200, 200),
	}
	require.NoError(t, db.SaveStreams(1, streams))

	ids, err = db.RidesNeedingMetrics("fp1")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	computed := analysis.Analyze(streams, analysis.ActivitySummary{MovingTime: 3600}, analysis.DefaultConfig())
	require.NoError(t, db.SaveMetrics(1, computed, "fp1"))

	ids, err = db.RidesNeedingMetrics("fp1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = db.RidesNeedingMetrics("fp2")
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)

	m, err = db.GetMetrics(1)
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.InDelta(t, 200.0, m.NormalizedPower, 1e-9)
	assert.Equal(t, 200.0, m.AverageWatts)
	assert.Equal(t, "fp1", m.Fingerprint)
	assert.Len(t, m.PowerZones, 6)
	assert.Len(t, m.HRZones, 5)
	assert.Equal(t, computed.PowerZones, m.PowerZones)
}

func TestDeleteRideCascades(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.UpsertRide(testRide(1, time.Now())))
	require.NoError(t, db.SaveStreams(1, analysis.RawStreamSet{analysis.ChannelTime: analysis.Samples(0)}))

	require.NoError(t, db.DeleteRide(1))
	ok, err := db.HasStreams(1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDailyLoads(t *testing.T) {
	db := setupTestDB(t)
	day1 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)

	for id, start := range map[int64]time.Time{1: day1, 2: day1.Add(6 * time.Hour), 3: day2} {
		require.NoError(t, db.UpsertRide(testRide(id, start)))
		var rm analysis.RideMetrics
		rm.TrainingStressScore = float64(id * 10)
		require.NoError(t, db.SaveMetrics(id, rm, "fp"))
	}

	loads, err := db.DailyLoads(day1)
	require.NoError(t, err)
	require.Len(t, loads, 2)
	assert.Equal(t, 30.0, loads[0].TSS)
	assert.Equal(t, 30.0, loads[1].TSS)
	assert.Equal(t, day2.Truncate(24*time.Hour), loads[1].Date)

	loads, err = db.DailyLoads(day2)
	require.NoError(t, err)
	assert.Len(t, loads, 1)
}

func TestSyncState(t *testing.T) {
	db := setupTestDB(t)

	v, err := db.GetSyncState("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	zero, err := db.GetSyncTime(SyncKeyLastSync)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, db.SetSyncTime(SyncKeyLastSync, now))
	got, err := db.GetSyncTime(SyncKeyLastSync)
	require.NoError(t, err)
	assert.True(t, got.Equal(now))
}
