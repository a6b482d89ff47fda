package service

import (
	"fmt"

	"ridedash/internal/analysis"
	"ridedash/internal/store"
)

// RideDetail contains everything shown for a single ride
type RideDetail struct {
	Ride     *store.Ride              `json:"ride,omitempty"`
	Summary  analysis.ActivitySummary `json:"-"`
	Metrics  analysis.RideMetrics     `json:"metrics"`
	Display  analysis.DisplayMetrics  `json:"display"`
	Timeline analysis.Timeline        `json:"-"`
	FTP      float64                  `json:"ftp"`
	MaxHR    float64                  `json:"max_hr"`

	// Per-minute chart series; absent buckets carry the previous value
	PowerData  []float64 `json:"power"`
	HRData     []float64 `json:"heartrate"`
	SpeedData  []float64 `json:"speed_mps"`
	TimeLabels []string  `json:"time_labels"`

	Elevation   analysis.Elevation   `json:"elevation"`
	PowerCurve  []analysis.PeakPower `json:"power_curve"`
	FTPEstimate float64              `json:"ftp_estimate"`
	MaxPower    float64              `json:"max_power"`
	MaxHRSeen   float64              `json:"max_hr_seen"`
	HasStreams  bool                 `json:"has_streams"`
}

// RideDetail returns the detailed analysis of a stored ride
func (q *QueryService) RideDetail(id int64) (*RideDetail, error) {
	ride, err := q.store.GetRide(id)
	if err != nil {
		return nil, err
	}

	streams, err := q.streamsOrEmpty(id)
	if err != nil {
		return nil, fmt.Errorf("getting streams for ride %d: %w", id, err)
	}

	metrics, err := q.metricsFor(ride, streams)
	if err != nil {
		return nil, fmt.Errorf("getting metrics for ride %d: %w", id, err)
	}

	detail := &RideDetail{
		Ride:    ride,
		Summary: ride.Summary(),
		Metrics: metrics,
		Display: metrics.Rounded(),
		FTP:     q.engine.FTP,
		MaxHR:   q.engine.ReferenceHR,
	}
	detail.fromTimeline(analysis.Normalize(streams))
	return detail, nil
}

// fromTimeline fills the chart data. Metrics are never derived here.
func (d *RideDetail) fromTimeline(tl analysis.Timeline) {
	d.Timeline = tl
	d.HasStreams = len(tl) > 0
	d.Elevation = analysis.ElevationProfile(tl)
	d.Elevation.Points = d.Elevation.Downsample(ElevationChartPoints)
	d.PowerCurve = analysis.PowerCurve(tl.Watts())
	d.FTPEstimate = analysis.EstimateFTP(tl.Watts())
	d.MaxPower = maxOf(tl.Watts())
	d.MaxHRSeen = maxOf(tl.Heartrate())
	d.buildChartData(tl)
}

// buildChartData aggregates the timeline into minute-by-minute chart arrays
func (d *RideDetail) buildChartData(tl analysis.Timeline) {
	buckets := bucketTimeline(tl, ChartBucketSeconds)

	d.PowerData = carryForward(buckets, func(b bucket) *float64 { return b.power.mean() })
	d.HRData = carryForward(buckets, func(b bucket) *float64 { return b.hr.mean() })
	d.SpeedData = carryForward(buckets, func(b bucket) *float64 { return b.speed.mean() })

	d.TimeLabels = make([]string, len(buckets))
	for m := range buckets {
		d.TimeLabels[m] = formatMinutes(m)
	}
}

// HasPower reports whether the ride carried any power readings
func (d *RideDetail) HasPower() bool {
	return d.Metrics.NormalizedPower > 0
}

// HasHeartrate reports whether the ride carried any heart rate readings
func (d *RideDetail) HasHeartrate() bool {
	return d.MaxHRSeen > 0
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%d:00", m)
}
