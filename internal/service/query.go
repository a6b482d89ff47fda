package service

import (
	"errors"
	"fmt"
	"time"

	"ridedash/internal/analysis"
	"ridedash/internal/store"
)

// QueryService provides read-only queries for the TUI, CLI and HTTP API
type QueryService struct {
	store  *store.DB
	engine analysis.Config
	now    func() time.Time
}

// NewQueryService creates a new query service. Zero FTP or reference HR
// fall back to the engine defaults.
func NewQueryService(db *store.DB, engine analysis.Config) *QueryService {
	defaults := analysis.DefaultConfig()
	if engine.FTP <= 0 {
		engine.FTP = defaults.FTP
	}
	if engine.ReferenceHR <= 0 {
		engine.ReferenceHR = defaults.ReferenceHR
	}
	return &QueryService{store: db, engine: engine}
}

// Engine returns the analysis configuration used for ad-hoc analysis
func (q *QueryService) Engine() analysis.Config {
	return q.engine
}

// ListRides returns stored rides newest first, with metrics where computed
func (q *QueryService) ListRides(limit, offset int) ([]store.RideWithMetrics, error) {
	rides, err := q.store.ListRidesWithMetrics(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing rides: %w", err)
	}
	return rides, nil
}

// TotalRides returns the number of stored rides
func (q *QueryService) TotalRides() (int, error) {
	return q.store.CountRides()
}

// AnalyzeStreams runs the engine on streams that are not stored, such as an
// imported FIT file
func (q *QueryService) AnalyzeStreams(summary analysis.ActivitySummary, streams analysis.RawStreamSet) *RideDetail {
	tl := analysis.Normalize(streams)
	metrics := analysis.AnalyzeTimeline(tl, summary, q.engine)

	detail := &RideDetail{
		Summary: summary,
		Metrics: metrics,
		Display: metrics.Rounded(),
		FTP:     q.engine.FTP,
		MaxHR:   q.engine.ReferenceHR,
	}
	detail.fromTimeline(tl)
	return detail
}

// metricsFor returns stored metrics, computing them when the stored ones are
// missing or stale for the current athlete config
func (q *QueryService) metricsFor(ride *store.Ride, streams analysis.RawStreamSet) (analysis.RideMetrics, error) {
	stored, err := q.store.GetMetrics(ride.ID)
	if err != nil {
		return analysis.RideMetrics{}, err
	}
	if stored != nil && stored.Fingerprint == q.engine.Fingerprint() {
		return stored.RideMetrics, nil
	}
	return analysis.Analyze(streams, ride.Summary(), q.engine), nil
}

// streamsOrEmpty treats a ride without streams as having no data
func (q *QueryService) streamsOrEmpty(id int64) (analysis.RawStreamSet, error) {
	streams, err := q.store.GetStreams(id)
	if errors.Is(err, store.ErrNoStreams) {
		return analysis.RawStreamSet{}, nil
	}
	return streams, err
}
