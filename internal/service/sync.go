package service

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ridedash/internal/analysis"
	"ridedash/internal/config"
	"ridedash/internal/store"
	"ridedash/internal/strava"
)

// Sync phases reported through SyncProgress
const (
	PhaseRides   = "rides"
	PhaseStreams = "streams"
	PhaseMetrics = "metrics"
)

// RideSource is the subset of the Strava client used by sync
type RideSource interface {
	ListRides(ctx context.Context, types []string, scan, limit int) ([]strava.Activity, error)
	GetActivityStreams(ctx context.Context, activityID int64) (*strava.Streams, error)
	RateLimitStatus() (shortRemaining, dailyRemaining int)
}

// SyncService orchestrates syncing rides from Strava
type SyncService struct {
	source  RideSource
	store   *store.DB
	engine  analysis.Config
	sync    config.SyncConfig
	logger  *slog.Logger
	workers int
}

// NewSyncService creates a new sync service using the athlete config for metrics
func NewSyncService(source RideSource, db *store.DB, cfg *config.Config, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{
		source:  source,
		store:   db,
		engine:  cfg.Athlete.AnalysisConfig(),
		sync:    cfg.Sync,
		logger:  logger,
		workers: runtime.GOMAXPROCS(0),
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase       string // PhaseRides, PhaseStreams or PhaseMetrics
	Total       int
	Completed   int
	CurrentRide string
	Error       error
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	RidesFetched    int
	RidesStored     int
	StreamsFetched  int
	MetricsComputed int
	Errors          []error
}

// SyncAll performs a full sync: rides -> streams -> metrics.
// Failures of a single ride are collected in the result and do not stop the sync.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}
	start := time.Now()

	// Phase 1: Sync ride summaries
	if err := s.syncRides(ctx, progress, result); err != nil {
		s.recordError(err)
		return result, fmt.Errorf("syncing rides: %w", err)
	}

	// Phase 2: Fetch streams for rides that need them
	if err := s.syncStreams(ctx, progress, result); err != nil {
		s.recordError(err)
		return result, fmt.Errorf("syncing streams: %w", err)
	}

	// Phase 3: Compute metrics for rides that are missing them or are stale
	if err := s.ComputeMetrics(ctx, progress, result); err != nil {
		s.recordError(err)
		return result, fmt.Errorf("computing metrics: %w", err)
	}

	if err := s.store.SetSyncTime(store.SyncKeyLastSync, time.Now()); err != nil {
		s.logger.Warn("saving sync time", "error", err)
	}
	if err := s.store.SetSyncState(store.SyncKeyLastError, ""); err != nil {
		s.logger.Warn("clearing sync error", "error", err)
	}

	s.logger.Info("sync complete",
		"rides", result.RidesStored,
		"streams", result.StreamsFetched,
		"metrics", result.MetricsComputed,
		"errors", len(result.Errors),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

func (s *SyncService) recordError(err error) {
	if serr := s.store.SetSyncState(store.SyncKeyLastError, err.Error()); serr != nil {
		s.logger.Warn("saving sync error", "error", serr)
	}
}

// syncRides lists recent rides from Strava and stores their summaries
func (s *SyncService) syncRides(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	send(progress, SyncProgress{Phase: PhaseRides})

	activities, err := s.source.ListRides(ctx, s.rideTypes(), s.sync.ListLimit, 0)
	if err != nil {
		return err
	}
	result.RidesFetched = len(activities)

	for _, a := range activities {
		if err := s.store.UpsertRide(convertActivity(a)); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing ride %d: %w", a.ID, err))
			continue
		}
		result.RidesStored++
	}

	s.logger.Debug("rides listed", "fetched", result.RidesFetched, "stored", result.RidesStored)
	send(progress, SyncProgress{Phase: PhaseRides, Total: result.RidesFetched, Completed: result.RidesStored})
	return nil
}

func (s *SyncService) rideTypes() []string {
	if len(s.sync.RideTypes) > 0 {
		return s.sync.RideTypes
	}
	return config.DefaultRideTypes
}

// syncStreams fetches telemetry for rides that have none yet
func (s *SyncService) syncStreams(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	batch := s.sync.StreamBatch
	if batch <= 0 {
		batch = config.DefaultConfig().Sync.StreamBatch
	}

	// Limit to batch size to respect rate limits
	ids, err := s.store.RidesNeedingStreams(batch)
	if err != nil {
		return fmt.Errorf("getting rides needing streams: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	send(progress, SyncProgress{Phase: PhaseStreams, Total: len(ids)})

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		send(progress, SyncProgress{Phase: PhaseStreams, Total: len(ids), Completed: i, CurrentRide: s.rideName(id)})

		streams, err := s.source.GetActivityStreams(ctx, id)
		if err != nil {
			// Some rides have no streams; keep going
			s.logger.Warn("fetching streams", "ride", id, "error", err)
			result.Errors = append(result.Errors, fmt.Errorf("ride %d: %w", id, err))
			continue
		}

		if err := s.store.SaveStreams(id, streams.RawStreamSet()); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("saving streams for %d: %w", id, err))
			continue
		}
		result.StreamsFetched++
	}

	short, daily := s.source.RateLimitStatus()
	s.logger.Debug("streams fetched", "count", result.StreamsFetched, "short_remaining", short, "daily_remaining", daily)
	send(progress, SyncProgress{Phase: PhaseStreams, Total: len(ids), Completed: len(ids)})
	return nil
}

// ComputeMetrics analyzes every ride whose metrics are missing or were computed
// for a different athlete configuration. Rides are analyzed in parallel.
func (s *SyncService) ComputeMetrics(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	fingerprint := s.engine.Fingerprint()
	ids, err := s.store.RidesNeedingMetrics(fingerprint)
	if err != nil {
		return fmt.Errorf("getting rides needing metrics: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	send(progress, SyncProgress{Phase: PhaseMetrics, Total: len(ids)})

	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.workers, 1))
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			name, err := s.computeRide(id, fingerprint)

			mu.Lock()
			defer mu.Unlock()
			completed++
			if err != nil {
				result.Errors = append(result.Errors, err)
			} else {
				result.MetricsComputed++
			}
			send(progress, SyncProgress{Phase: PhaseMetrics, Total: len(ids), Completed: completed, CurrentRide: name, Error: err})
			return nil
		})
	}
	return g.Wait()
}

func (s *SyncService) computeRide(id int64, fingerprint string) (string, error) {
	ride, err := s.store.GetRide(id)
	if err != nil {
		return "", fmt.Errorf("getting ride %d: %w", id, err)
	}
	streams, err := s.store.GetStreams(id)
	if err != nil {
		return ride.Name, fmt.Errorf("getting streams for %d: %w", id, err)
	}

	metrics := analysis.Analyze(streams, ride.Summary(), s.engine)
	if err := s.store.SaveMetrics(id, metrics, fingerprint); err != nil {
		return ride.Name, err
	}
	s.logger.Debug("metrics computed", "ride", id, "np", metrics.NormalizedPower, "tss", metrics.TrainingStressScore)
	return ride.Name, nil
}

func (s *SyncService) rideName(id int64) string {
	ride, err := s.store.GetRide(id)
	if err != nil {
		return ""
	}
	return ride.Name
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.source.RateLimitStatus()
}

func send(progress chan<- SyncProgress, p SyncProgress) {
	if progress != nil {
		progress <- p
	}
}

// convertActivity converts a Strava API activity to a stored ride
func convertActivity(a strava.Activity) *store.Ride {
	return &store.Ride{
		ID:                   a.ID,
		AthleteID:            a.Athlete.ID,
		Name:                 a.Name,
		Type:                 a.Type,
		SportType:            a.SportType,
		StartDate:            a.StartDate,
		StartDateLocal:       a.StartDateLocal,
		Distance:             a.Distance,
		MovingTime:           a.MovingTime,
		ElapsedTime:          a.ElapsedTime,
		TotalElevationGain:   a.TotalElevationGain,
		AverageWatts:         a.AverageWatts,
		WeightedAverageWatts: a.WeightedAverageWatts,
		AverageHeartrate:     a.AverageHeartrate,
		MaxHeartrate:         a.MaxHeartrate,
		AverageCadence:       a.AverageCadence,
		DeviceWatts:          a.DeviceWatts,
		HasHeartrate:         a.HasHeartrate,
		Source:               store.SourceStrava,
	}
}
