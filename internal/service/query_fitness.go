package service

import (
	"fmt"
	"time"

	"ridedash/internal/analysis"
	"ridedash/internal/store"
)

// FitnessData contains the training load overview
type FitnessData struct {
	// Current fitness
	Current         analysis.FitnessMetrics
	FormDescription string
	Trend           []analysis.FitnessMetrics

	// This week
	WeekRideCount int
	WeekDistance  float64 // meters
	WeekTime      int     // seconds
	WeekTSS       float64

	// Recent rides
	RecentRides []store.RideWithMetrics

	// For charts
	WeeklyDistance []float64 // meters per week, oldest first
	WeeklyTSS      []float64
	WeeklyLabels   []string // Week labels (e.g., "Jan 06")
}

// FitnessTrend returns CTL/ATL/TSB for each of the last days, ending today.
// Older loads are included so the averages are warmed up.
func (q *QueryService) FitnessTrend(days int) ([]analysis.FitnessMetrics, error) {
	if days <= 0 {
		days = FitnessHistoryDays
	}
	today := q.today()
	since := today.AddDate(0, 0, -(days + 3*analysis.CTLDays))

	loads, err := q.store.DailyLoads(since)
	if err != nil {
		return nil, fmt.Errorf("loading daily stress: %w", err)
	}
	if len(loads) == 0 {
		return nil, nil
	}

	// A zero load today extends the trend through days without rides
	loads = append(loads, analysis.DailyLoad{Date: today})
	trend := analysis.CalculateFitnessTrend(loads)

	first := today.AddDate(0, 0, -(days - 1))
	for i, m := range trend {
		if !m.Date.Before(first) {
			return trend[i:], nil
		}
	}
	return nil, nil
}

// Fitness fetches everything needed for the fitness screen
func (q *QueryService) Fitness() (*FitnessData, error) {
	data := &FitnessData{}

	recent, err := q.ListRides(HistoricalRidesLimit, 0)
	if err != nil {
		return nil, err
	}
	if len(recent) > RecentRidesLimit {
		data.RecentRides = recent[:RecentRidesLimit]
	} else {
		data.RecentRides = recent
	}

	data.WeekRideCount, data.WeekDistance, data.WeekTime, data.WeekTSS = q.weekStats(recent)

	trend, err := q.FitnessTrend(FitnessHistoryDays)
	if err != nil {
		return nil, err
	}
	data.Trend = trend
	if len(trend) > 0 {
		data.Current = trend[len(trend)-1]
		data.FormDescription = analysis.FormDescription(data.Current.TSB)
	}

	data.WeeklyDistance, data.WeeklyTSS, data.WeeklyLabels = q.weeklyCharts(recent)
	return data, nil
}

// weekStats sums the current week (Monday start)
func (q *QueryService) weekStats(rides []store.RideWithMetrics) (count int, distance float64, movingTime int, tss float64) {
	weekStart := getMonday(q.today())

	for _, r := range rides {
		if r.StartDateLocal.Before(weekStart) {
			continue
		}
		count++
		distance += r.Distance
		movingTime += r.MovingTime
		if r.Metrics != nil {
			tss += r.Metrics.TrainingStressScore
		}
	}
	return
}

// weeklyCharts builds the 12-week distance and TSS chart data
func (q *QueryService) weeklyCharts(rides []store.RideWithMetrics) (distance, tss []float64, labels []string) {
	numWeeks := ChartWeeks
	currentWeekStart := getMonday(q.today())

	distance = make([]float64, numWeeks)
	tss = make([]float64, numWeeks)
	labels = make([]string, numWeeks)

	for i := 0; i < numWeeks; i++ {
		weekStart := currentWeekStart.AddDate(0, 0, -7*(numWeeks-1-i))
		labels[i] = weekStart.Format("Jan 02")
	}

	for _, r := range rides {
		weekIdx := findWeekIndex(r.StartDateLocal, currentWeekStart, numWeeks)
		if weekIdx < 0 {
			continue
		}
		distance[weekIdx] += r.Distance
		if r.Metrics != nil {
			tss[weekIdx] += r.Metrics.TrainingStressScore
		}
	}
	return
}

// findWeekIndex returns the index of the week bucket for the given date
func findWeekIndex(date time.Time, currentWeekStart time.Time, numWeeks int) int {
	for i := 0; i < numWeeks; i++ {
		weekStart := currentWeekStart.AddDate(0, 0, -7*(numWeeks-1-i))
		weekEnd := weekStart.AddDate(0, 0, 7)
		if !date.Before(weekStart) && date.Before(weekEnd) {
			return i
		}
	}
	return -1
}

// today is midnight UTC of the current day, matching stored local dates
func (q *QueryService) today() time.Time {
	now := time.Now()
	if q.now != nil {
		now = q.now()
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
