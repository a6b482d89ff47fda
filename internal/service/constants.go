package service

const (
	// Unit conversions
	MetersPerMile = 1609.34
	FeetPerMeter  = 3.28084
	MPSToMPH      = 2.23694
	MPSToKPH      = 3.6

	// Chart series are averaged into buckets of this many seconds
	ChartBucketSeconds = 60

	// Pagination limits
	RecentRidesLimit     = 10
	HistoricalRidesLimit = 200

	// Time windows
	FitnessHistoryDays = 90
	ChartWeeks         = 12

	// Elevation profile points kept for charts
	ElevationChartPoints = 120

	// Seconds per minute for duration formatting
	SecondsPerMinute = 60
)
