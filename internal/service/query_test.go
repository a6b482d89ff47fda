package service

import (
	"math"
	"testing"
	"time"

	"ridedash/internal/analysis"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "0:00"},
		{30, "0:30"},
		{90, "1:30"},
		{599, "9:59"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
		{36000, "10:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatDuration(tt.seconds)
			if result != tt.expected {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, result, tt.expected)
			}
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes  int
		expected string
	}{
		{0, "0:00"},
		{1, "1:00"},
		{10, "10:00"},
		{90, "90:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := formatMinutes(tt.minutes)
			if result != tt.expected {
				t.Errorf("formatMinutes(%d) = %q, want %q", tt.minutes, result, tt.expected)
			}
		})
	}
}

func TestNewQueryService(t *testing.T) {
	tests := []struct {
		name    string
		ftp     float64
		maxHR   float64
		wantFTP float64
		wantHR  float64
	}{
		{"uses provided values", 280, 190, 280, 190},
		{"defaults when zero", 0, 0, 222, 200},
		{"defaults when negative", -5, -1, 222, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Pass nil for store since we're only testing config handling
			svc := NewQueryService(nil, analysis.Config{FTP: tt.ftp, ReferenceHR: tt.maxHR})
			if svc.engine.FTP != tt.wantFTP {
				t.Errorf("FTP = %v, want %v", svc.engine.FTP, tt.wantFTP)
			}
			if svc.engine.ReferenceHR != tt.wantHR {
				t.Errorf("ReferenceHR = %v, want %v", svc.engine.ReferenceHR, tt.wantHR)
			}
		})
	}
}

func TestGetMonday(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"monday", time.Date(2024, 5, 6, 15, 0, 0, 0, time.UTC), time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)},
		{"wednesday", time.Date(2024, 5, 8, 9, 0, 0, 0, time.UTC), time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)},
		{"sunday", time.Date(2024, 5, 12, 23, 0, 0, 0, time.UTC), time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getMonday(tt.in); !got.Equal(tt.want) {
				t.Errorf("getMonday(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestFindWeekIndex(t *testing.T) {
	current := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"this week", current.Add(36 * time.Hour), 11},
		{"last week", current.AddDate(0, 0, -3), 10},
		{"oldest week", current.AddDate(0, 0, -77), 0},
		{"too old", current.AddDate(0, 0, -85), -1},
		{"future", current.AddDate(0, 0, 8), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findWeekIndex(tt.date, current, ChartWeeks); got != tt.want {
				t.Errorf("findWeekIndex = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBucketTimeline(t *testing.T) {
	watts := make([]float64, 150)
	times := make([]float64, 150)
	for i := range watts {
		times[i] = float64(i)
		watts[i] = 100
		if i >= 60 {
			watts[i] = 200
		}
	}
	streams := analysis.RawStreamSet{
		analysis.ChannelTime:  analysis.Samples(times...),
		analysis.ChannelWatts: analysis.Samples(watts...),
	}

	buckets := bucketTimeline(analysis.Normalize(streams), ChartBucketSeconds)
	if len(buckets) != 3 {
		t.Fatalf("got %d buckets, want 3", len(buckets))
	}

	power := carryForward(buckets, func(b bucket) *float64 { return b.power.mean() })
	want := []float64{100, 200, 200}
	for i := range want {
		if math.Abs(power[i]-want[i]) > 1e-9 {
			t.Errorf("bucket %d = %v, want %v", i, power[i], want[i])
		}
	}

	if hr := carryForward(buckets, func(b bucket) *float64 { return b.hr.mean() }); hr != nil {
		t.Errorf("expected nil HR series without readings, got %v", hr)
	}
}

func TestCarryForwardFillsGaps(t *testing.T) {
	v := 150.0
	buckets := make([]bucket, 4)
	buckets[1].hr.add(&v)
	buckets[3].hr.add(&v)

	got := carryForward(buckets, func(b bucket) *float64 { return b.hr.mean() })
	want := []float64{0, 150, 150, 150}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMaxOf(t *testing.T) {
	ch := analysis.Samples(120, 180, 150)
	ch = append(ch, nil)
	if got := maxOf(ch); got != 180 {
		t.Errorf("maxOf = %v, want 180", got)
	}
	if got := maxOf(nil); got != 0 {
		t.Errorf("maxOf(nil) = %v, want 0", got)
	}
}
