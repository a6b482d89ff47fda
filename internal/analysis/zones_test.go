package analysis

import (
	"math"
	"testing"
)

func TestClassifyTenPerZone(t *testing.T) {
	// FTP 200: boundaries at 112, 152, 180, 210, 240
	var samples []float64
	for _, w := range []float64{100, 130, 160, 200, 220, 300} {
		samples = append(samples, constant(w, 10)...)
	}

	dist := Classify(samples, DefaultPowerThresholds, 200)

	if len(dist) != 6 {
		t.Fatalf("len(dist) = %d, want 6", len(dist))
	}
	for i, z := range dist {
		if math.Abs(z.Percent-16.7) > 0.1 {
			t.Errorf("%s = %v, want 16.7", z.Zone, z.Percent)
		}
		if want := "Z" + string(rune('1'+i)); z.Zone != want {
			t.Errorf("dist[%d].Zone = %q, want %q", i, z.Zone, want)
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		sample   float64
		wantZone int
	}{
		{"zero", 0, 0},
		{"just below Z2", 119.9, 0},
		{"exactly on Z2 boundary", 120, 1},
		{"exactly on Z3 boundary", 140, 2},
		{"exactly on Z4 boundary", 160, 3},
		{"exactly on Z5 boundary", 180, 4},
		{"above reference", 230, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist := Classify([]float64{tt.sample}, DefaultHRThresholds, 200)
			if len(dist) != 5 {
				t.Fatalf("len(dist) = %d, want 5", len(dist))
			}
			for i, z := range dist {
				want := 0.0
				if i == tt.wantZone {
					want = 100
				}
				if z.Percent != want {
					t.Errorf("%s = %v, want %v", z.Zone, z.Percent, want)
				}
			}
		})
	}
}

func TestClassifyEmptyAndInvalidReference(t *testing.T) {
	tests := []struct {
		name      string
		samples   []float64
		reference float64
	}{
		{"no samples", nil, 200},
		{"zero reference", []float64{100, 200}, 0},
		{"negative reference", []float64{100, 200}, -200},
		{"NaN reference", []float64{100}, math.NaN()},
		{"only non-finite samples", []float64{math.NaN(), math.Inf(1)}, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dist := Classify(tt.samples, DefaultPowerThresholds, tt.reference)
			if len(dist) != 6 {
				t.Fatalf("len(dist) = %d, want 6", len(dist))
			}
			if !dist.Empty() {
				t.Errorf("dist = %v, want all zeros", dist)
			}
		})
	}
}

func TestClassifySumsToHundred(t *testing.T) {
	inputs := [][]float64{
		{1},
		{50, 120, 170, 190, 230, 400, 401},
		{100, 100, 100},
		{99, 150, 151, 152, 175, 200, 205, 211, 239, 241, 260},
	}
	for _, samples := range inputs {
		for _, c := range []ZoneClassifier{
			{Thresholds: DefaultPowerThresholds, Precision: 1},
			{Thresholds: DefaultHRThresholds, Precision: 1},
		} {
			dist := c.Classify(samples, 200)
			tolerance := float64(c.Zones()) * 0.1
			if math.Abs(dist.Total()-100) > tolerance {
				t.Errorf("Total() = %v for %v, want 100 ±%v", dist.Total(), samples, tolerance)
			}
		}
	}
}

func TestClassifyPrecision(t *testing.T) {
	samples := []float64{100, 200, 300}
	c := ZoneClassifier{Thresholds: []float64{1.0}, Precision: 2}

	dist := c.Classify(samples, 250)

	if dist[0].Percent != 66.67 || dist[1].Percent != 33.33 {
		t.Errorf("dist = %v, want [66.67 33.33]", dist)
	}
}

func TestClassifyCustomThresholds(t *testing.T) {
	c := ZoneClassifier{Thresholds: []float64{0.5}, Precision: 0}
	dist := c.Classify([]float64{10, 60, 70, 80}, 100)
	if c.Zones() != 2 || len(dist) != 2 {
		t.Fatalf("zones = %d, want 2", len(dist))
	}
	if dist[0].Percent != 25 || dist[1].Percent != 75 {
		t.Errorf("dist = %v, want [25 75]", dist)
	}
}
