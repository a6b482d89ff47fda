package analysis

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 {
	return &v
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func indexes(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func TestNormalizedPower(t *testing.T) {
	tests := []struct {
		name     string
		watts    []*float64
		expected float64
		delta    float64
	}{
		{
			name:     "empty",
			watts:    nil,
			expected: 0,
			delta:    0,
		},
		{
			name:     "constant 100W",
			watts:    Samples(constant(100, 60)...),
			expected: 100,
			delta:    1e-9,
		},
		{
			name:     "constant 250W shorter than window",
			watts:    Samples(constant(250, 10)...),
			expected: 250,
			delta:    1e-9,
		},
		{
			name:     "single sample",
			watts:    Samples(180),
			expected: 180,
			delta:    1e-9,
		},
		{
			name:     "absent readings are skipped",
			watts:    []*float64{floatPtr(200), nil, floatPtr(200), nil, floatPtr(200)},
			expected: 200,
			delta:    1e-9,
		},
		{
			name:     "all absent",
			watts:    []*float64{nil, nil, nil},
			expected: 0,
			delta:    0,
		},
		{
			name:     "non-finite readings are skipped",
			watts:    []*float64{floatPtr(150), floatPtr(math.NaN()), floatPtr(math.Inf(1)), floatPtr(150)},
			expected: 150,
			delta:    1e-9,
		},
		{
			name:     "all zero",
			watts:    Samples(constant(0, 40)...),
			expected: 0,
			delta:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizedPower(tt.watts)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("NormalizedPower() = %v, want %v (±%v)", got, tt.expected, tt.delta)
			}
		})
	}
}

func TestNormalizedPowerWindowIsTrailing(t *testing.T) {
	// 30 samples at 100W then 30 at 300W. The first block's rolling means
	// stay at 100 and the second block only ramps toward 300, so NP lands
	// below the 200W sample mean but above the mean of the rolling means.
	watts := append(constant(100, 30), constant(300, 30)...)
	got := NormalizedPower(Samples(watts...))

	var fourth, rollingSum, windowSum float64
	for i, w := range watts {
		windowSum += w
		n := i + 1
		if i >= NPWindow {
			windowSum -= watts[i-NPWindow]
			n = NPWindow
		}
		rolling := windowSum / float64(n)
		rollingSum += rolling
		fourth += math.Pow(rolling, 4)
	}
	want := math.Pow(fourth/float64(len(watts)), 0.25)
	rollingMean := rollingSum / float64(len(watts))

	if math.Abs(got-want) > 1e-9 {
		t.Errorf("NormalizedPower() = %v, want %v", got, want)
	}
	if math.Abs(got-190.88) > 0.01 {
		t.Errorf("NormalizedPower() = %v, want about 190.88", got)
	}
	if got <= rollingMean {
		t.Errorf("NormalizedPower() = %v, want above the rolling mean %v", got, rollingMean)
	}
}

func TestNormalizedPowerVariableAboveAverage(t *testing.T) {
	watts := make([]float64, 600)
	for i := range watts {
		if (i/60)%2 == 0 {
			watts[i] = 350
		} else {
			watts[i] = 100
		}
	}
	np := NormalizedPower(Samples(watts...))
	if np <= 225 {
		t.Errorf("NormalizedPower() = %v, want above average 225 for intervals", np)
	}
	if np > 350 {
		t.Errorf("NormalizedPower() = %v, want at most the peak 350", np)
	}
}

func TestIntensityFactor(t *testing.T) {
	tests := []struct {
		name     string
		np       float64
		ftp      float64
		expected float64
	}{
		{"half of FTP", 100, 200, 0.5},
		{"at FTP", 250, 250, 1.0},
		{"zero FTP", 200, 0, 0},
		{"negative FTP", 200, -10, 0},
		{"zero NP", 0, 200, 0},
		{"doubled both", 400, 400, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IntensityFactor(tt.np, tt.ftp)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("IntensityFactor(%v, %v) = %v, want %v", tt.np, tt.ftp, got, tt.expected)
			}
		})
	}
}

func TestIntensityFactorScaleInvariant(t *testing.T) {
	for _, scale := range []float64{0.5, 2, 3.7, 10} {
		base := IntensityFactor(180, 240)
		scaled := IntensityFactor(180*scale, 240*scale)
		if math.Abs(base-scaled) > 1e-12 {
			t.Errorf("IntensityFactor scaled by %v = %v, want %v", scale, scaled, base)
		}
	}
}

func TestTrainingStressScore(t *testing.T) {
	tests := []struct {
		name      string
		seconds   float64
		intensity float64
		expected  float64
	}{
		{"one hour at threshold", 3600, 1.0, 100},
		{"two hours at 0.75", 7200, 0.75, 112.5},
		{"30 minutes at 0.5", 1800, 0.5, 12.5},
		{"no moving time", 0, 1.0, 0},
		{"negative moving time", -60, 1.0, 0},
		{"no intensity", 3600, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrainingStressScore(tt.seconds, tt.intensity)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("TrainingStressScore(%v, %v) = %v, want %v", tt.seconds, tt.intensity, got, tt.expected)
			}
		})
	}
}

func TestTrainingStressScoreOneHourAtFTPIsExactly100(t *testing.T) {
	if got := TrainingStressScore(3600, 1.0); got != 100 {
		t.Errorf("TrainingStressScore(3600, 1.0) = %v, want exactly 100", got)
	}
}

func TestHRDrift(t *testing.T) {
	tests := []struct {
		name     string
		hr       []*float64
		watts    []*float64
		expected float64
		delta    float64
	}{
		{
			name:     "no heart rate",
			hr:       nil,
			watts:    Samples(constant(150, 100)...),
			expected: 0,
		},
		{
			name:     "no power",
			hr:       Samples(constant(140, 100)...),
			watts:    nil,
			expected: 0,
		},
		{
			name:     "steady effort",
			hr:       Samples(constant(140, 100)...),
			watts:    Samples(constant(200, 100)...),
			expected: 0,
			delta:    1e-12,
		},
		{
			name:     "heart rate climbs at constant power",
			hr:       Samples(append(constant(140, 50), constant(154, 50)...)...),
			watts:    Samples(constant(200, 100)...),
			expected: 10,
			delta:    1e-9,
		},
		{
			name:     "second half without power",
			hr:       Samples(constant(140, 100)...),
			watts:    Samples(append(constant(200, 50), constant(0, 50)...)...),
			expected: 0,
		},
		{
			name:     "single sample",
			hr:       Samples(140),
			watts:    Samples(200),
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HRDrift(tt.hr, tt.watts)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("HRDrift() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestComputeMetricsConstantPower(t *testing.T) {
	tl := Normalize(RawStreamSet{
		ChannelTime:  Samples(indexes(60)...),
		ChannelWatts: Samples(constant(100, 60)...),
	})

	m := ComputeMetrics(tl, ActivitySummary{}, 200)

	if math.Abs(m.NormalizedPower-100) > 1e-9 {
		t.Errorf("NormalizedPower = %v, want 100", m.NormalizedPower)
	}
	if math.Abs(m.IntensityFactor-0.5) > 1e-9 {
		t.Errorf("IntensityFactor = %v, want 0.5", m.IntensityFactor)
	}
	if math.Abs(m.VariabilityIndex-1.0) > 1e-9 {
		t.Errorf("VariabilityIndex = %v, want 1.0", m.VariabilityIndex)
	}
}

func TestComputeMetricsWithoutHeartrate(t *testing.T) {
	tl := Normalize(RawStreamSet{
		ChannelTime:      Samples(indexes(100)...),
		ChannelWatts:     Samples(constant(150, 100)...),
		ChannelHeartrate: {},
	})

	m := ComputeMetrics(tl, ActivitySummary{MovingTime: 100}, 200)

	if m.EfficiencyFactor != 0 {
		t.Errorf("EfficiencyFactor = %v, want 0", m.EfficiencyFactor)
	}
	if m.HRDriftPct != 0 {
		t.Errorf("HRDriftPct = %v, want 0", m.HRDriftPct)
	}
	if m.NormalizedPower == 0 {
		t.Error("NormalizedPower should be computed from power alone")
	}
}

func TestComputeMetricsRampingPower(t *testing.T) {
	const n = 120
	watts := make([]float64, n)
	for i := range watts {
		watts[i] = 100 + 200*float64(i)/float64(n-1)
	}
	tl := Normalize(RawStreamSet{
		ChannelTime:      Samples(indexes(n)...),
		ChannelWatts:     Samples(watts...),
		ChannelHeartrate: Samples(constant(150, n)...),
	})

	m := ComputeMetrics(tl, ActivitySummary{}, 250)

	var first, second float64
	for i, w := range watts {
		if i < n/2 {
			first += w
		} else {
			second += w
		}
	}
	r1 := 150 / (first / float64(n/2))
	r2 := 150 / (second / float64(n-n/2))
	want := (r2 - r1) / r1 * 100

	if m.HRDriftPct >= 0 {
		t.Errorf("HRDriftPct = %v, want negative", m.HRDriftPct)
	}
	if math.Abs(m.HRDriftPct-want) > 1e-9 {
		t.Errorf("HRDriftPct = %v, want %v", m.HRDriftPct, want)
	}
}

func TestComputeMetricsOneHourAtThreshold(t *testing.T) {
	tl := Normalize(RawStreamSet{
		ChannelTime:  Samples(indexes(3600)...),
		ChannelWatts: Samples(constant(250, 3600)...),
	})

	m := ComputeMetrics(tl, ActivitySummary{MovingTime: 3600}, 250)

	if math.Abs(m.IntensityFactor-1.0) > 1e-9 {
		t.Errorf("IntensityFactor = %v, want 1.0", m.IntensityFactor)
	}
	if math.Abs(m.TrainingStressScore-100) > 1e-6 {
		t.Errorf("TrainingStressScore = %v, want 100", m.TrainingStressScore)
	}
}

func TestComputeMetricsEmptyTimeline(t *testing.T) {
	summary := ActivitySummary{MovingTime: 3600, AverageWatts: 200, AverageHeartrate: 140}
	m := ComputeMetrics(Timeline{}, summary, 200)
	if m != (Metrics{}) {
		t.Errorf("ComputeMetrics(empty) = %+v, want all zeros", m)
	}
}

func TestComputeMetricsPrefersSummaryAverages(t *testing.T) {
	tl := Normalize(RawStreamSet{
		ChannelTime:      Samples(indexes(60)...),
		ChannelWatts:     Samples(constant(200, 60)...),
		ChannelHeartrate: Samples(constant(100, 60)...),
	})

	withSummary := ComputeMetrics(tl, ActivitySummary{AverageWatts: 180, AverageHeartrate: 150}, 250)
	if math.Abs(withSummary.EfficiencyFactor-1.2) > 1e-9 {
		t.Errorf("EfficiencyFactor = %v, want 1.2 from summary averages", withSummary.EfficiencyFactor)
	}
	if withSummary.AverageWatts != 180 || withSummary.AverageHeartrate != 150 {
		t.Errorf("averages = %v/%v, want the summary's 180/150", withSummary.AverageWatts, withSummary.AverageHeartrate)
	}

	fromStreams := ComputeMetrics(tl, ActivitySummary{}, 250)
	if math.Abs(fromStreams.EfficiencyFactor-2.0) > 1e-9 {
		t.Errorf("EfficiencyFactor = %v, want 2.0 from stream means", fromStreams.EfficiencyFactor)
	}
	if fromStreams.AverageWatts != 200 || fromStreams.AverageHeartrate != 100 {
		t.Errorf("averages = %v/%v, want the stream means 200/100", fromStreams.AverageWatts, fromStreams.AverageHeartrate)
	}
}

func TestComputeMetricsZeroFTP(t *testing.T) {
	tl := Normalize(RawStreamSet{
		ChannelTime:  Samples(indexes(60)...),
		ChannelWatts: Samples(constant(200, 60)...),
	})
	m := ComputeMetrics(tl, ActivitySummary{MovingTime: 60}, 0)
	if m.IntensityFactor != 0 || m.TrainingStressScore != 0 {
		t.Errorf("IF = %v, TSS = %v, want 0 with FTP 0", m.IntensityFactor, m.TrainingStressScore)
	}
	if math.IsNaN(m.VariabilityIndex) || math.IsInf(m.VariabilityIndex, 0) {
		t.Errorf("VariabilityIndex = %v, want finite", m.VariabilityIndex)
	}
}
