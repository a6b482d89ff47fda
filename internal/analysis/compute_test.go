package analysis

import (
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FTP != 222 {
		t.Errorf("DefaultConfig().FTP = %v, want 222", cfg.FTP)
	}
	if cfg.ReferenceHR != 200 {
		t.Errorf("DefaultConfig().ReferenceHR = %v, want 200", cfg.ReferenceHR)
	}
	if cfg.PowerZones().Zones() != 6 {
		t.Errorf("power zones = %d, want 6", cfg.PowerZones().Zones())
	}
	if cfg.HRZones().Zones() != 5 {
		t.Errorf("HR zones = %d, want 5", cfg.HRZones().Zones())
	}

	// mutating the copy must not touch the package defaults
	cfg.PowerThresholds[0] = 0.1
	if DefaultPowerThresholds[0] != 0.56 {
		t.Error("DefaultConfig shares its thresholds with DefaultPowerThresholds")
	}
}

func TestConfigEmptyThresholdsUseDefaults(t *testing.T) {
	cfg := Config{FTP: 200, ReferenceHR: 180}
	if cfg.PowerZones().Zones() != 6 || cfg.HRZones().Zones() != 5 {
		t.Errorf("zones = %d/%d, want 6/5", cfg.PowerZones().Zones(), cfg.HRZones().Zones())
	}
}

func TestConfigZonePrecision(t *testing.T) {
	// one sample each in Z1, Z3 and Z6 at FTP 200
	samples := []float64{100, 160, 300}

	tests := []struct {
		name      string
		precision int
		want      float64
	}{
		{"zero uses default", 0, 33.3},
		{"explicit", 2, 33.33},
		{"whole percent", WholePercent, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{FTP: 200, Precision: tt.precision}
			dist := cfg.PowerZones().Classify(samples, cfg.FTP)
			for _, i := range []int{0, 2, 5} {
				if dist[i].Percent != tt.want {
					t.Errorf("%s = %v, want %v", dist[i].Zone, dist[i].Percent, tt.want)
				}
			}
		})
	}

	if (Config{}).Fingerprint() != (Config{Precision: DefaultPrecision}).Fingerprint() {
		t.Error("zero precision should fingerprint like the default")
	}
}

func TestConfigZonesDoNotShareThresholds(t *testing.T) {
	var cfg Config
	cfg.PowerZones().Thresholds[0] = 0.1
	cfg.HRZones().Thresholds[0] = 0.1

	if DefaultPowerThresholds[0] != 0.56 || DefaultHRThresholds[0] != 0.60 {
		t.Fatalf("defaults modified: %v %v", DefaultPowerThresholds, DefaultHRThresholds)
	}
	if got := cfg.PowerZones().Thresholds[0]; got != 0.56 {
		t.Errorf("next classifier threshold = %v, want 0.56", got)
	}

	custom := DefaultConfig()
	custom.PowerZones().Thresholds[1] = 5
	if custom.PowerThresholds[1] != 0.76 {
		t.Errorf("configured thresholds modified: %v", custom.PowerThresholds)
	}
}

func TestConfigFingerprint(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal configs should share a fingerprint")
	}

	b.FTP = 250
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("FTP change should change the fingerprint")
	}

	c := DefaultConfig()
	c.HRThresholds = []float64{0.5, 0.7}
	if a.Fingerprint() == c.Fingerprint() {
		t.Error("threshold change should change the fingerprint")
	}

	d := Config{FTP: DefaultFTP, ReferenceHR: DefaultReferenceHR, Precision: DefaultPrecision}
	if a.Fingerprint() != d.Fingerprint() {
		t.Error("omitted thresholds should fingerprint like the defaults")
	}
}

func TestAnalyzeEmptyStreams(t *testing.T) {
	inputs := []RawStreamSet{
		nil,
		{},
		{ChannelTime: {}, ChannelWatts: {}, ChannelHeartrate: {}},
	}

	for _, streams := range inputs {
		m := Analyze(streams, ActivitySummary{MovingTime: 3600, AverageWatts: 200}, DefaultConfig())

		if m.Metrics != (Metrics{}) {
			t.Errorf("Metrics = %+v, want all zeros", m.Metrics)
		}
		if len(m.PowerZones) != 6 || !m.PowerZones.Empty() {
			t.Errorf("PowerZones = %v, want 6 zero zones", m.PowerZones)
		}
		if len(m.HRZones) != 5 || !m.HRZones.Empty() {
			t.Errorf("HRZones = %v, want 5 zero zones", m.HRZones)
		}
	}
}

func TestAnalyzePowerOnlyRide(t *testing.T) {
	m := Analyze(RawStreamSet{
		ChannelTime:      Samples(indexes(100)...),
		ChannelWatts:     Samples(constant(150, 100)...),
		ChannelHeartrate: {},
	}, ActivitySummary{MovingTime: 100}, DefaultConfig())

	if m.EfficiencyFactor != 0 || m.HRDriftPct != 0 {
		t.Errorf("EF = %v, drift = %v, want 0", m.EfficiencyFactor, m.HRDriftPct)
	}
	if m.PowerZones.Empty() {
		t.Error("PowerZones should be populated")
	}
	if !m.HRZones.Empty() {
		t.Errorf("HRZones = %v, want all zeros", m.HRZones)
	}
	// 150W at FTP 222 is 0.68, zone 2
	if m.PowerZones[1].Percent != 100 {
		t.Errorf("Z2 = %v, want 100", m.PowerZones[1].Percent)
	}
}

func TestAnalyzeUsesConfigReferences(t *testing.T) {
	streams := RawStreamSet{
		ChannelTime:      Samples(indexes(60)...),
		ChannelWatts:     Samples(constant(200, 60)...),
		ChannelHeartrate: Samples(constant(150, 60)...),
	}

	low := Analyze(streams, ActivitySummary{}, Config{FTP: 400, ReferenceHR: 300, Precision: 1})
	high := Analyze(streams, ActivitySummary{}, Config{FTP: 100, ReferenceHR: 150, Precision: 1})

	if low.PowerZones[0].Percent != 100 {
		t.Errorf("low PowerZones = %v, want all in Z1", low.PowerZones)
	}
	if high.PowerZones[5].Percent != 100 {
		t.Errorf("high PowerZones = %v, want all in Z6", high.PowerZones)
	}
	if low.HRZones[0].Percent != 100 || high.HRZones[4].Percent != 100 {
		t.Errorf("HRZones low=%v high=%v", low.HRZones, high.HRZones)
	}
	if math.Abs(low.IntensityFactor-0.5) > 1e-9 || math.Abs(high.IntensityFactor-2.0) > 1e-9 {
		t.Errorf("IF low=%v high=%v, want 0.5 and 2.0", low.IntensityFactor, high.IntensityFactor)
	}
}

func TestRounded(t *testing.T) {
	m := Metrics{
		NormalizedPower:     212.6,
		IntensityFactor:     0.8734,
		VariabilityIndex:    1.0449,
		TrainingStressScore: 85.49,
		EfficiencyFactor:    1.3351,
		HRDriftPct:          -3.456,
	}

	got := m.Rounded()
	want := DisplayMetrics{
		NormalizedPower:     213,
		IntensityFactor:     0.87,
		VariabilityIndex:    1.04,
		TrainingStressScore: 85,
		EfficiencyFactor:    1.34,
		HRDriftPct:          -3.5,
	}
	if got != want {
		t.Errorf("Rounded() = %+v, want %+v", got, want)
	}
}

func TestDriftAssessment(t *testing.T) {
	tests := []struct {
		drift float64
		want  string
	}{
		{-2, "Heart rate fell relative to power"},
		{1.5, "Excellent aerobic durability"},
		{4, "Good aerobic durability"},
		{6, "Some fatigue late in the ride"},
		{12, "Significant cardiovascular drift"},
	}
	for _, tt := range tests {
		if got := DriftAssessment(tt.drift); got != tt.want {
			t.Errorf("DriftAssessment(%v) = %q, want %q", tt.drift, got, tt.want)
		}
	}
}

func TestIntensityAssessment(t *testing.T) {
	tests := []struct {
		intensity float64
		want      string
	}{
		{0, "No power data"},
		{0.6, "Recovery / endurance"},
		{0.8, "Tempo"},
		{0.9, "Sweet spot"},
		{1.0, "Threshold"},
		{1.1, "Above threshold"},
	}
	for _, tt := range tests {
		if got := IntensityAssessment(tt.intensity); got != tt.want {
			t.Errorf("IntensityAssessment(%v) = %q, want %q", tt.intensity, got, tt.want)
		}
	}
}
