package analysis

import "fmt"

// Default zone boundaries as ratios of the reference value
var (
	// Coggan power zones Z1..Z6 as fractions of FTP
	DefaultPowerThresholds = []float64{0.56, 0.76, 0.90, 1.05, 1.20}
	// Heart rate zones Z1..Z5 as fractions of reference HR
	DefaultHRThresholds = []float64{0.60, 0.70, 0.80, 0.90}
)

// DefaultPrecision is the number of decimals kept in zone percentages
const DefaultPrecision = 1

// WholePercent as Config.Precision rounds zone percentages to whole numbers
const WholePercent = -1

// ZoneShare is the share of samples that fell into one zone
type ZoneShare struct {
	Zone    string  `json:"zone"`
	Percent float64 `json:"percent"`
}

// Distribution is an ordered set of zone shares, Z1 first
type Distribution []ZoneShare

// Total sums the zone percentages
func (d Distribution) Total() float64 {
	var total float64
	for _, z := range d {
		total += z.Percent
	}
	return total
}

// Empty reports whether no samples were classified
func (d Distribution) Empty() bool {
	return d.Total() == 0
}

// ZoneClassifier buckets samples into zones bounded by ratios of a reference.
// N thresholds produce N+1 zones; the last zone is unbounded above.
type ZoneClassifier struct {
	Thresholds []float64
	Precision  int
}

// Zones returns the number of buckets the classifier produces
func (c ZoneClassifier) Zones() int {
	return len(c.Thresholds) + 1
}

// Classify reports the percentage of samples in each zone.
//
// A sample belongs to the first zone whose threshold its ratio is strictly
// less than. Percentages are rounded independently and are not forced to sum
// to exactly 100. Without samples or a usable reference every zone is 0.
func (c ZoneClassifier) Classify(samples []float64, reference float64) Distribution {
	dist := make(Distribution, c.Zones())
	for i := range dist {
		dist[i].Zone = fmt.Sprintf("Z%d", i+1)
	}
	if !isFinite(reference) || reference <= 0 {
		return dist
	}

	counts := make([]int, len(dist))
	total := 0
	for _, v := range samples {
		if !isFinite(v) {
			continue
		}
		counts[c.zoneOf(v/reference)]++
		total++
	}
	if total == 0 {
		return dist
	}

	for i, n := range counts {
		dist[i].Percent = roundTo(safeDiv(float64(n), float64(total))*100, c.Precision)
	}
	return dist
}

func (c ZoneClassifier) zoneOf(ratio float64) int {
	for i, t := range c.Thresholds {
		if ratio < t {
			return i
		}
	}
	return len(c.Thresholds)
}

// Classify buckets samples using thresholds at the default precision
func Classify(samples, thresholds []float64, reference float64) Distribution {
	return ZoneClassifier{Thresholds: thresholds, Precision: DefaultPrecision}.Classify(samples, reference)
}
